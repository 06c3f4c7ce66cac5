package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	payload := []byte(strings.Repeat("stitch ", 500))
	if err := c.Set(ctx, "pattern:abc", payload, time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, hit, err := c.Get(ctx, "pattern:abc")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v; want hit", hit, err)
	}
	if string(got) != string(payload) {
		t.Error("Get returned different data")
	}

	// Entries are compressed on disk.
	info, err := os.Stat(c.path("pattern:abc"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() >= int64(len(payload)) {
		t.Errorf("entry is %d bytes, want smaller than the %d byte payload", info.Size(), len(payload))
	}

	if err := c.Delete(ctx, "pattern:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "pattern:abc"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "pattern:abc"); err != nil {
		t.Errorf("Delete of a missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not zstd"), 0644); err != nil {
		t.Fatal(err)
	}

	_, hit, err := c.Get(ctx, "k")
	if err != nil || hit {
		t.Errorf("Get = hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	pk1 := k.PatternKey("img", PatternKeyOpts{Colors: 24, PerUnit: 14})
	pk2 := k.PatternKey("img", PatternKeyOpts{Colors: 25, PerUnit: 14})
	if pk1 == pk2 {
		t.Error("Different PatternKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(pk1, "pattern:") {
		t.Errorf("PatternKey = %s, want pattern: prefix", pk1)
	}
	if pk1 != k.PatternKey("img", PatternKeyOpts{Colors: 24, PerUnit: 14}) {
		t.Error("PatternKey should be deterministic")
	}

	ak1 := k.ArtifactKey("grid", ArtifactKeyOpts{Format: "png"})
	ak2 := k.ArtifactKey("grid", ArtifactKeyOpts{Format: "svg"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "stitchgrid:v1:")

	key := scoped.PatternKey("img", PatternKeyOpts{})
	want := "stitchgrid:v1:" + NewDefaultKeyer().PatternKey("img", PatternKeyOpts{})
	if key != want {
		t.Errorf("PatternKey = %s, want %s", key, want)
	}
	if !strings.HasPrefix(scoped.ArtifactKey("g", ArtifactKeyOpts{}), "stitchgrid:v1:artifact:") {
		t.Error("ArtifactKey should be prefixed")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to the original")
	}
	if IsRetryable(ErrUnavailable) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	plain := errors.New("boom")
	if err := RetryWithBackoff(ctx, func() error { calls++; return plain }); err != plain || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrUnavailable) })
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://localhost:6379"); err == nil {
		t.Error("NewRedisCache should reject a non-redis URL")
	}
}
