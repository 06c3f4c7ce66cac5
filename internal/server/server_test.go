package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stitchgrid/pkg/buildinfo"
	"github.com/matzehuels/stitchgrid/pkg/cache"
	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/observability"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
	"github.com/matzehuels/stitchgrid/pkg/rgb"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

func testCatalog() *thread.Catalog {
	return thread.NewCatalog([]thread.Color{
		{ID: "606", Name: "Bright Orange-Red", RGB: rgb.New(250, 50, 3)},
		{ID: "700", Name: "Bright Green", RGB: rgb.New(7, 115, 27)},
		{ID: "820", Name: "Royal Blue Very Dark", RGB: rgb.New(14, 54, 154)},
		{ID: "B5200", Name: "Snow White", RGB: rgb.New(255, 255, 255)},
	})
}

func testServer(t *testing.T) *Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(Config{
		Runner:  pipeline.NewRunner(fc, nil, nil),
		Catalog: testCatalog(),
	})
}

// quadrants encodes a PNG with red, green, blue and white quadrants.
func quadrants(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	fills := [4]color.NRGBA{
		{255, 0, 0, 255}, {0, 128, 0, 255},
		{0, 0, 160, 255}, {255, 255, 255, 255},
	}
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			q := 0
			if x >= half {
				q++
			}
			if y >= half {
				q += 2
			}
			img.SetNRGBA(x, y, fills[q])
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func patternRequest(t *testing.T, image []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if image != nil {
		fw, err := mw.CreateFormFile("image", "quadrants.png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(image)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/patterns", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func smallPattern() map[string]string {
	return map[string]string{
		"width":    "1",
		"height":   "1",
		"per_unit": "8",
		"colors":   "4",
		"filter":   "nearest",
	}
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body map[string]errorPayload
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestGeneratePattern(t *testing.T) {
	s := testServer(t)
	rec := serve(s, patternRequest(t, quadrants(t, 64), smallPattern()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := rec.Header().Get("X-Pattern-Size"); got != "8x8" {
		t.Errorf("X-Pattern-Size = %q, want 8x8", got)
	}
	if got := rec.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}

	var doc struct {
		ID    string `json:"id"`
		Width int    `json:"width"`
		Key   []struct {
			ID string `json:"id"`
		} `json:"key"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.ID == "" || doc.ID != rec.Header().Get("X-Pattern-Id") {
		t.Errorf("JSON id %q does not match header %q", doc.ID, rec.Header().Get("X-Pattern-Id"))
	}
	if doc.Width != 8 || len(doc.Key) != 4 {
		t.Errorf("width %d, %d key entries; want 8 and 4", doc.Width, len(doc.Key))
	}

	again := serve(s, patternRequest(t, quadrants(t, 64), smallPattern()))
	if got := again.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second request X-Cache = %q, want hit", got)
	}
	if again.Header().Get("X-Pattern-Id") != doc.ID {
		t.Error("identical requests should yield the same pattern ID")
	}
}

func TestGeneratePatternFormats(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"png", "image/png", "\x89PNG"},
		{"key", "image/png", "\x89PNG"},
		{"svg", "image/svg+xml", "<svg"},
	}
	s := testServer(t)
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			fields := smallPattern()
			fields["format"] = tt.format
			rec := serve(s, patternRequest(t, quadrants(t, 64), fields))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), tt.prefix) &&
				!strings.Contains(rec.Body.String(), tt.prefix) {
				t.Errorf("body does not look like %s", tt.format)
			}
		})
	}
}

func TestGeneratePatternErrors(t *testing.T) {
	tests := []struct {
		name   string
		image  []byte
		fields map[string]string
		status int
		code   string
	}{
		{"missing image", nil, smallPattern(), http.StatusBadRequest, "INVALID_INPUT"},
		{"not an image", []byte("hello"), smallPattern(), http.StatusBadRequest, "INVALID_IMAGE"},
		{"colors out of range", []byte("x"), map[string]string{"colors": "1"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"non-numeric width", []byte("x"), map[string]string{"width": "wide"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad seed", []byte("x"), map[string]string{"seed": "-1"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown format", []byte("x"), map[string]string{"format": "gif"}, http.StatusBadRequest, "INVALID_FORMAT"},
	}
	s := testServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, patternRequest(t, tt.image, tt.fields))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			if got := decodeError(t, rec); got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
		})
	}
}

func TestGeneratePatternNotMultipart(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/patterns", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	rec := serve(s, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGeneratePatternTooLarge(t *testing.T) {
	s := New(Config{
		Runner:    pipeline.NewRunner(cache.NewNullCache(), nil, nil),
		Catalog:   testCatalog(),
		MaxUpload: 1024,
	})
	rec := serve(s, patternRequest(t, bytes.Repeat([]byte{1}, 4096), smallPattern()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGeneratePatternBusy(t *testing.T) {
	s := testServer(t)
	if !s.gate.TryAcquire(1) {
		t.Fatal("gate should be free")
	}
	defer s.gate.Release(1)

	rec := serve(s, patternRequest(t, quadrants(t, 64), smallPattern()))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != "BUSY" {
		t.Errorf("code = %q, want BUSY", got.Code)
	}
}

func TestListThreads(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", 4},
		{"?search=blue", 1},
		{"?search=B52", 1},
		{"?search=mauve", 0},
	}
	for _, tt := range tests {
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/v1/threads"+tt.query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tt.query, rec.Code)
		}
		var body struct {
			Count   int              `json:"count"`
			Threads []threadResponse `json:"threads"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.Count != tt.want || len(body.Threads) != tt.want {
			t.Errorf("%q: count %d (%d threads), want %d", tt.query, body.Count, len(body.Threads), tt.want)
		}
	}
}

func TestGetThread(t *testing.T) {
	s := testServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/v1/threads/820", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got threadResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := threadResponse{ID: "820", Name: "Royal Blue Very Dark", Hex: "#0e369a", RGB: [3]int{14, 54, 154}}
	if got != want {
		t.Errorf("thread = %+v, want %+v", got, want)
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/v1/threads/999", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown thread status = %d, want 404", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "THREAD_NOT_FOUND" {
		t.Errorf("code = %q", e.Code)
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/v1/threads/"+strings.Repeat("x", 40), nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("long id status = %d, want 400", rec.Code)
	}
}

func TestVersion(t *testing.T) {
	s := testServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/v1/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Server"); got != buildinfo.ServerHeader() {
		t.Errorf("Server header = %q", got)
	}
	var info buildinfo.Info
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info != buildinfo.Current() {
		t.Errorf("version = %+v, want %+v", info, buildinfo.Current())
	}
}

func TestUnknownRoute(t *testing.T) {
	s := testServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/v2/nothing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/v1/threads", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingServerHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingServerHooks{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	s := testServer(t)
	serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	serve(s, httptest.NewRequest(http.MethodGet, "/v1/threads/999", nil))

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != http.StatusOK || hooks.statuses[1] != http.StatusNotFound {
		t.Errorf("statuses = %v, want [200 404]", hooks.statuses)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"INVALID_INPUT", http.StatusBadRequest},
		{"EMPTY_CATALOG", http.StatusBadRequest},
		{"CATALOG_NOT_FOUND", http.StatusNotFound},
		{"INVALID_STATE", http.StatusConflict},
		{"BUSY", http.StatusTooManyRequests},
		{"MISSING_ASSIGNMENT", http.StatusInternalServerError},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errors.Code(tt.code)); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
