package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, `
[generate]
colors = 32
per_unit = 10
formats = ["png", "key"]
catalog = "/data/anchor.csv"

[cache]
disabled = true

[server]
addr = ":9000"
redis_url = "redis://localhost:6379/0"
`)

	cfg, err := readConfig(path)
	if err != nil {
		t.Fatalf("readConfig: %v", err)
	}
	if cfg.Generate.Colors != 32 || cfg.Generate.PerUnit != 10 {
		t.Errorf("generate = %+v", cfg.Generate)
	}
	if len(cfg.Generate.Formats) != 2 || cfg.Generate.Formats[1] != "key" {
		t.Errorf("formats = %v", cfg.Generate.Formats)
	}
	if cfg.Generate.Catalog != "/data/anchor.csv" {
		t.Errorf("catalog = %q", cfg.Generate.Catalog)
	}
	if !cfg.Cache.Disabled {
		t.Error("cache should be disabled")
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.RedisURL == "" {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		code errors.Code
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.toml") },
			code: errors.ErrCodeFileNotFound,
		},
		{
			name: "unknown key",
			path: func(t *testing.T) string { return writeConfig(t, "[generate]\ncolours = 3\n") },
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "malformed",
			path: func(t *testing.T) string { return writeConfig(t, "[generate\n") },
			code: errors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readConfig(tt.path(t))
			if !errors.Is(err, tt.code) {
				t.Errorf("readConfig error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestReadConfigExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	path := writeConfig(t, "[cache]\ndir = \"~/stitch-cache\"\n")

	cfg, err := readConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "stitch-cache"); cfg.Cache.Dir != want {
		t.Errorf("cache dir = %q, want %q", cfg.Cache.Dir, want)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing default is ignored", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		c := New(&bytes.Buffer{}, LogInfo)
		if err := c.loadConfig(); err != nil {
			t.Errorf("loadConfig: %v", err)
		}
	})

	t.Run("missing explicit path fails", func(t *testing.T) {
		c := New(&bytes.Buffer{}, LogInfo)
		c.configPath = filepath.Join(t.TempDir(), "missing.toml")
		if err := c.loadConfig(); !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("loadConfig error = %v, want FILE_NOT_FOUND", err)
		}
	})

	t.Run("default file is read", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", home)
		dir := filepath.Join(home, appName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("[generate]\ncolors = 7\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		c := New(&bytes.Buffer{}, LogInfo)
		if err := c.loadConfig(); err != nil {
			t.Fatal(err)
		}
		if c.Config.Generate.Colors != 7 {
			t.Errorf("colors = %d, want 7", c.Config.Generate.Colors)
		}
	})
}

func TestApplyConfigFlagsWin(t *testing.T) {
	opts := pipeline.Options{}
	cmd := &cobra.Command{Use: "test"}
	addGenerationFlags(cmd, &opts)
	if err := cmd.Flags().Parse([]string{"--colors", "12"}); err != nil {
		t.Fatal(err)
	}

	applyConfig(cmd, GenerateConfig{
		Colors:  40,
		PerUnit: 10,
		Metric:  "ciede2000",
		Formats: []string{"svg"},
		Labels:  true,
	}, &opts)

	if opts.Colors != 12 {
		t.Errorf("Colors = %d, want 12 from the flag", opts.Colors)
	}
	if opts.PerUnit != 10 {
		t.Errorf("PerUnit = %d, want 10 from config", opts.PerUnit)
	}
	if opts.Metric != "ciede2000" {
		t.Errorf("Metric = %q, want ciede2000 from config", opts.Metric)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "svg" {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if !opts.Labels {
		t.Error("Labels should come from config")
	}
	if opts.Width != pipeline.DefaultUnits {
		t.Errorf("Width = %d, want default %d", opts.Width, pipeline.DefaultUnits)
	}
}
