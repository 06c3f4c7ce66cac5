package cli

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
)

// configFileName is the config file looked up in the config directory.
const configFileName = "config.toml"

// Config is the optional TOML configuration. Zero values leave the built-in
// defaults in place; command-line flags override both.
//
//	[generate]
//	colors = 32
//	formats = ["png", "key"]
//	catalog = "~/threads/anchor.csv"
//
//	[cache]
//	disabled = false
//
//	[server]
//	addr = ":8080"
//	redis_url = "redis://localhost:6379/0"
type Config struct {
	Generate GenerateConfig `toml:"generate"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// GenerateConfig holds generation defaults.
type GenerateConfig struct {
	Width     int      `toml:"width"`
	Height    int      `toml:"height"`
	PerUnit   int      `toml:"per_unit"`
	Colors    int      `toml:"colors"`
	Filter    string   `toml:"filter"`
	Metric    string   `toml:"metric"`
	Clusterer string   `toml:"clusterer"`
	Seed      uint64   `toml:"seed"`
	Formats   []string `toml:"formats"`
	Catalog   string   `toml:"catalog"`
	GridLines bool     `toml:"grid_lines"`
	Labels    bool     `toml:"labels"`
}

// CacheConfig controls the local pattern cache.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	RedisURL string `toml:"redis_url"`
}

// loadConfig reads the config file named by --config, or the default file
// when it exists.
func (c *CLI) loadConfig() error {
	path := c.configPath
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(dir, configFileName)
	}

	cfg, err := readConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, errors.ErrCodeFileNotFound) {
			return nil
		}
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// readConfig decodes a TOML config file. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func readConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidInput,
			"unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.Generate.Catalog = expandHome(cfg.Generate.Catalog)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	return cfg, nil
}

// applyConfig copies config values into opts for every flag the user did not
// set explicitly.
func applyConfig(cmd *cobra.Command, cfg GenerateConfig, opts *pipeline.Options) {
	unset := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f == nil || !f.Changed
	}
	setInt := func(name string, dst *int, v int) {
		if v != 0 && unset(name) {
			*dst = v
		}
	}
	setString := func(name string, dst *string, v string) {
		if v != "" && unset(name) {
			*dst = v
		}
	}

	setInt("width", &opts.Width, cfg.Width)
	setInt("height", &opts.Height, cfg.Height)
	setInt("per-unit", &opts.PerUnit, cfg.PerUnit)
	setInt("colors", &opts.Colors, cfg.Colors)
	setString("filter", &opts.Filter, cfg.Filter)
	setString("metric", &opts.Metric, cfg.Metric)
	setString("clusterer", &opts.Clusterer, cfg.Clusterer)
	setString("catalog", &opts.CatalogPath, cfg.Catalog)
	if cfg.Seed != 0 && unset("seed") {
		opts.Seed = cfg.Seed
	}
	if len(cfg.Formats) > 0 && unset("format") {
		opts.Formats = cfg.Formats
	}
	if cfg.GridLines && unset("grid-lines") {
		opts.GridLines = true
	}
	if cfg.Labels && unset("labels") {
		opts.Labels = true
	}
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
