// Package config loads the kektorgraph YAML configuration.
//
// Every field has a default, so the file is optional. Environment variables
// written as ${NAME} are expanded before decoding, and unknown keys are
// rejected to surface typos early.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the top-level configuration.
type Config struct {
	Buckets     BucketConfig `yaml:"buckets"`
	Workers     int          `yaml:"workers"`     // 0 = one per physical core
	Compression string       `yaml:"compression"` // "none" or "zstd"
	Log         LogConfig    `yaml:"log"`
	Server      ServerConfig `yaml:"server"`
}

// BucketConfig sets the hash ranges of the wedge, path and star families.
// Changing any of them invalidates every persisted dictionary and matrix.
type BucketConfig struct {
	H2 int `yaml:"h2"`
	H3 int `yaml:"h3"`
	HS int `yaml:"hs"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// ServerConfig holds the paths and address used by `serve` and `mcp`.
type ServerConfig struct {
	HTTPAddr       string `yaml:"http_addr"`
	AuthToken      string `yaml:"auth_token"`
	DatabasePath   string `yaml:"database_path"`
	DictionaryPath string `yaml:"dictionary_path"`
	MatrixPath     string `yaml:"matrix_path"`
}

// Default returns a working configuration.
func Default() Config {
	return Config{
		Buckets:     BucketConfig{H2: 1024, H3: 2048, HS: 1024},
		Workers:     0,
		Compression: "none",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			HTTPAddr: ":9094",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Buckets.H2 <= 0 || c.Buckets.H3 <= 0 || c.Buckets.HS <= 0 {
		return fmt.Errorf("bucket sizes must be positive (h2=%d h3=%d hs=%d): %w",
			c.Buckets.H2, c.Buckets.H3, c.Buckets.HS, ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d: %w", c.Workers, ErrInvalidConfig)
	}
	switch c.Compression {
	case "", "none", "zstd":
	default:
		return fmt.Errorf("unknown compression %q: %w", c.Compression, ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q: %w", c.Log.Level, ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q: %w", c.Log.Format, ErrInvalidConfig)
	}
	return nil
}
