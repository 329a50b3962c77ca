package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kektorgraph.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("KG_TOKEN", "s3cret")
	path := writeConfig(t, `
buckets:
  h2: 64
workers: 3
compression: zstd
server:
  auth_token: ${KG_TOKEN}
  database_path: /data/db.txt
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Buckets.H2 != 64 || cfg.Buckets.H3 != 2048 || cfg.Buckets.HS != 1024 {
		t.Errorf("buckets = %+v", cfg.Buckets)
	}
	if cfg.Workers != 3 || cfg.Compression != "zstd" {
		t.Errorf("workers/compression = %d/%s", cfg.Workers, cfg.Compression)
	}
	if cfg.Server.AuthToken != "s3cret" {
		t.Errorf("auth token = %q, want expanded env value", cfg.Server.AuthToken)
	}
	if cfg.Server.HTTPAddr != ":9094" {
		t.Errorf("http addr = %q, want default", cfg.Server.HTTPAddr)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "bukets:\n  h2: 10\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "bukets") {
		t.Errorf("Load() error = %v, want unknown field error", err)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero bucket", mutate: func(c *Config) { c.Buckets.H3 = 0 }},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }},
		{name: "compression", mutate: func(c *Config) { c.Compression = "lz4" }},
		{name: "log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
		{name: "log format", mutate: func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}
