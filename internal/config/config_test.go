package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.Layout.BatchSize)
	assert.Equal(t, 6000.0, cfg.Layout.FixedRowHeight)
	assert.Equal(t, "memory", cfg.TokenCache.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }},
		{"zero batch size", func(c *Config) { c.Layout.BatchSize = 0 }},
		{"negative sub row height", func(c *Config) { c.Layout.SubRowHeight = -1 }},
		{"zero scale", func(c *Config) { c.Layout.SubRowHeightScale = 0 }},
		{"unknown cache backend", func(c *Config) { c.TokenCache.Backend = "dynamo" }},
		{"file backend without path", func(c *Config) {
			c.TokenCache.Backend = "file"
			c.TokenCache.FilePath = ""
		}},
		{"redis backend without addr", func(c *Config) {
			c.TokenCache.Backend = "redis"
			c.TokenCache.RedisAddr = ""
		}},
		{"zero queue size", func(c *Config) { c.Worker.QueueSize = 0 }},
		{"port out of range", func(c *Config) { c.Proxy.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.BaseURL, cfg.Server.BaseURL)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  base_url: http://gallery.internal:9000
layout:
  batch_size: 50
token_cache:
  backend: file
  file_path: /tmp/tokens.json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://gallery.internal:9000", cfg.Server.BaseURL)
	assert.Equal(t, 50, cfg.Layout.BatchSize)
	assert.Equal(t, "file", cfg.TokenCache.Backend)
	// Untouched sections keep their defaults
	assert.Equal(t, 6000.0, cfg.Layout.FixedRowHeight)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("GALLERY_BASE_URL", "http://env-host:4000")
	t.Setenv("TOKEN_CACHE_BACKEND", "file")
	t.Setenv("TOKEN_CACHE_FILE", "/var/lib/gallery/tokens.json")
	t.Setenv("PROXY_PORT", "8443")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://env-host:4000", cfg.Server.BaseURL)
	assert.Equal(t, "file", cfg.TokenCache.Backend)
	assert.Equal(t, "/var/lib/gallery/tokens.json", cfg.TokenCache.FilePath)
	assert.Equal(t, 8443, cfg.Proxy.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("layout:\n  batch_size: -5\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteExample_Roundtrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.yaml")
	require.NoError(t, WriteExample(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultConfig().Layout.BatchSize, cfg.Layout.BatchSize)
}
