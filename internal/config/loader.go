package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Config file is optional; defaults plus environment variables are
	// enough to run.
	if err := v.ReadInConfig(); err == nil {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func applyEnvironmentOverrides(cfg *Config) {
	if baseURL := os.Getenv("GALLERY_BASE_URL"); baseURL != "" {
		cfg.Server.BaseURL = baseURL
	}
	if backend := os.Getenv("TOKEN_CACHE_BACKEND"); backend != "" {
		cfg.TokenCache.Backend = backend
	}
	if path := os.Getenv("TOKEN_CACHE_FILE"); path != "" {
		cfg.TokenCache.FilePath = path
	}
	if addr := os.Getenv("TOKEN_CACHE_REDIS_ADDR"); addr != "" {
		cfg.TokenCache.RedisAddr = addr
	}
	if upstream := os.Getenv("PROXY_UPSTREAM_URL"); upstream != "" {
		cfg.Proxy.UpstreamURL = upstream
	}
	if port := os.Getenv("PROXY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Proxy.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
