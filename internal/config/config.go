package config

import (
	"fmt"
	"time"
)

// ServerConfig holds the gallery backend connection configuration
type ServerConfig struct {
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	BatchRateLimit float64       `yaml:"batch_rate_limit" mapstructure:"batch_rate_limit"`
	BatchRateBurst int           `yaml:"batch_rate_burst" mapstructure:"batch_rate_burst"`
}

// LayoutConfig holds the row layout tuning knobs
type LayoutConfig struct {
	SubRowHeight      float64 `yaml:"sub_row_height" mapstructure:"sub_row_height"`
	SubRowHeightScale float64 `yaml:"sub_row_height_scale" mapstructure:"sub_row_height_scale"`
	FixedRowHeight    float64 `yaml:"fixed_row_height" mapstructure:"fixed_row_height"`
	PaddingPixel      float64 `yaml:"padding_pixel" mapstructure:"padding_pixel"`
	BatchSize         int     `yaml:"batch_size" mapstructure:"batch_size"`
}

// TokenCacheConfig holds the durable token cache configuration
type TokenCacheConfig struct {
	Backend   string        `yaml:"backend" mapstructure:"backend"` // memory | file | redis
	FilePath  string        `yaml:"file_path" mapstructure:"file_path"`
	RedisAddr string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisDB   int           `yaml:"redis_db" mapstructure:"redis_db"`
	RedisTTL  time.Duration `yaml:"redis_ttl" mapstructure:"redis_ttl"`
}

// WorkerConfig holds the sync worker configuration
type WorkerConfig struct {
	QueueSize     int `yaml:"queue_size" mapstructure:"queue_size"`
	DecodeWorkers int `yaml:"decode_workers" mapstructure:"decode_workers"`
}

// PrefetchConfig holds the viewport debounce timings
type PrefetchConfig struct {
	DebounceQuiet time.Duration `yaml:"debounce_quiet" mapstructure:"debounce_quiet"`
	DebounceMax   time.Duration `yaml:"debounce_max" mapstructure:"debounce_max"`
}

// ProxyConfig holds the media byte-authorization proxy configuration
type ProxyConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	UpstreamURL     string        `yaml:"upstream_url" mapstructure:"upstream_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Config represents the complete configuration for the engine and proxy
type Config struct {
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Layout     LayoutConfig     `yaml:"layout" mapstructure:"layout"`
	TokenCache TokenCacheConfig `yaml:"token_cache" mapstructure:"token_cache"`
	Worker     WorkerConfig     `yaml:"worker" mapstructure:"worker"`
	Prefetch   PrefetchConfig   `yaml:"prefetch" mapstructure:"prefetch"`
	Proxy      ProxyConfig      `yaml:"proxy" mapstructure:"proxy"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:4000",
			RequestTimeout: 30 * time.Second,
			BatchRateLimit: 20,
			BatchRateBurst: 5,
		},
		Layout: LayoutConfig{
			SubRowHeight:      250,
			SubRowHeightScale: 1,
			FixedRowHeight:    6000,
			PaddingPixel:      4,
			BatchSize:         100,
		},
		TokenCache: TokenCacheConfig{
			Backend:  "file",
			FilePath: "./data/hash_token.json",
			RedisTTL: 0,
		},
		Worker: WorkerConfig{
			QueueSize:     256,
			DecodeWorkers: 4,
		},
		Prefetch: PrefetchConfig{
			DebounceQuiet: 75 * time.Millisecond,
			DebounceMax:   time.Second,
		},
		Proxy: ProxyConfig{
			Host:            "0.0.0.0",
			Port:            4001,
			UpstreamURL:     "http://localhost:4000",
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url must be set")
	}
	if c.Layout.BatchSize <= 0 {
		return fmt.Errorf("layout.batch_size must be positive, got %d", c.Layout.BatchSize)
	}
	if c.Layout.SubRowHeight <= 0 {
		return fmt.Errorf("layout.sub_row_height must be positive, got %f", c.Layout.SubRowHeight)
	}
	if c.Layout.SubRowHeightScale <= 0 {
		return fmt.Errorf("layout.sub_row_height_scale must be positive, got %f", c.Layout.SubRowHeightScale)
	}
	switch c.TokenCache.Backend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("token_cache.backend must be one of memory, file, redis; got %q", c.TokenCache.Backend)
	}
	if c.TokenCache.Backend == "file" && c.TokenCache.FilePath == "" {
		return fmt.Errorf("token_cache.file_path must be set for the file backend")
	}
	if c.TokenCache.Backend == "redis" && c.TokenCache.RedisAddr == "" {
		return fmt.Errorf("token_cache.redis_addr must be set for the redis backend")
	}
	if c.Worker.QueueSize <= 0 {
		return fmt.Errorf("worker.queue_size must be positive, got %d", c.Worker.QueueSize)
	}
	if c.Proxy.Port <= 0 || c.Proxy.Port > 65535 {
		return fmt.Errorf("proxy.port must be in (0, 65535], got %d", c.Proxy.Port)
	}
	return nil
}
