package tokencache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hsa00000/urocissa/internal/config"
)

// New builds the cache backend selected by configuration
func New(cfg config.TokenCacheConfig, logger *zap.Logger) (Cache, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryCache(), nil
	case "file":
		return NewFileCache(cfg.FilePath, logger)
	case "redis":
		return NewRedisCache(cfg.RedisAddr, cfg.RedisDB, cfg.RedisTTL, logger)
	default:
		return nil, fmt.Errorf("unknown token cache backend: %q", cfg.Backend)
	}
}
