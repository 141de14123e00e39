package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hsa00000/urocissa/internal/config"
	"github.com/hsa00000/urocissa/internal/metrics"
	"github.com/hsa00000/urocissa/internal/proxy"
	"github.com/hsa00000/urocissa/internal/tokencache"
)

func main() {
	writeConfig := flag.String("write-config", "", "write an example configuration to the given path and exit")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.WriteExample(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write example config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Example configuration written to %s\n", *writeConfig)
		return
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("upstream", cfg.Proxy.UpstreamURL),
		zap.String("host", cfg.Proxy.Host),
		zap.Int("port", cfg.Proxy.Port),
		zap.String("token_cache_backend", cfg.TokenCache.Backend))

	// Initialize token cache
	cache, err := tokencache.New(cfg.TokenCache, logger)
	if err != nil {
		logger.Fatal("Failed to initialize token cache", zap.Error(err))
	}
	defer cache.Close()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	// Initialize proxy
	mediaProxy, err := proxy.NewMediaProxy(cfg.Proxy.UpstreamURL, cache, m, logger)
	if err != nil {
		logger.Fatal("Failed to initialize media proxy", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Proxy.Host, cfg.Proxy.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: mediaProxy.Router(cfg.Metrics, registry),
	}

	logger.Info("Media proxy starting", zap.String("address", addr))

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Proxy.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Failed to shut down server", zap.Error(err))
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}

// initLogger initializes the zap logger
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = level
	if cfg.Format == "console" {
		zapCfg.Encoding = "console"
	}
	return zapCfg.Build()
}
