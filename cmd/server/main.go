// Package main is the entry point for the magnetunits API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appctx "magnetunits/internal/core/context"
	"magnetunits/internal/domain/catalogs"
	"magnetunits/internal/format"
	"magnetunits/internal/infrastructure/cache"
	v1 "magnetunits/internal/infrastructure/http/v1"
	"magnetunits/internal/infrastructure/storage/postgres"
	"magnetunits/internal/infrastructure/watcher"
	"magnetunits/internal/units"
	"magnetunits/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(appctx.EnsureTrace(context.Background()))
	defer cancel()
	log.Info("starting magnetunits server")

	// --- Units and standard fields ---
	sys := units.Default()
	registry, err := catalogs.StandardRegistry(sys)
	if err != nil {
		log.Fatalw("failed to build standard field registry", "error", err)
	}
	log.Infow("standard fields registered", "fields", registry.Len(), "categories", registry.ListCategories())

	loader := format.NewLoader(sys, log)
	cacheOpts := []cache.Option{cache.WithLogger(log)}

	// --- Optional database ---
	var (
		pool  *postgres.Pool
		repo  *postgres.FormatRepo
		codec *postgres.PayloadCodec
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		poolCfg := postgres.DefaultPoolConfig(dsn)
		poolCfg.MaxConns = int32(getEnvInt("DB_MAX_CONNS", int(poolCfg.MaxConns)))
		pool, err = postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()

		codec, err = postgres.NewPayloadCodec(getEnvInt("FORMATS_COMPRESS_THRESHOLD", postgres.DefaultCompressThreshold))
		if err != nil {
			log.Fatalw("failed to create payload codec", "error", err)
		}
		defer codec.Close()

		repo = postgres.NewFormatRepo(postgres.NewTxManager(pool), codec, log)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalw("failed to prepare database schema", "error", err)
		}
		pool.LogStats(ctx)
		cacheOpts = append(cacheOpts, cache.WithSource(repo), cache.WithNotifications(pool.Unwrap()))
	}

	formats := cache.NewFormatCache(loader, cacheOpts...)
	if err := formats.Start(ctx); err != nil {
		log.Fatalw("failed to start format cache", "error", err)
	}
	defer formats.Stop()

	// --- Optional formats directory ---
	var fw *watcher.Watcher
	if dir := os.Getenv("FORMATS_DIR"); dir != "" {
		cfg := watcher.DefaultConfig(dir)
		cfg.DebounceDur = getEnvDuration("FORMATS_DEBOUNCE", cfg.DebounceDur)
		fw, err = watcher.New(cfg, loader, formats, log)
		if err != nil {
			log.Fatalw("failed to create format watcher", "error", err)
		}
		if getEnv("WATCH_FORMATS", "true") == "true" {
			if err := fw.Start(ctx); err != nil {
				log.Fatalw("failed to watch formats directory", "error", err)
			}
		} else if err := fw.LoadAll(ctx); err != nil {
			log.Fatalw("failed to load formats directory", "error", err)
		}
	}

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Units:    sys,
		Registry: registry,
		Loader:   loader,
		Formats:  formats,
		Pool:     pool,
		Logger:   log,
		Debug:    getEnv("APP_ENV", "development") == "development",
	}
	if repo != nil {
		routerCfg.Store = repo
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port, "formats", formats.Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	if fw != nil {
		if err := fw.Stop(); err != nil {
			log.Warnw("format watcher stop failed", "error", err)
		}
	}
	cancel()

	log.Info("server stopped")
	_ = log.Sync()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
