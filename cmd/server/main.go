// Package main is the entry point for the optic-lobe grid server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/opticmap/server/internal/api"
	"github.com/opticmap/server/internal/cache"
	"github.com/opticmap/server/internal/config"
	"github.com/opticmap/server/internal/data/neuprint"
	"github.com/opticmap/server/internal/gridstore"
	"github.com/opticmap/server/internal/hexgrid"
	"github.com/opticmap/server/internal/render"
	"github.com/opticmap/server/internal/service"
	"github.com/opticmap/server/pkg/colormap"
)

func main() {
	configPath := flag.String("config", "config/server.yaml", "Path to configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("starting grid server",
		zap.Int("port", cfg.Server.Port),
		zap.String("dataset", cfg.Data.Dataset))

	ctx := context.Background()

	// Data source
	connectCtx, cancelConnect := context.WithTimeout(ctx, 30*time.Second)
	source, err := neuprint.NewClient(connectCtx, neuprint.Config{
		URI:      cfg.Data.NeuPrintURI,
		Username: cfg.Data.NeuPrintUser,
		Password: cfg.Data.NeuPrintPassword,
		Database: cfg.Data.NeuPrintDatabase,
		Dataset:  cfg.Data.Dataset,
	}, logger)
	cancelConnect()
	if err != nil {
		logger.Fatal("failed to connect to neuprint", zap.Error(err))
	}
	defer source.Close(ctx)

	// Memory cache tier
	cacheManager, err := cache.NewManager(cache.Config{
		GridCacheSizeMB: cfg.Cache.GridSizeMB,
		GridTTL:         time.Duration(cfg.Cache.GridTTLMinutes) * time.Minute,
		QueryCacheSize:  cfg.Cache.QueryCacheSize,
	})
	if err != nil {
		logger.Fatal("failed to initialize cache", zap.Error(err))
	}
	defer cacheManager.Close()

	// Persistent tier (optional)
	var store *gridstore.Store
	if cfg.Cache.StorePath != "" {
		store, err = gridstore.NewStore(
			cfg.Cache.StorePath,
			time.Duration(cfg.Cache.StoreTTLHours)*time.Hour,
			logger)
		if err != nil {
			logger.Fatal("failed to open grid store", zap.Error(err))
		}
		store.StartSweeper(1 * time.Hour)
		defer store.Close()
		logger.Info("grid store ready",
			zap.String("path", cfg.Cache.StorePath),
			zap.Int("ttl_hours", cfg.Cache.StoreTTLHours))
	}

	// Rendering pipeline
	renderer := render.Renderer{}
	generator := hexgrid.NewGenerator(hexgrid.Assembler{
		HexSize: cfg.Render.HexSize,
		Spacing: cfg.Render.SpacingFactor,
		Palette: colormap.Reds,
	}, renderer, cfg.Render.PNGWidth, cfg.Render.PNGHeight, logger)

	gridService := service.NewGridService(service.GridServiceConfig{
		Dataset:   cfg.Data.Dataset,
		Source:    source,
		Cache:     cacheManager,
		Store:     store,
		Generator: generator,
		Renderer:  renderer,
		Palette:   colormap.Reds,
		Log:       logger,
	})

	router := api.NewRouter(api.RouterConfig{
		Service:     gridService,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
