package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sidj/calorie-meter/config"
	"github.com/sidj/calorie-meter/internal/blob"
	"github.com/sidj/calorie-meter/internal/database"
	"github.com/sidj/calorie-meter/internal/server"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg := config.Load()

	stack, err := buildBackends(cfg)
	if err != nil {
		slog.Error("failed to set up snapshot backends", "error", err)
		os.Exit(1)
	}

	store := database.New(cfg, stack)
	// Open ahead of the first request so a user-initiated write doesn't
	// pay the restore latency.
	store.Warmup(context.Background())

	srv := server.New(store)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ListenAddr)
		errChan <- srv.Start(cfg.ListenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case sig := <-quit:
		slog.Info("received signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	// Teardown snapshot: the store persists once more before closing.
	if err := store.Close(ctx); err != nil {
		slog.Error("store close error", "error", err)
	}
	slog.Info("server stopped")
}

// buildBackends assembles the snapshot stack: local file first, then
// the optional key-value and object fallbacks.
func buildBackends(cfg *config.Config) (*blob.Stack, error) {
	fileStore, err := blob.NewFileStore(filepath.Join(cfg.DataDir, "calorie-meter.db"))
	if err != nil {
		return nil, err
	}
	stores := []blob.Store{fileStore}

	if cfg.RedisURL != "" {
		redisStore, err := blob.NewRedisStoreFromURL(cfg.RedisURL, cfg.SnapshotKey)
		if err != nil {
			slog.Warn("redis snapshot backend unavailable", "error", err)
		} else {
			stores = append(stores, redisStore)
		}
	}

	if cfg.S3Bucket != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s3Store, err := blob.NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.SnapshotKey)
		if err != nil {
			slog.Warn("s3 snapshot backend unavailable", "error", err)
		} else {
			stores = append(stores, s3Store)
		}
	}

	return blob.NewStack(stores...), nil
}
