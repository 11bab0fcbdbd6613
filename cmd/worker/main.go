package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/katchitechstudio/nouvs-backend/internal/bootstrap"
	"github.com/katchitechstudio/nouvs-backend/internal/config"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, cleanup, err := bootstrap.BuildRepos(ctx, cfg)
	if err != nil {
		log.Fatal("bootstrap repos", zap.Error(err))
	}
	defer cleanup()

	readCache, closeCache := bootstrap.BuildCache(cfg)
	defer closeCache()

	rates, news := bootstrap.BuildSources(cfg)
	updater := bootstrap.BuildUpdater(cfg, repos, readCache, rates, news)

	bootstrap.BuildScheduler(cfg, updater).Start(ctx)
	log.Info("worker stopped")
	_ = log.Sync()
}
