package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/katchitechstudio/nouvs-backend/internal/bootstrap"
	"github.com/katchitechstudio/nouvs-backend/internal/config"
	infraconfig "github.com/katchitechstudio/nouvs-backend/internal/infrastructure/config"
	httpserver "github.com/katchitechstudio/nouvs-backend/internal/infrastructure/http"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/logx"
)

func init() { _ = godotenv.Load() }

func main() {
	ctx := context.Background()
	logger := logx.L()
	cfg := config.Load()
	addr := ":" + cfg.Port

	repos, cleanup, err := bootstrap.BuildRepos(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap repos", zap.Error(err))
	}
	defer cleanup()

	readCache, closeCache := bootstrap.BuildCache(cfg)
	defer closeCache()

	rates, news := bootstrap.BuildSources(cfg)
	updater := bootstrap.BuildUpdater(cfg, repos, readCache, rates, news)
	svc := bootstrap.BuildService(repos, readCache)

	srv := httpserver.NewServer(svc, updater).WithPing(repos.DB.Ping)
	mux := httpserver.NewRouter(srv)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
