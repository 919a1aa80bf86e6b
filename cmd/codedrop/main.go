package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/codedrop-dev/codedrop/internal/config"
	"github.com/codedrop-dev/codedrop/internal/logger"
	"github.com/codedrop-dev/codedrop/internal/router"
	"github.com/codedrop-dev/codedrop/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		logger.Log.Error("failed to set up dependencies", "error", err)
		return
	}
	defer deps.Storage.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps.Sweeper.StartBackground(ctx, cfg.Public.SweepInterval*time.Second)

	opsServer := &http.Server{
		Addr:    cfg.Public.OpsAddr,
		Handler: router.New(deps.Handler, cfg.Public.AllowedOrigins),
	}
	go func() {
		logger.Log.Info("ops server started", "addr", cfg.Public.OpsAddr)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("ops server failed", "error", err)
			stop()
		}
	}()

	deps.Bot.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("ops server shutdown failed", "error", err)
	}
	logger.Log.Info("shutdown complete")
}
