package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lapak/internal/app"
	"lapak/internal/config"
)

func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize application")
	}

	if cfg.SeedDemo {
		if err := a.SeedDemo(context.Background()); err != nil {
			logger.WithError(err).Fatal("failed to seed demo data")
		}
	}

	if err := a.StartConsumer(); err != nil {
		logger.WithError(err).Warn("order event consumer not started")
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := a.Listen(); err != nil {
			logger.WithError(err).Fatal("server failed to start")
		}
	}()

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("error during shutdown")
	}
	logger.Info("server gracefully stopped")
}
