package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Jgaps7/curriculos-saas/internal/app"
	"github.com/Jgaps7/curriculos-saas/internal/config"
	"github.com/Jgaps7/curriculos-saas/internal/logger"
	"github.com/Jgaps7/curriculos-saas/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalf("❌ Failed to initialize services: %v", err)
	}
	defer a.Close()

	worker := services.NewWorker(a.Queue, a.Pipeline, a.Coordinator, a.Resumes, services.WorkerOptions{
		Concurrency:   cfg.Worker.Concurrency,
		SweepInterval: cfg.Worker.SweepInterval,
		StaleAfter:    cfg.Worker.StaleAfter,
	}, log)

	worker.Start(ctx)
	<-ctx.Done()
	worker.Stop()
}
