package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Jgaps7/curriculos-saas/internal/app"
	"github.com/Jgaps7/curriculos-saas/internal/auth"
	"github.com/Jgaps7/curriculos-saas/internal/config"
	"github.com/Jgaps7/curriculos-saas/internal/handlers"
	"github.com/Jgaps7/curriculos-saas/internal/logger"
	"github.com/Jgaps7/curriculos-saas/internal/middleware"
	"github.com/Jgaps7/curriculos-saas/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Info("✅ Config loaded successfully")

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalf("❌ Failed to initialize services: %v", err)
	}
	defer a.Close()

	// The memory queue lives in this process, so it gets the worker too.
	if cfg.Queue.Backend == "memory" {
		worker := services.NewWorker(a.Queue, a.Pipeline, a.Coordinator, a.Resumes, services.WorkerOptions{
			Concurrency:   cfg.Worker.Concurrency,
			SweepInterval: cfg.Worker.SweepInterval,
			StaleAfter:    cfg.Worker.StaleAfter,
		}, log)
		worker.Start(ctx)
		defer worker.Stop()
	}

	// Auth gate
	var keys auth.KeySet
	if cfg.Auth.JWKSURL != "" {
		keys = auth.NewJWKSCache(cfg.Auth.JWKSURL, auth.JWKSOptions{
			TTL:          cfg.Auth.JWKSCacheTTL,
			MinRefresh:   cfg.Auth.JWKSMinRefresh,
			FetchTimeout: cfg.Auth.JWKSFetchTimeout,
		}, log)
	}
	gate := auth.NewGate(cfg.Auth, keys, a.Memberships, log)

	// Create Fiber app
	server := fiber.New(fiber.Config{
		AppName:      "Curriculos SaaS API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: middleware.ErrorHandler(log),
	})

	// Middleware
	server.Use(recover.New())
	server.Use(middleware.RequestLogger(log))
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Tenant-Id, X-Request-Id",
	}))

	// Routes
	handlers.RegisterRoutes(server.Group("/api/v1"), gate, handlers.Handlers{
		Auth:     handlers.NewAuthHandler(a.Tenants, a.Memberships),
		Jobs:     handlers.NewJobHandler(a.Jobs, cfg.Jobs.StrictCriteriaWeights),
		Resumes:  handlers.NewResumeHandler(a.Resumes, a.Coordinator, a.Index, cfg.Storage.MaxFileSize),
		Analysis: handlers.NewAnalysisHandler(a.Analyses),
	})
	log.Info("✅ Handlers initialized")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Errorf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("🚀 Server starting on %s", addr)

	if err := server.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
