// Package app wires the shared dependencies of the api, worker and screenctl
// processes.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/Jgaps7/curriculos-saas/internal/config"
	"github.com/Jgaps7/curriculos-saas/internal/queue"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
	"github.com/Jgaps7/curriculos-saas/internal/services"
)

type App struct {
	Config *config.Config
	Log    *logrus.Logger
	DB     *gorm.DB

	Tenants     repositories.TenantRepository
	Memberships repositories.MembershipRepository
	Jobs        repositories.JobRepository
	Resumes     repositories.ResumeRepository
	Analyses    repositories.AnalysisRepository

	Queue       queue.Queue
	Storage     services.StorageService
	LLM         services.LLMClient
	Index       services.ResumeIndex // nil when QDRANT_URL is unset
	Coordinator services.Coordinator
	Pipeline    services.Pipeline
}

func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		Tenants:     repositories.NewTenantRepository(db),
		Memberships: repositories.NewMembershipRepository(db),
		Jobs:        repositories.NewJobRepository(db),
		Resumes:     repositories.NewResumeRepository(db),
		Analyses:    repositories.NewAnalysisRepository(db),
	}
	log.Info("✅ Repositories initialized successfully")

	a.Storage = services.NewStorageService(cfg.Storage.UploadPath)
	if err := a.Storage.EnsureUploadDir(); err != nil {
		return nil, err
	}

	a.Queue, err = queue.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open work queue: %w", err)
	}
	log.WithField("backend", cfg.Queue.Backend).Info("✅ Work queue ready")

	a.LLM, err = services.NewLLMClient(cfg.LLM)
	if err != nil {
		return nil, err
	}
	log.WithField("provider", a.LLM.Name()).Info("✅ LLM client initialized")

	if cfg.Qdrant.URL != "" {
		a.Index, err = services.NewQdrantIndex(cfg.Qdrant, a.LLM, log)
		if err != nil {
			return nil, err
		}
		if err := a.Index.EnsureCollection(ctx); err != nil {
			return nil, err
		}
		log.Info("✅ Qdrant initialized successfully")
	} else {
		log.Info("ℹ️  QDRANT_URL not set, similarity search disabled")
	}

	a.Coordinator = services.NewCoordinator(a.Resumes, a.Jobs, a.Storage, a.Queue, log)
	a.Pipeline = services.NewPipeline(services.PipelineDeps{
		Resumes:   a.Resumes,
		Jobs:      a.Jobs,
		Extractor: services.NewPDFParserService(),
		Engine: services.NewScoringEngine(a.LLM, services.ScoringOptions{
			Model:          cfg.LLM.Model,
			Temperature:    cfg.LLM.Temperature,
			MaxTokens:      cfg.LLM.MaxTokens,
			ScoreMaxTokens: cfg.LLM.ScoreTokens,
			Timeout:        cfg.LLM.Timeout,
		}, log),
		Storage:   a.Storage,
		Publisher: a.Queue,
		Index:     a.Index,
		Log:       log,
	})

	return a, nil
}

func (a *App) Close() {
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			a.Log.WithError(err).Warn("⚠️  Failed to close work queue")
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
