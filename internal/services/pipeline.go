package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/queue"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
)

const maxErrorMessageRunes = 1000

// Pipeline executes the two résumé stages. Both are safe to run more than
// once for the same task: a stage whose precondition no longer holds is a
// logged no-op.
type Pipeline interface {
	Handle(ctx context.Context, task queue.Task) error
	Parse(ctx context.Context, task queue.Task) error
	Analyze(ctx context.Context, task queue.Task) error
}

type pipeline struct {
	resumes   repositories.ResumeRepository
	jobs      repositories.JobRepository
	extractor PDFParserService
	engine    ScoringEngine
	storage   StorageService
	publisher queue.Publisher
	index     ResumeIndex
	log       *logrus.Logger
}

type PipelineDeps struct {
	Resumes   repositories.ResumeRepository
	Jobs      repositories.JobRepository
	Extractor PDFParserService
	Engine    ScoringEngine
	Storage   StorageService
	Publisher queue.Publisher
	// Index is optional; indexing failures never change a résumé's status.
	Index ResumeIndex
	Log   *logrus.Logger
}

func NewPipeline(deps PipelineDeps) Pipeline {
	return &pipeline{
		resumes:   deps.Resumes,
		jobs:      deps.Jobs,
		extractor: deps.Extractor,
		engine:    deps.Engine,
		storage:   deps.Storage,
		publisher: deps.Publisher,
		index:     deps.Index,
		log:       deps.Log,
	}
}

func (p *pipeline) Handle(ctx context.Context, task queue.Task) error {
	switch task.Stage {
	case queue.StageParse:
		return p.Parse(ctx, task)
	case queue.StageAnalyze:
		return p.Analyze(ctx, task)
	default:
		return apperr.E(apperr.KindInvalidArgument, "pipeline.Handle", "unknown stage "+string(task.Stage), nil)
	}
}

// Parse is stage one: extract text, store it, then publish stage two.
func (p *pipeline) Parse(ctx context.Context, task queue.Task) error {
	entry := p.entry(task)

	resume, ok, err := p.load(ctx, task, entry)
	if err != nil || !ok {
		return err
	}
	if resume.Status != models.StatusQueued && resume.Status != models.StatusParsed {
		entry.WithField("status", resume.Status).Info("⏭️  Resume already past stage one, skipping")
		return nil
	}

	pdf := task.PDF
	if len(pdf) == 0 && resume.FileURL != "" {
		if pdf, err = p.storage.Load(resume.FileURL); err != nil {
			p.fail(ctx, resume, "stored file is unavailable: "+err.Error(), entry)
			return err
		}
	}

	text, err := p.extractor.ExtractText(pdf)
	if err != nil {
		p.fail(ctx, resume, "text extraction failed: "+err.Error(), entry)
		return err
	}

	if err := p.resumes.MarkParsed(ctx, task.TenantID, resume.ID, resume.Version, text); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			entry.Info("⏭️  Resume changed concurrently, skipping stage one")
			return nil
		}
		return err
	}
	entry.WithField("text_length", len(text)).Info("📄 Resume parsed")

	if err := p.publisher.Publish(ctx, queue.NewTask(queue.StageAnalyze, task.TenantID, resume.ID, nil)); err != nil {
		entry.WithError(err).Error("❌ Failed to enqueue stage two, resume stays parsed")
		return apperr.E(apperr.KindUnavailable, "pipeline.Parse", "work queue unavailable", err)
	}
	return nil
}

// Analyze is stage two: three model calls, then the resume and its Analysis
// are written together.
func (p *pipeline) Analyze(ctx context.Context, task queue.Task) error {
	entry := p.entry(task)

	resume, ok, err := p.load(ctx, task, entry)
	if err != nil || !ok {
		return err
	}
	if resume.Status != models.StatusParsed {
		entry.WithField("status", resume.Status).Info("⏭️  Resume not parsed, skipping stage two")
		return nil
	}

	if strings.TrimSpace(resume.RawText) == "" {
		err := apperr.E(apperr.KindExtraction, "pipeline.Analyze", "no extractable text in PDF", nil)
		p.fail(ctx, resume, err.Error(), entry)
		return err
	}

	job, err := p.jobs.FindByID(ctx, task.TenantID, resume.JobID)
	if err != nil {
		p.fail(ctx, resume, "job unavailable: "+err.Error(), entry)
		return err
	}

	summary, err := p.engine.Summarize(ctx, resume.RawText)
	if err != nil {
		p.fail(ctx, resume, "summary failed: "+err.Error(), entry)
		return err
	}

	opinion, err := p.engine.Critique(ctx, resume.RawText, job)
	if err != nil {
		p.fail(ctx, resume, "critique failed: "+err.Error(), entry)
		return err
	}

	score, err := p.engine.Score(ctx, resume.RawText, job)
	if err != nil {
		p.fail(ctx, resume, "scoring failed: "+err.Error(), entry)
		return err
	}

	parsed := ParseSummary(summary)
	analysis := &models.Analysis{
		JobID:         job.ID,
		CandidateName: parsed.Name,
		Skills:        parsed.Skills,
		Education:     parsed.Education,
		Languages:     parsed.Languages,
	}

	err = p.resumes.Complete(ctx, task.TenantID, resume.ID, resume.Version, repositories.ResumeResult{
		Summary: summary,
		Opinion: opinion,
		Score:   score,
	}, analysis)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			entry.Info("⏭️  Resume changed concurrently, discarding stage two result")
			return nil
		}
		return err
	}
	entry.WithField("score", score).Info("✅ Resume analysed")

	if p.index != nil {
		if err := p.index.IndexResume(ctx, resume); err != nil {
			entry.WithError(err).Warn("⚠️  Failed to index resume for search")
		}
	}
	return nil
}

// load returns ok=false when the résumé no longer exists.
func (p *pipeline) load(ctx context.Context, task queue.Task, entry *logrus.Entry) (*models.Resume, bool, error) {
	resume, err := p.resumes.FindByID(ctx, task.TenantID, task.ResumeID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			entry.Warn("⚠️  Resume not found, dropping task")
			return nil, false, nil
		}
		return nil, false, err
	}
	return resume, true, nil
}

func (p *pipeline) fail(ctx context.Context, resume *models.Resume, reason string, entry *logrus.Entry) {
	reason = truncateRunes(reason, maxErrorMessageRunes)
	if err := p.resumes.MarkFailed(ctx, resume.TenantID, resume.ID, resume.Version, reason); err != nil {
		entry.WithError(err).Error("❌ Failed to mark resume as failed")
		return
	}
	entry.WithField("reason", reason).Warn("❌ Resume failed")
}

func (p *pipeline) entry(task queue.Task) *logrus.Entry {
	return p.log.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"stage":     task.Stage,
		"resume_id": task.ResumeID,
		"tenant_id": task.TenantID,
	})
}
