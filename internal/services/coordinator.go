package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/queue"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
)

// Coordinator creates résumé records and hands them to the work queue.
type Coordinator interface {
	// EnqueueAnalysis stores the upload, creates a queued Resume and publishes
	// stage one. Stage two is published by stage one when it succeeds.
	EnqueueAnalysis(ctx context.Context, tenantID, jobID, fileName string, pdf []byte) (string, error)
	// Retry resets a failed résumé to queued and publishes stage one again.
	Retry(ctx context.Context, tenantID, resumeID string) (*models.Resume, error)
	// Requeue republishes the stage that matches a queued or parsed résumé.
	Requeue(ctx context.Context, resume *models.Resume) error
}

type coordinator struct {
	resumes   repositories.ResumeRepository
	jobs      repositories.JobRepository
	storage   StorageService
	publisher queue.Publisher
	log       *logrus.Logger
}

func NewCoordinator(
	resumes repositories.ResumeRepository,
	jobs repositories.JobRepository,
	storage StorageService,
	publisher queue.Publisher,
	log *logrus.Logger,
) Coordinator {
	return &coordinator{
		resumes:   resumes,
		jobs:      jobs,
		storage:   storage,
		publisher: publisher,
		log:       log,
	}
}

func (c *coordinator) EnqueueAnalysis(ctx context.Context, tenantID, jobID, fileName string, pdf []byte) (string, error) {
	const op = "coordinator.EnqueueAnalysis"

	if tenantID == "" {
		return "", apperr.ErrTenantScopeRequired
	}
	if jobID == "" {
		return "", apperr.E(apperr.KindInvalidArgument, op, "job_id is required", nil)
	}
	if len(pdf) == 0 {
		return "", apperr.E(apperr.KindInvalidArgument, op, "file is empty", nil)
	}

	job, err := c.jobs.FindByID(ctx, tenantID, jobID)
	if err != nil {
		return "", err
	}

	fileURL, err := c.storage.Save(tenantID, fileName, pdf)
	if err != nil {
		return "", apperr.E(apperr.KindInternal, op, "failed to store file", err)
	}

	resume := &models.Resume{
		TenantID: tenantID,
		JobID:    job.ID,
		FileURL:  fileURL,
		Status:   models.StatusQueued,
	}
	if err := c.resumes.Create(ctx, resume); err != nil {
		if delErr := c.storage.Delete(fileURL); delErr != nil {
			c.log.WithError(delErr).WithField("file_url", fileURL).Warn("⚠️  Failed to clean up stored file")
		}
		return "", err
	}

	entry := c.log.WithFields(logrus.Fields{"resume_id": resume.ID, "tenant_id": tenantID, "job_id": job.ID})

	if err := c.publisher.Publish(ctx, queue.NewTask(queue.StageParse, tenantID, resume.ID, pdf)); err != nil {
		entry.WithError(err).Error("❌ Failed to enqueue stage one")
		if markErr := c.resumes.MarkFailed(ctx, tenantID, resume.ID, resume.Version, "failed to enqueue: "+err.Error()); markErr != nil {
			entry.WithError(markErr).Error("❌ Failed to mark resume as failed")
		}
		return "", apperr.E(apperr.KindUnavailable, op, "work queue unavailable", err)
	}

	entry.Info("📥 Resume queued for analysis")
	return resume.ID, nil
}

func (c *coordinator) Retry(ctx context.Context, tenantID, resumeID string) (*models.Resume, error) {
	resume, err := c.resumes.ResetForRetry(ctx, tenantID, resumeID)
	if err != nil {
		return nil, err
	}
	if err := c.Requeue(ctx, resume); err != nil {
		return nil, err
	}
	return resume, nil
}

func (c *coordinator) Requeue(ctx context.Context, resume *models.Resume) error {
	const op = "coordinator.Requeue"

	var task queue.Task
	switch resume.Status {
	case models.StatusQueued:
		pdf, err := c.storage.Load(resume.FileURL)
		if err != nil {
			return apperr.E(apperr.KindInternal, op, "stored file is unavailable", err)
		}
		task = queue.NewTask(queue.StageParse, resume.TenantID, resume.ID, pdf)
	case models.StatusParsed:
		task = queue.NewTask(queue.StageAnalyze, resume.TenantID, resume.ID, nil)
	default:
		return apperr.E(apperr.KindConflict, op, "resume is "+string(resume.Status)+" and cannot be requeued", nil)
	}

	// Claim the row first. A concurrent sweeper holding the same snapshot
	// gets a conflict and publishes nothing.
	if err := c.resumes.Touch(ctx, resume.TenantID, resume.ID, resume.Version, resume.Status); err != nil {
		return err
	}

	if err := c.publisher.Publish(ctx, task); err != nil {
		return apperr.E(apperr.KindUnavailable, op, "work queue unavailable", err)
	}

	c.log.WithFields(logrus.Fields{
		"resume_id": resume.ID,
		"tenant_id": resume.TenantID,
		"stage":     task.Stage,
	}).Info("🔁 Resume requeued")
	return nil
}
