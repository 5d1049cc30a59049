package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

// ResumeRepository owns every Resume state transition. Transition methods
// take the version the caller observed and fail with a conflict when the row
// moved on in between, so concurrent deliveries of one task cannot both win.
type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	FindByID(ctx context.Context, tenantID, id string) (*models.Resume, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]models.Resume, error)
	MarkParsed(ctx context.Context, tenantID, id string, version int, rawText string) error
	MarkFailed(ctx context.Context, tenantID, id string, version int, reason string) error
	Complete(ctx context.Context, tenantID, id string, version int, result ResumeResult, analysis *models.Analysis) error
	ResetForRetry(ctx context.Context, tenantID, id string) (*models.Resume, error)
	// Touch refreshes updated_at and leaves the version alone, so in-flight
	// stage handlers still win their transition.
	Touch(ctx context.Context, tenantID, id string, version int, status models.ResumeStatus) error
	// FindStale is the only cross-tenant read. It backs maintenance tooling.
	FindStale(ctx context.Context, statuses []models.ResumeStatus, updatedBefore time.Time, limit int) ([]models.Resume, error)
}

type ResumeResult struct {
	Summary string
	Opinion string
	Score   float64
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	if resume.TenantID == "" {
		return apperr.ErrTenantScopeRequired
	}
	if resume.ID == "" {
		resume.ID = uuid.NewString()
	}
	if resume.Status == "" {
		resume.Status = models.StatusQueued
	}
	if err := r.db.WithContext(ctx).Create(resume).Error; err != nil {
		return apperr.E(apperr.KindInternal, "resumeRepository.Create", "failed to create resume", err)
	}
	return nil
}

func (r *resumeRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Resume, error) {
	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return nil, err
	}

	var resume models.Resume
	if err := q.Where("id = ?", id).First(&resume).Error; err != nil {
		return nil, notFoundOr(err, "resumeRepository.FindByID", "resume")
	}
	return &resume, nil
}

func (r *resumeRepository) List(ctx context.Context, tenantID string, filter ListFilter) ([]models.Resume, error) {
	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return nil, err
	}
	filter = filter.normalized()

	if filter.JobID != "" {
		q = q.Where("job_id = ?", filter.JobID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var resumes []models.Resume
	err = q.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&resumes).Error
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, "resumeRepository.List", "failed to list resumes", err)
	}
	return resumes, nil
}

func (r *resumeRepository) MarkParsed(ctx context.Context, tenantID, id string, version int, rawText string) error {
	return r.transition(ctx, r.db, "resumeRepository.MarkParsed", tenantID, id, version,
		[]models.ResumeStatus{models.StatusQueued, models.StatusParsed},
		map[string]interface{}{
			"status":        models.StatusParsed,
			"raw_text":      rawText,
			"error_message": nil,
		})
}

func (r *resumeRepository) MarkFailed(ctx context.Context, tenantID, id string, version int, reason string) error {
	return r.transition(ctx, r.db, "resumeRepository.MarkFailed", tenantID, id, version,
		[]models.ResumeStatus{models.StatusQueued, models.StatusParsed},
		map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": reason,
		})
}

// Complete moves a parsed resume to done and appends its Analysis in one
// transaction. Readers never observe done without score and analysis.
func (r *resumeRepository) Complete(ctx context.Context, tenantID, id string, version int, result ResumeResult, analysis *models.Analysis) error {
	const op = "resumeRepository.Complete"
	if analysis == nil {
		return apperr.E(apperr.KindInternal, op, "analysis is required", nil)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := r.transition(ctx, tx, op, tenantID, id, version,
			[]models.ResumeStatus{models.StatusParsed},
			map[string]interface{}{
				"status":        models.StatusDone,
				"summary":       result.Summary,
				"opinion":       result.Opinion,
				"score":         result.Score,
				"error_message": nil,
			})
		if err != nil {
			return err
		}

		if analysis.ID == "" {
			analysis.ID = uuid.NewString()
		}
		analysis.TenantID = tenantID
		analysis.ResumeID = id
		analysis.Score = result.Score

		if err := tx.Create(analysis).Error; err != nil {
			return apperr.E(apperr.KindInternal, op, "failed to insert analysis", err)
		}
		return nil
	})
}

func (r *resumeRepository) ResetForRetry(ctx context.Context, tenantID, id string) (*models.Resume, error) {
	const op = "resumeRepository.ResetForRetry"

	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return nil, err
	}

	res := q.Model(&models.Resume{}).
		Where("id = ? AND status = ?", id, models.StatusFailed).
		Updates(map[string]interface{}{
			"status":        models.StatusQueued,
			"error_message": nil,
			"raw_text":      "",
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return nil, apperr.E(apperr.KindInternal, op, "failed to reset resume", res.Error)
	}

	resume, err := r.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, apperr.E(apperr.KindConflict, op, "only failed resumes can be retried", nil)
	}
	return resume, nil
}

func (r *resumeRepository) Touch(ctx context.Context, tenantID, id string, version int, status models.ResumeStatus) error {
	const op = "resumeRepository.Touch"

	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return err
	}

	res := q.Model(&models.Resume{}).
		Where("id = ? AND version = ? AND status = ?", id, version, status).
		UpdateColumn("updated_at", time.Now())
	if res.Error != nil {
		return apperr.E(apperr.KindInternal, op, "failed to touch resume", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.E(apperr.KindConflict, op, "resume changed since it was read", nil)
	}
	return nil
}

func (r *resumeRepository) FindStale(ctx context.Context, statuses []models.ResumeStatus, updatedBefore time.Time, limit int) ([]models.Resume, error) {
	if limit <= 0 {
		limit = 10
	}

	var resumes []models.Resume
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Where("updated_at < ?", updatedBefore).
		Order("updated_at ASC").
		Limit(limit).
		Find(&resumes).Error
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, "resumeRepository.FindStale", "failed to find stale resumes", err)
	}
	return resumes, nil
}

// transition performs one guarded UPDATE: the row must belong to the tenant,
// carry the expected version and be in one of the from statuses.
func (r *resumeRepository) transition(
	ctx context.Context,
	db *gorm.DB,
	op, tenantID, id string,
	version int,
	from []models.ResumeStatus,
	updates map[string]interface{},
) error {
	q, err := scoped(ctx, db, tenantID)
	if err != nil {
		return err
	}

	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = time.Now()

	res := q.Model(&models.Resume{}).
		Where("id = ? AND version = ? AND status IN ?", id, version, from).
		Updates(updates)
	if res.Error != nil {
		return apperr.E(apperr.KindInternal, op, "failed to update resume", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.E(apperr.KindConflict, op, "resume changed concurrently or is in a terminal state", nil)
	}
	return nil
}
