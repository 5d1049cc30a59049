package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

// AnalysisRepository only reads; rows are inserted by ResumeRepository.Complete.
type AnalysisRepository interface {
	List(ctx context.Context, tenantID string, filter ListFilter) ([]models.Analysis, error)
	FindByResume(ctx context.Context, tenantID, resumeID string) (*models.Analysis, error)
	CountByResume(ctx context.Context, tenantID, resumeID string) (int64, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) List(ctx context.Context, tenantID string, filter ListFilter) ([]models.Analysis, error) {
	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return nil, err
	}
	filter = filter.normalized()

	if filter.JobID != "" {
		q = q.Where("job_id = ?", filter.JobID)
	}

	var items []models.Analysis
	err = q.Order("created_at DESC").Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&items).Error
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, "analysisRepository.List", "failed to list analyses", err)
	}
	return items, nil
}

func (r *analysisRepository) FindByResume(ctx context.Context, tenantID, resumeID string) (*models.Analysis, error) {
	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return nil, err
	}

	var a models.Analysis
	if err := q.Where("resume_id = ?", resumeID).First(&a).Error; err != nil {
		return nil, notFoundOr(err, "analysisRepository.FindByResume", "analysis")
	}
	return &a, nil
}

func (r *analysisRepository) CountByResume(ctx context.Context, tenantID, resumeID string) (int64, error) {
	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := q.Model(&models.Analysis{}).Where("resume_id = ?", resumeID).Count(&n).Error; err != nil {
		return 0, apperr.E(apperr.KindInternal, "analysisRepository.CountByResume", "failed to count analyses", err)
	}
	return n, nil
}
