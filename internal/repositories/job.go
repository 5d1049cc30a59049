package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, tenantID, id string) (*models.Job, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]models.Job, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.TenantID == "" {
		return apperr.ErrTenantScopeRequired
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return apperr.E(apperr.KindInternal, "jobRepository.Create", "failed to create job", err)
	}
	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Job, error) {
	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return nil, err
	}

	var job models.Job
	if err := q.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, notFoundOr(err, "jobRepository.FindByID", "job")
	}
	return &job, nil
}

func (r *jobRepository) List(ctx context.Context, tenantID string, filter ListFilter) ([]models.Job, error) {
	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return nil, err
	}
	filter = filter.normalized()

	var jobs []models.Job
	err = q.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&jobs).Error
	if err != nil {
		return nil, apperr.E(apperr.KindInternal, "jobRepository.List", "failed to list jobs", err)
	}
	return jobs, nil
}
