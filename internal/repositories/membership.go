package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

// MembershipRepository is read-only; memberships are written by tenant registration.
type MembershipRepository interface {
	Find(ctx context.Context, tenantID, userID string) (*models.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]models.Membership, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Find(ctx context.Context, tenantID, userID string) (*models.Membership, error) {
	q, err := scoped(ctx, r.db, tenantID)
	if err != nil {
		return nil, err
	}

	var m models.Membership
	if err := q.Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, notFoundOr(err, "membershipRepository.Find", "membership")
	}
	return &m, nil
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID string) ([]models.Membership, error) {
	var out []models.Membership
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, apperr.E(apperr.KindInternal, "membershipRepository.ListByUser", "failed to list memberships", err)
	}
	return out, nil
}
