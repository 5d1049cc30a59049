package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

type TenantRepository interface {
	// Register creates a tenant owned by userID, or returns the tenant the
	// user already belongs to. created reports which happened.
	Register(ctx context.Context, name, userID string) (tenant *models.Tenant, membership *models.Membership, created bool, err error)
	FindByID(ctx context.Context, id string) (*models.Tenant, error)
}

type tenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Register(ctx context.Context, name, userID string) (*models.Tenant, *models.Membership, bool, error) {
	const op = "tenantRepository.Register"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, false, apperr.E(apperr.KindInvalidArgument, op, "company_name is required", nil)
	}
	if userID == "" {
		return nil, nil, false, apperr.E(apperr.KindUnauthorized, op, "missing user id", nil)
	}

	var (
		tenant     models.Tenant
		membership models.Membership
		created    bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).Order("created_at ASC").First(&membership).Error
		if err == nil {
			return tx.Where("id = ?", membership.TenantID).First(&tenant).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		tenant = models.Tenant{ID: uuid.NewString(), Name: name}
		if err := tx.Create(&tenant).Error; err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		membership = models.Membership{TenantID: tenant.ID, UserID: userID, Role: models.RoleOwner}
		if err := tx.Create(&membership).Error; err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, nil, false, apperr.E(apperr.KindInternal, op, "failed to register tenant", err)
	}

	return &tenant, &membership, created, nil
}

func (r *tenantRepository) FindByID(ctx context.Context, id string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, notFoundOr(err, "tenantRepository.FindByID", "tenant")
	}
	return &tenant, nil
}
