package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
)

const (
	defaultListLimit = 500
	maxListLimit     = 1000
)

// ListFilter narrows tenant-scoped listings. Zero values mean "no filter".
type ListFilter struct {
	JobID  string
	Status string
	Limit  int
	Offset int
}

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// scoped returns a session already restricted to one tenant. Every tenant
// owned query starts here so a missing tenant id can never widen a read.
func scoped(ctx context.Context, db *gorm.DB, tenantID string) (*gorm.DB, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, apperr.ErrTenantScopeRequired
	}
	return db.WithContext(ctx).Where("tenant_id = ?", tenantID), nil
}

func notFoundOr(err error, op, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.E(apperr.KindNotFound, op, what+" not found", err)
	}
	return apperr.E(apperr.KindInternal, op, "failed to load "+what, err)
}
