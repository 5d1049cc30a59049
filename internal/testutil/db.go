// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Jgaps7/curriculos-saas/internal/config"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedTenant creates a tenant with one owner and one job and returns them.
func SeedTenant(t *testing.T, db *gorm.DB, ownerID string) (*models.Tenant, *models.Job) {
	t.Helper()

	tenant := &models.Tenant{ID: uuid.NewString(), Name: "Acme " + ownerID}
	job := &models.Job{
		ID:             uuid.NewString(),
		TenantID:       tenant.ID,
		Title:          "Backend Engineer",
		Description:    "Build APIs in Go",
		MainActivities: "Design services",
		Prerequisites:  "3 years of Go",
		Differentials:  "Kubernetes",
		Criteria: []models.Criterion{
			{Name: "Go", Weight: 60, Description: "Production Go experience"},
			{Name: "SQL", Weight: 40},
		},
	}

	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	if err := db.Create(&models.Membership{TenantID: tenant.ID, UserID: ownerID, Role: models.RoleOwner}).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return tenant, job
}
