package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/testutil"
)

func TestRegisterIsIdempotentPerUser(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenants := NewTenantRepository(db)
	memberships := NewMembershipRepository(db)

	tenant, membership, created, err := tenants.Register(ctx, "Tech Corp", "user-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleOwner, membership.Role)

	again, _, created, err := tenants.Register(ctx, "Another name", "user-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, tenant.ID, again.ID)
	assert.Equal(t, "Tech Corp", again.Name)

	found, err := memberships.Find(ctx, tenant.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, found.Role)

	_, err = memberships.Find(ctx, tenant.ID, "stranger")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	list, err := memberships.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, _, _, err = tenants.Register(ctx, "  ", "user-2")
	assert.True(t, apperr.Is(err, apperr.KindInvalidArgument))
}

func TestAnalysisListNewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenant, job := testutil.SeedTenant(t, db, "user-1")
	resumes := NewResumeRepository(db)
	analyses := NewAnalysisRepository(db)

	var ids []string
	for i := 0; i < 3; i++ {
		r := &models.Resume{TenantID: tenant.ID, JobID: job.ID}
		require.NoError(t, resumes.Create(ctx, r))
		require.NoError(t, resumes.MarkParsed(ctx, tenant.ID, r.ID, 0, "text"))
		require.NoError(t, resumes.Complete(ctx, tenant.ID, r.ID, 1, ResumeResult{Score: float64(i)}, &models.Analysis{JobID: job.ID}))
		ids = append(ids, r.ID)
	}
	// Pin distinct creation times so ordering does not depend on clock resolution.
	for i, id := range ids {
		require.NoError(t, db.Model(&models.Analysis{}).Where("resume_id = ?", id).
			Update("created_at", job.CreatedAt.Add(time.Duration(i+1)*time.Second)).Error)
	}

	all, err := analyses.List(ctx, tenant.ID, ListFilter{JobID: job.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ResumeID)
	assert.Equal(t, ids[0], all[2].ResumeID)

	page, err := analyses.List(ctx, tenant.ID, ListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ResumeID)
}
