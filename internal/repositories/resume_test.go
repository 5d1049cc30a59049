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

func TestResumeLifecycleWritesAnalysisAtomically(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenant, job := testutil.SeedTenant(t, db, "user-1")

	resumes := NewResumeRepository(db)
	analyses := NewAnalysisRepository(db)

	resume := &models.Resume{TenantID: tenant.ID, JobID: job.ID, FileURL: "uploads/a.pdf"}
	require.NoError(t, resumes.Create(ctx, resume))
	assert.Equal(t, models.StatusQueued, resume.Status)

	require.NoError(t, resumes.MarkParsed(ctx, tenant.ID, resume.ID, 0, "Jane Doe, Go developer"))

	parsed, err := resumes.FindByID(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusParsed, parsed.Status)
	assert.Equal(t, 1, parsed.Version)
	assert.Equal(t, "Jane Doe, Go developer", parsed.RawText)

	analysis := &models.Analysis{JobID: job.ID, CandidateName: "Jane Doe", Skills: []string{"Go"}}
	err = resumes.Complete(ctx, tenant.ID, resume.ID, parsed.Version, ResumeResult{
		Summary: "summary", Opinion: "opinion", Score: 8.5,
	}, analysis)
	require.NoError(t, err)

	done, err := resumes.FindByID(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, done.Status)
	require.NotNil(t, done.Score)
	assert.Equal(t, 8.5, *done.Score)

	stored, err := analyses.FindByResume(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, *done.Score, stored.Score)
	assert.Equal(t, []string{"Go"}, []string(stored.Skills))

	n, err := analyses.CountByResume(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCompleteRejectsStaleVersionWithoutAnalysis(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenant, job := testutil.SeedTenant(t, db, "user-1")
	resumes := NewResumeRepository(db)
	analyses := NewAnalysisRepository(db)

	resume := &models.Resume{TenantID: tenant.ID, JobID: job.ID}
	require.NoError(t, resumes.Create(ctx, resume))
	require.NoError(t, resumes.MarkParsed(ctx, tenant.ID, resume.ID, 0, "text"))

	err := resumes.Complete(ctx, tenant.ID, resume.ID, 0, ResumeResult{Score: 5}, &models.Analysis{JobID: job.ID})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	n, err := analyses.CountByResume(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	current, err := resumes.FindByID(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusParsed, current.Status)
	assert.Nil(t, current.Score)
}

func TestFailedIsAbsorbing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenant, job := testutil.SeedTenant(t, db, "user-1")
	resumes := NewResumeRepository(db)

	resume := &models.Resume{TenantID: tenant.ID, JobID: job.ID}
	require.NoError(t, resumes.Create(ctx, resume))
	require.NoError(t, resumes.MarkFailed(ctx, tenant.ID, resume.ID, 0, "corrupt pdf"))

	err := resumes.MarkParsed(ctx, tenant.ID, resume.ID, 1, "late text")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	failed, err := resumes.FindByID(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "corrupt pdf", *failed.ErrorMessage)

	reset, err := resumes.ResetForRetry(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, reset.Status)
	assert.Nil(t, reset.ErrorMessage)

	_, err = resumes.ResetForRetry(ctx, tenant.ID, resume.ID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenantA, jobA := testutil.SeedTenant(t, db, "user-a")
	tenantB, _ := testutil.SeedTenant(t, db, "user-b")
	resumes := NewResumeRepository(db)
	jobs := NewJobRepository(db)

	resume := &models.Resume{TenantID: tenantA.ID, JobID: jobA.ID}
	require.NoError(t, resumes.Create(ctx, resume))

	_, err := resumes.FindByID(ctx, tenantB.ID, resume.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = jobs.FindByID(ctx, tenantB.ID, jobA.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = resumes.MarkParsed(ctx, tenantB.ID, resume.ID, 0, "hijack")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	listed, err := resumes.List(ctx, tenantB.ID, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = resumes.FindByID(ctx, "", resume.ID)
	assert.ErrorIs(t, err, apperr.ErrTenantScopeRequired)
}

func TestFindStaleCrossesTenants(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenantA, jobA := testutil.SeedTenant(t, db, "user-a")
	tenantB, jobB := testutil.SeedTenant(t, db, "user-b")
	resumes := NewResumeRepository(db)

	require.NoError(t, resumes.Create(ctx, &models.Resume{TenantID: tenantA.ID, JobID: jobA.ID}))
	require.NoError(t, resumes.Create(ctx, &models.Resume{TenantID: tenantB.ID, JobID: jobB.ID}))

	stale, err := resumes.FindStale(ctx, []models.ResumeStatus{models.StatusQueued}, time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	assert.Len(t, stale, 2)

	fresh, err := resumes.FindStale(ctx, []models.ResumeStatus{models.StatusQueued}, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestTouchKeepsVersionAndLeavesStaleWindow(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenant, job := testutil.SeedTenant(t, db, "user-1")
	resumes := NewResumeRepository(db)

	resume := &models.Resume{TenantID: tenant.ID, JobID: job.ID}
	require.NoError(t, resumes.Create(ctx, resume))
	require.NoError(t, db.Model(&models.Resume{}).Where("id = ?", resume.ID).
		UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	cutoff := time.Now().Add(-time.Minute)
	stale, err := resumes.FindStale(ctx, []models.ResumeStatus{models.StatusQueued}, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	require.NoError(t, resumes.Touch(ctx, tenant.ID, resume.ID, 0, models.StatusQueued))

	stale, err = resumes.FindStale(ctx, []models.ResumeStatus{models.StatusQueued}, cutoff, 10)
	require.NoError(t, err)
	assert.Empty(t, stale)

	touched, err := resumes.FindByID(ctx, tenant.ID, resume.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, touched.Version)

	err = resumes.Touch(ctx, tenant.ID, resume.ID, 0, models.StatusParsed)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	err = resumes.Touch(ctx, "", resume.ID, 0, models.StatusQueued)
	assert.ErrorIs(t, err, apperr.ErrTenantScopeRequired)
}
