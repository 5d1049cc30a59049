package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/logger"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/queue"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
	"github.com/Jgaps7/curriculos-saas/internal/testutil"
)

func newCoordinatorFixture(t *testing.T, publisher queue.Publisher) (Coordinator, repositories.ResumeRepository, *models.Tenant, *models.Job) {
	t.Helper()
	db := testutil.NewDB(t)
	tenant, job := testutil.SeedTenant(t, db, "owner")
	resumes := repositories.NewResumeRepository(db)
	c := NewCoordinator(resumes, repositories.NewJobRepository(db), NewStorageService(t.TempDir()), publisher, logger.Discard())
	return c, resumes, tenant, job
}

func TestEnqueueAnalysisCreatesQueuedResume(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	c, resumes, tenant, job := newCoordinatorFixture(t, pub)

	pdf := testutil.BuildPDF("Jane Doe")
	id, err := c.EnqueueAnalysis(ctx, tenant.ID, job.ID, "jane.pdf", pdf)
	require.NoError(t, err)

	resume, err := resumes.FindByID(ctx, tenant.ID, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, resume.Status)
	assert.NotEmpty(t, resume.FileURL)

	require.Len(t, pub.tasks, 1)
	assert.Equal(t, queue.StageParse, pub.tasks[0].Stage)
	assert.Equal(t, tenant.ID, pub.tasks[0].TenantID)
	assert.Equal(t, pdf, pub.tasks[0].PDF)
}

func TestEnqueueAnalysisUnknownJob(t *testing.T) {
	pub := &recordingPublisher{}
	c, _, tenant, _ := newCoordinatorFixture(t, pub)

	_, err := c.EnqueueAnalysis(context.Background(), tenant.ID, "no-such-job", "a.pdf", testutil.BuildPDF("x"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Empty(t, pub.tasks)
}

func TestEnqueueAnalysisPublishFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	c, resumes, tenant, job := newCoordinatorFixture(t, &recordingPublisher{err: errors.New("broker down")})

	_, err := c.EnqueueAnalysis(ctx, tenant.ID, job.ID, "a.pdf", testutil.BuildPDF("x"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	failed, err := resumes.List(ctx, tenant.ID, repositories.ListFilter{Status: string(models.StatusFailed)})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Contains(t, *failed[0].ErrorMessage, "failed to enqueue")
}

func TestRetryRequeuesOnlyFailedResumes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	c, resumes, tenant, job := newCoordinatorFixture(t, pub)

	id, err := c.EnqueueAnalysis(ctx, tenant.ID, job.ID, "a.pdf", testutil.BuildPDF("x"))
	require.NoError(t, err)

	_, err = c.Retry(ctx, tenant.ID, id)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	require.NoError(t, resumes.MarkFailed(ctx, tenant.ID, id, 0, "boom"))
	resume, err := c.Retry(ctx, tenant.ID, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, resume.Status)

	require.Len(t, pub.tasks, 2)
	assert.Equal(t, queue.StageParse, pub.tasks[1].Stage)
	assert.NotEmpty(t, pub.tasks[1].PDF)
}

func TestSweepRequeuesStaleResumes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	c, resumes, tenant, job := newCoordinatorFixture(t, pub)

	queuedID, err := c.EnqueueAnalysis(ctx, tenant.ID, job.ID, "a.pdf", testutil.BuildPDF("x"))
	require.NoError(t, err)
	parsed := &models.Resume{TenantID: tenant.ID, JobID: job.ID}
	require.NoError(t, resumes.Create(ctx, parsed))
	require.NoError(t, resumes.MarkParsed(ctx, tenant.ID, parsed.ID, 0, "text"))

	w := NewWorker(queue.NewMemory(1, logger.Discard()), nil, c, resumes, WorkerOptions{StaleAfter: time.Minute}, logger.Discard()).(*worker)
	w.now = func() time.Time { return time.Now().Add(time.Hour) }

	n, err := w.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	byResume := map[string]queue.Stage{}
	for _, task := range pub.tasks[1:] {
		byResume[task.ResumeID] = task.Stage
	}
	assert.Equal(t, queue.StageParse, byResume[queuedID])
	assert.Equal(t, queue.StageAnalyze, byResume[parsed.ID])
}

func TestSweepDoesNotRepublishUntilStaleAgain(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tenant, job := testutil.SeedTenant(t, db, "owner")
	resumes := repositories.NewResumeRepository(db)
	pub := &recordingPublisher{}
	c := NewCoordinator(resumes, repositories.NewJobRepository(db), NewStorageService(t.TempDir()), pub, logger.Discard())

	id, err := c.EnqueueAnalysis(ctx, tenant.ID, job.ID, "a.pdf", testutil.BuildPDF("x"))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Resume{}).Where("id = ?", id).
		UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	w := NewWorker(queue.NewMemory(1, logger.Discard()), nil, c, resumes, WorkerOptions{StaleAfter: time.Minute}, logger.Discard())

	n, err := w.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = w.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, pub.tasks, 2)

	resume, err := resumes.FindByID(ctx, tenant.ID, id)
	require.NoError(t, err)
	assert.Equal(t, 0, resume.Version)
}

func TestRequeueWithOutdatedSnapshotPublishesNothing(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	c, resumes, tenant, job := newCoordinatorFixture(t, pub)

	id, err := c.EnqueueAnalysis(ctx, tenant.ID, job.ID, "a.pdf", testutil.BuildPDF("x"))
	require.NoError(t, err)
	snapshot, err := resumes.FindByID(ctx, tenant.ID, id)
	require.NoError(t, err)
	require.NoError(t, resumes.MarkParsed(ctx, tenant.ID, id, snapshot.Version, "text"))

	err = c.Requeue(ctx, snapshot)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Len(t, pub.tasks, 1)
}
