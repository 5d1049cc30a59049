package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/queue"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	// Sweep requeues résumés stuck in queued or parsed and returns how many
	// were republished.
	Sweep(ctx context.Context) (int, error)
}

type WorkerOptions struct {
	Concurrency   int
	SweepInterval time.Duration // zero disables the sweeper
	StaleAfter    time.Duration
	SweepBatch    int
}

type worker struct {
	queue       queue.Queue
	pipeline    Pipeline
	coordinator Coordinator
	resumes     repositories.ResumeRepository
	opts        WorkerOptions
	log         *logrus.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	now    func() time.Time
}

func NewWorker(
	q queue.Queue,
	pipeline Pipeline,
	coordinator Coordinator,
	resumes repositories.ResumeRepository,
	opts WorkerOptions,
	log *logrus.Logger,
) Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 10 * time.Minute
	}
	if opts.SweepBatch <= 0 {
		opts.SweepBatch = 10
	}
	return &worker{
		queue:       q,
		pipeline:    pipeline,
		coordinator: coordinator,
		resumes:     resumes,
		opts:        opts,
		log:         log,
		now:         time.Now,
	}
}

func (w *worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.log.Infof("🚀 Starting worker with %d concurrent consumers", w.opts.Concurrency)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		err := w.queue.Consume(ctx, w.opts.Concurrency, w.pipeline.Handle)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.log.WithError(err).Error("❌ Queue consumer stopped")
		}
	}()

	if w.opts.SweepInterval > 0 {
		w.wg.Add(1)
		go w.sweepLoop(ctx)
	}

	w.log.Info("✅ Worker started successfully")
}

func (w *worker) Stop() {
	w.log.Info("🛑 Stopping worker...")
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info("✅ Worker stopped")
}

func (w *worker) sweepLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.SweepInterval)
	defer ticker.Stop()

	w.log.Info("🔄 Starting stale resume sweeper")

	for {
		select {
		case <-ctx.Done():
			w.log.Info("🔄 Stale resume sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil {
				w.log.WithError(err).Warn("⚠️  Failed to sweep stale resumes")
			}
		}
	}
}

func (w *worker) Sweep(ctx context.Context) (int, error) {
	stale, err := w.resumes.FindStale(ctx,
		[]models.ResumeStatus{models.StatusQueued, models.StatusParsed},
		w.now().Add(-w.opts.StaleAfter),
		w.opts.SweepBatch,
	)
	if err != nil {
		return 0, err
	}

	if len(stale) > 0 {
		w.log.Infof("📋 Found %d stale resumes", len(stale))
	}

	requeued := 0
	for i := range stale {
		if err := w.coordinator.Requeue(ctx, &stale[i]); err != nil {
			w.log.WithError(err).WithField("resume_id", stale[i].ID).Warn("⚠️  Failed to requeue stale resume")
			continue
		}
		requeued++
	}
	return requeued, nil
}
