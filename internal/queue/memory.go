package queue

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Memory is an in-process queue backed by a buffered channel. Tasks do not
// survive a restart; use it for development and tests.
type Memory struct {
	tasks  chan Task
	log    *logrus.Logger
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewMemory(buffer int, log *logrus.Logger) *Memory {
	if buffer <= 0 {
		buffer = 100
	}
	return &Memory{
		tasks: make(chan Task, buffer),
		log:   log,
		done:  make(chan struct{}),
	}
}

func (m *Memory) Publish(ctx context.Context, task Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}

	select {
	case m.tasks <- task:
		m.log.WithFields(logrus.Fields{"resume_id": task.ResumeID, "stage": task.Stage}).Debug("📥 Task enqueued")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Consume(ctx context.Context, concurrency int, handler Handler) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case task := <-m.tasks:
					runHandler(ctx, m.log, workerID, task, handler)
				}
			}
		}(i + 1)
	}

	wg.Wait()
	return ctx.Err()
}

// Len reports the number of tasks waiting in the buffer.
func (m *Memory) Len() int {
	return len(m.tasks)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func runHandler(ctx context.Context, log *logrus.Logger, workerID int, task Task, handler Handler) {
	entry := log.WithFields(logrus.Fields{
		"worker":    workerID,
		"task_id":   task.ID,
		"stage":     task.Stage,
		"resume_id": task.ResumeID,
		"tenant_id": task.TenantID,
	})

	defer func() {
		if r := recover(); r != nil {
			entry.Errorf("❌ Task handler panicked: %v", r)
		}
	}()

	entry.Info("👷 Processing task")
	if err := handler(ctx, task); err != nil {
		entry.WithError(err).Error("❌ Task failed")
		return
	}
	entry.Info("✅ Task completed")
}
