// Package queue carries pipeline tasks between the API and the workers.
// Delivery is at-least-once: a task is acknowledged only after its handler
// returned, so handlers must tolerate redelivery.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Stage string

const (
	StageParse   Stage = "parse"
	StageAnalyze Stage = "analyze"
)

type Task struct {
	ID         string    `json:"id"`
	Stage      Stage     `json:"stage"`
	ResumeID   string    `json:"resume_id"`
	TenantID   string    `json:"tenant_id"`
	PDF        []byte    `json:"pdf,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func NewTask(stage Stage, tenantID, resumeID string, pdf []byte) Task {
	return Task{
		ID:         uuid.NewString(),
		Stage:      stage,
		ResumeID:   resumeID,
		TenantID:   tenantID,
		PDF:        pdf,
		EnqueuedAt: time.Now().UTC(),
	}
}

func (t Task) Validate() error {
	if t.Stage != StageParse && t.Stage != StageAnalyze {
		return fmt.Errorf("unknown stage %q", t.Stage)
	}
	if t.ResumeID == "" || t.TenantID == "" {
		return errors.New("task requires resume_id and tenant_id")
	}
	return nil
}

// Handler processes one task. A returned error is logged by the backend and
// the task is still acknowledged; recovery is an explicit re-enqueue.
type Handler func(ctx context.Context, task Task) error

type Publisher interface {
	Publish(ctx context.Context, task Task) error
}

type Queue interface {
	Publisher
	// Consume blocks, running concurrency handlers in parallel, until ctx is done.
	Consume(ctx context.Context, concurrency int, handler Handler) error
	Close() error
}

var ErrClosed = errors.New("queue closed")

func encode(task Task) ([]byte, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task: %w", err)
	}
	return body, nil
}

func decode(body []byte) (Task, error) {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return Task{}, fmt.Errorf("invalid task format: %w", err)
	}
	return task, task.Validate()
}
