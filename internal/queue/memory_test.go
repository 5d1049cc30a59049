package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jgaps7/curriculos-saas/internal/logger"
)

func TestMemoryDeliversEveryTaskOnce(t *testing.T) {
	q := NewMemory(10, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Publish(ctx, NewTask(StageParse, "tenant", "resume-"+string(rune('a'+i)), nil)))
	}

	var (
		mu   sync.Mutex
		seen = map[string]int{}
	)
	done := make(chan struct{})
	go func() {
		_ = q.Consume(ctx, 3, func(_ context.Context, task Task) error {
			mu.Lock()
			seen[task.ResumeID]++
			n := len(seen)
			mu.Unlock()
			if n == 5 {
				close(done)
			}
			return errors.New("handler errors do not stop the pool")
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks were not consumed")
	}

	mu.Lock()
	defer mu.Unlock()
	for id, n := range seen {
		assert.Equal(t, 1, n, id)
	}
}

func TestMemoryRecoversFromHandlerPanic(t *testing.T) {
	q := NewMemory(2, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Publish(ctx, NewTask(StageParse, "t", "boom", nil)))
	require.NoError(t, q.Publish(ctx, NewTask(StageAnalyze, "t", "ok", nil)))

	got := make(chan string, 2)
	go func() {
		_ = q.Consume(ctx, 1, func(_ context.Context, task Task) error {
			got <- task.ResumeID
			if task.ResumeID == "boom" {
				panic("bad pdf")
			}
			return nil
		})
	}()

	assert.Equal(t, "boom", <-got)
	select {
	case id := <-got:
		assert.Equal(t, "ok", id)
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestMemoryPublishValidatesAndHonoursClose(t *testing.T) {
	q := NewMemory(1, logger.Discard())
	ctx := context.Background()

	assert.Error(t, q.Publish(ctx, Task{Stage: "unknown", ResumeID: "r", TenantID: "t"}))
	assert.Error(t, q.Publish(ctx, Task{Stage: StageParse}))

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Publish(ctx, NewTask(StageParse, "t", "r", nil)), ErrClosed)
}

func TestTaskEncodingKeepsPDFBytes(t *testing.T) {
	task := NewTask(StageParse, "tenant", "resume", []byte("%PDF-1.4 binary\x00\x01"))

	body, err := encode(task)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, "parse", raw["stage"])

	back, err := decode(body)
	require.NoError(t, err)
	assert.Equal(t, task.PDF, back.PDF)
	assert.Equal(t, task.ResumeID, back.ResumeID)

	_, err = decode([]byte(`{"stage":"parse"}`))
	assert.Error(t, err)
}
