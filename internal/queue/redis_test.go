package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jgaps7/curriculos-saas/internal/logger"
)

func newRedisQueue(t *testing.T) (*RedisStreams, *redis.Client) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	q := NewRedisStreams(client, RedisOptions{
		Stream:   "resumes-test",
		Group:    "workers",
		Consumer: "test",
		Block:    50 * time.Millisecond,
	}, logger.Discard())
	t.Cleanup(func() { _ = q.Close() })
	return q, client
}

func TestRedisStreamsDeliversAndAcks(t *testing.T) {
	q, client := newRedisQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pdf := []byte("%PDF-1.4\x00")
	require.NoError(t, q.Publish(ctx, NewTask(StageParse, "tenant", "resume-1", pdf)))
	require.NoError(t, q.Publish(ctx, NewTask(StageAnalyze, "tenant", "resume-2", nil)))

	got := make(chan Task, 2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Consume(ctx, 1, func(_ context.Context, task Task) error {
			got <- task
			return nil
		})
	}()

	for i := 0; i < 2; i++ {
		select {
		case task := <-got:
			if task.ResumeID == "resume-1" {
				assert.Equal(t, pdf, task.PDF)
				assert.Equal(t, StageParse, task.Stage)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("task not delivered")
		}
	}

	require.Eventually(t, func() bool {
		pending, err := client.XPending(context.Background(), "resumes-test", "workers").Result()
		return err == nil && pending.Count == 0
	}, 2*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		n, err := client.XLen(context.Background(), "resumes-test").Result()
		return err == nil && n == 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}

func TestRedisStreamsDropsMalformedEntries(t *testing.T) {
	q, client := newRedisQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: "resumes-test",
		Values: map[string]interface{}{redisPayloadField: "not json"},
	}).Err())
	require.NoError(t, q.Publish(ctx, NewTask(StageParse, "tenant", "good", nil)))

	got := make(chan string, 2)
	go func() {
		_ = q.Consume(ctx, 1, func(_ context.Context, task Task) error {
			got <- task.ResumeID
			return nil
		})
	}()

	select {
	case id := <-got:
		assert.Equal(t, "good", id)
	case <-time.After(3 * time.Second):
		t.Fatal("valid task after a malformed one was not delivered")
	}
}

func TestRedisStreamsDeletesLargeEntriesOnceHandled(t *testing.T) {
	q, client := newRedisQueue(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pdf := make([]byte, 1<<20)
	require.NoError(t, q.Publish(ctx, NewTask(StageParse, "tenant", "big", pdf)))

	n, err := client.XLen(ctx, "resumes-test").Result()
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got := make(chan int, 1)
	go func() {
		_ = q.Consume(ctx, 1, func(_ context.Context, task Task) error {
			got <- len(task.PDF)
			return nil
		})
	}()

	select {
	case size := <-got:
		assert.Equal(t, len(pdf), size)
	case <-time.After(3 * time.Second):
		t.Fatal("task not delivered")
	}

	require.Eventually(t, func() bool {
		n, err := client.XLen(context.Background(), "resumes-test").Result()
		return err == nil && n == 0
	}, 2*time.Second, 20*time.Millisecond)
}
