package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisPayloadField = "task"

type RedisOptions struct {
	Stream   string
	Group    string
	Consumer string
	Block    time.Duration
}

// RedisStreams is the durable default backend: tasks are appended to a
// stream and read through a consumer group. Entries left pending by a
// crashed consumer are replayed when a consumer with the same name restarts.
// Acked entries are deleted from the stream.
type RedisStreams struct {
	client *redis.Client
	opts   RedisOptions
	log    *logrus.Logger
}

func NewRedisStreams(client *redis.Client, opts RedisOptions, log *logrus.Logger) *RedisStreams {
	if opts.Stream == "" {
		opts.Stream = "resume-analysis"
	}
	if opts.Group == "" {
		opts.Group = "resume-workers"
	}
	if opts.Consumer == "" {
		opts.Consumer = "worker"
	}
	if opts.Block <= 0 {
		opts.Block = 5 * time.Second
	}
	return &RedisStreams{client: client, opts: opts, log: log}
}

func (q *RedisStreams) Publish(ctx context.Context, task Task) error {
	body, err := encode(task)
	if err != nil {
		return err
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.opts.Stream,
		Values: map[string]interface{}{redisPayloadField: string(body)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish task: %w", err)
	}
	return nil
}

func (q *RedisStreams) Consume(ctx context.Context, concurrency int, handler Handler) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	err := q.client.XGroupCreateMkStream(ctx, q.opts.Stream, q.opts.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		consumer := q.opts.Consumer + "-" + strconv.Itoa(i+1)
		go func(workerID int) {
			defer wg.Done()
			q.runConsumer(ctx, workerID, consumer, handler)
		}(i + 1)
	}

	wg.Wait()
	return ctx.Err()
}

func (q *RedisStreams) runConsumer(ctx context.Context, workerID int, consumer string, handler Handler) {
	// "0" replays this consumer's pending entries, ">" reads new ones.
	cursor := "0"

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.opts.Group,
			Consumer: consumer,
			Streams:  []string{q.opts.Stream, cursor},
			Count:    1,
			Block:    q.opts.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.log.WithError(err).WithField("consumer", consumer).Warn("⚠️  Failed to read from stream")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		delivered := 0
		for _, stream := range res {
			for _, msg := range stream.Messages {
				delivered++
				q.handle(ctx, workerID, msg, handler)
				if err := q.ack(ctx, msg.ID); err != nil {
					q.log.WithError(err).WithField("redis_id", msg.ID).Warn("⚠️  Failed to ack task")
				}
			}
		}

		if cursor == "0" && delivered == 0 {
			cursor = ">"
		}
	}
}

// ack also deletes the entry. Stage-1 entries carry the whole PDF and the
// stream has a single group, so nothing reads an acked entry again.
func (q *RedisStreams) ack(ctx context.Context, id string) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAck(ctx, q.opts.Stream, q.opts.Group, id)
		pipe.XDel(ctx, q.opts.Stream, id)
		return nil
	})
	return err
}

func (q *RedisStreams) handle(ctx context.Context, workerID int, msg redis.XMessage, handler Handler) {
	raw, _ := msg.Values[redisPayloadField].(string)
	task, err := decode([]byte(raw))
	if err != nil {
		q.log.WithError(err).WithField("redis_id", msg.ID).Error("❌ Dropping malformed task")
		return
	}
	runHandler(ctx, q.log, workerID, task, handler)
}

func (q *RedisStreams) Close() error {
	return q.client.Close()
}
