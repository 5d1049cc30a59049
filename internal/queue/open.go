package queue

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Jgaps7/curriculos-saas/internal/config"
)

// Open builds the backend selected by QUEUE_BACKEND.
func Open(cfg *config.Config, log *logrus.Logger) (Queue, error) {
	switch cfg.Queue.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return NewRedisStreams(client, RedisOptions{
			Stream:   cfg.Queue.Name,
			Group:    cfg.Redis.Group,
			Consumer: cfg.Redis.Consumer,
			Block:    cfg.Redis.Block,
		}, log), nil
	case "rabbitmq":
		return NewRabbitMQ(cfg.RabbitMQ.URL, cfg.Queue.Name, log)
	case "memory":
		return NewMemory(100, log), nil
	default:
		return nil, fmt.Errorf("unsupported queue backend %q", cfg.Queue.Backend)
	}
}
