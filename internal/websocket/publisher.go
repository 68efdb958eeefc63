package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"signaling-server/internal/call"
	"signaling-server/internal/queue"

	"github.com/go-redis/redis/v8"
)

const publishTimeout = 2 * time.Second

// RedisClient is the subset of *redis.Client used for publishing.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

// RedisPublisher sends call lifecycle events to a Redis channel. Publishing
// happens on the worker queue so the hub never waits on Redis; events that
// do not fit in the queue are dropped.
type RedisPublisher struct {
	client  RedisClient
	channel string
	queue   *queue.RequestQueueManager
	log     *slog.Logger
}

func NewRedisPublisher(client RedisClient, channel string, q *queue.RequestQueueManager, log *slog.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		queue:   q,
		log:     log,
	}
}

func (p *RedisPublisher) Publish(event call.LifecycleEvent) {
	eventType := string(event.Type)
	payload, err := json.Marshal(event)
	if err != nil {
		lifecycleEvents.WithLabelValues(eventType, "failed").Inc()
		p.log.Error("marshal lifecycle event", "type", eventType, "error", err)
		return
	}

	job := queue.Job{
		Name: "publish " + eventType,
		Fn: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()

			if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
				lifecycleEvents.WithLabelValues(eventType, "failed").Inc()
				return fmt.Errorf("redis publish %s: %w", eventType, err)
			}
			lifecycleEvents.WithLabelValues(eventType, "published").Inc()
			return nil
		},
	}

	if err := p.queue.TryEnqueue(job); err != nil {
		lifecycleEvents.WithLabelValues(eventType, "dropped").Inc()
		p.log.Warn("lifecycle event dropped", "type", eventType, "room", event.RoomID, "error", err)
	}
}
