package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/coursebridge-backend/internal/platform/envutil"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
)

// WorkQueue is a durable named queue with explicit per-message acknowledgment,
// backed by redis streams and consumer groups. Messages survive restarts
// until a consumer acks them.
type WorkQueue interface {
	Publish(ctx context.Context, queue string, payload []byte) error
	Subscribe(ctx context.Context, queue string, handler func(ctx context.Context, payload []byte) error) error
	Close() error
}

type workQueue struct {
	log      *logger.Logger
	rdb      *goredis.Client
	group    string
	consumer string
}

func NewWorkQueue(log *logger.Logger) (WorkQueue, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(envutil.Str("REDIS_ADDR", ""))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	group := envutil.Str("REDIS_QUEUE_GROUP", "coursebridge")
	consumer := envutil.Str("REDIS_QUEUE_CONSUMER", "api-1")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &workQueue{
		log:      log.With("client", "RedisWorkQueue"),
		rdb:      rdb,
		group:    group,
		consumer: consumer,
	}, nil
}

func (q *workQueue) Publish(ctx context.Context, queue string, payload []byte) error {
	if q == nil || q.rdb == nil {
		return fmt.Errorf("work queue not initialized")
	}
	// XADD persists the entry; it stays in the stream until trimmed, and in
	// the group's pending list until acked.
	err := q.rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: queue,
		Values: map[string]interface{}{"payload": payload},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", queue, err)
	}
	return nil
}

// Subscribe blocks until ctx is cancelled, delivering one message at a time.
// Every delivered message is acked, whatever the handler returns: a message
// that cannot be processed must not wedge the queue.
func (q *workQueue) Subscribe(ctx context.Context, queue string, handler func(ctx context.Context, payload []byte) error) error {
	if q == nil || q.rdb == nil {
		return fmt.Errorf("work queue not initialized")
	}
	if err := q.ensureGroup(ctx, queue); err != nil {
		return err
	}
	log := q.log.With("queue", queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := q.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    q.group,
			Consumer: q.consumer,
			Streams:  []string{queue, ">"},
			Count:    1,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("XReadGroup failed; retrying", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				q.dispatch(ctx, log, queue, msg, handler)
			}
		}
	}
}

func (q *workQueue) dispatch(ctx context.Context, log *logger.Logger, queue string, msg goredis.XMessage, handler func(ctx context.Context, payload []byte) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Queue handler panic", "message_id", msg.ID, "panic", r)
		}
		if err := q.rdb.XAck(ctx, queue, q.group, msg.ID).Err(); err != nil {
			log.Warn("XAck failed", "message_id", msg.ID, "error", err)
		}
	}()

	payload := extractPayload(msg)
	if payload == nil {
		log.Warn("Queue message missing payload field", "message_id", msg.ID)
		return
	}
	if err := handler(ctx, payload); err != nil {
		log.Error("Queue handler failed; message acked anyway", "message_id", msg.ID, "error", err)
	}
}

func (q *workQueue) ensureGroup(ctx context.Context, queue string) error {
	err := q.rdb.XGroupCreateMkStream(ctx, queue, q.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", q.group, queue, err)
	}
	return nil
}

func (q *workQueue) Close() error {
	if q == nil || q.rdb == nil {
		return nil
	}
	return q.rdb.Close()
}

func extractPayload(msg goredis.XMessage) []byte {
	val, ok := msg.Values["payload"]
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	default:
		return nil
	}
}
