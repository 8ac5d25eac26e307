package queue

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/config"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/redis"
)

// StreamQueue implements Queue over Redis Streams. Topics map to streams and
// groups to consumer groups, so the timeline recorder and the live feed each
// see the full event flow. Unacked messages stay pending on the group for
// inspection; there is no automatic claim of another consumer's pending
// entries.
type StreamQueue struct {
	client   *redis.Client
	consumer string
	maxLen   int64
	batch    int64
	block    time.Duration
	log      *logger.Logger
}

// NewStreamQueue creates a Redis Streams queue
func NewStreamQueue(client *redis.Client, cfg config.EventsConfig, log *logger.Logger) *StreamQueue {
	host, err := os.Hostname()
	if err != nil {
		host = "consumer"
	}

	return &StreamQueue{
		client:   client,
		consumer: fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
		maxLen:   cfg.MaxLen,
		batch:    cfg.BatchSize,
		block:    cfg.Block,
		log:      log,
	}
}

// Publish adds a message to the topic's stream
func (q *StreamQueue) Publish(ctx context.Context, topic string, key string, message []byte) error {
	_, err := q.client.AddToStream(ctx, topic, q.maxLen, map[string]interface{}{
		"key":   key,
		"value": string(message),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe joins a consumer group on the topic's stream and processes
// messages until ctx is done
func (q *StreamQueue) Subscribe(ctx context.Context, topic string, group string, handler MessageHandler) error {
	if err := q.client.CreateStreamGroup(ctx, topic, group); err != nil {
		return fmt.Errorf("create group %s on %s: %w", group, topic, err)
	}

	q.log.Info("subscribing to stream", "stream", topic, "group", group, "consumer", q.consumer)

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.log.Info("stream subscription cancelled", "stream", topic, "group", group)
				return
			default:
			}

			streams, err := q.client.ReadFromStreamGroup(ctx, group, q.consumer, topic, q.batch, q.block)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				q.log.Error("stream read failed", "stream", topic, "group", group, "error", err)
				continue
			}

			for _, stream := range streams {
				for _, msg := range stream.Messages {
					key, _ := msg.Values["key"].(string)
					value, _ := msg.Values["value"].(string)

					if err := handler(ctx, key, []byte(value)); err != nil {
						// Leave unacked so it stays pending on the group
						q.log.Error("message handler error", "stream", topic, "id", msg.ID, "key", key, "error", err)
						continue
					}

					if err := q.client.AckStreamMessage(ctx, topic, group, msg.ID); err != nil {
						q.log.Warn("ack failed", "stream", topic, "id", msg.ID, "error", err)
					}
				}
			}
		}
	}()

	return nil
}

// Close closes the queue. The Redis client is owned by the caller.
func (q *StreamQueue) Close() error {
	q.log.Info("stream queue closed", "consumer", q.consumer)
	return nil
}
