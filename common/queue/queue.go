package queue

import (
	"context"
	"sync"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
)

// Queue interface for domain event passing. Every subscribed group receives
// every message; consumers within a group compete for messages.
type Queue interface {
	Publish(ctx context.Context, topic string, key string, message []byte) error
	Subscribe(ctx context.Context, topic string, group string, handler MessageHandler) error
	Close() error
}

// MessageHandler processes messages
type MessageHandler func(ctx context.Context, key string, value []byte) error

// Message represents a queue message
type Message struct {
	Topic string
	Key   string
	Value []byte
}

// MemoryQueue is an in-process queue for single-instance deployments.
// Messages published to a topic before any group has subscribed are dropped.
type MemoryQueue struct {
	topics map[string]map[string]chan *Message // topic -> group -> channel
	mu     sync.RWMutex
	log    *logger.Logger
}

// NewMemoryQueue creates a new in-memory queue
func NewMemoryQueue(log *logger.Logger) *MemoryQueue {
	return &MemoryQueue{
		topics: make(map[string]map[string]chan *Message),
		log:    log,
	}
}

// Publish fans a message out to every subscribed group of the topic
func (q *MemoryQueue) Publish(ctx context.Context, topic string, key string, message []byte) error {
	q.mu.RLock()
	groups := q.topics[topic]
	channels := make([]chan *Message, 0, len(groups))
	for _, ch := range groups {
		channels = append(channels, ch)
	}
	q.mu.RUnlock()

	msg := &Message{
		Topic: topic,
		Key:   key,
		Value: message,
	}

	for _, ch := range channels {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Channel full, log warning
			q.log.Warn("queue full", "topic", topic)
		}
	}
	return nil
}

// Subscribe registers a group on a topic and processes its messages until ctx is done
func (q *MemoryQueue) Subscribe(ctx context.Context, topic string, group string, handler MessageHandler) error {
	q.mu.Lock()
	groups, exists := q.topics[topic]
	if !exists {
		groups = make(map[string]chan *Message)
		q.topics[topic] = groups
	}
	ch, exists := groups[group]
	if !exists {
		ch = make(chan *Message, 1000) // Buffered channel
		groups[group] = ch
	}
	q.mu.Unlock()

	q.log.Info("subscribing to topic", "topic", topic, "group", group)

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.log.Info("subscription cancelled", "topic", topic, "group", group)
				return
			case msg := <-ch:
				if err := handler(ctx, msg.Key, msg.Value); err != nil {
					q.log.Error("message handler error", "topic", topic, "key", msg.Key, "error", err)
				}
			}
		}
	}()

	return nil
}

// Close closes the queue
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for topic, groups := range q.topics {
		for _, ch := range groups {
			close(ch)
		}
		q.log.Info("closed topic", "topic", topic)
	}

	return nil
}
