package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
)

// collector accumulates delivered messages behind a lock so tests can poll
type collector struct {
	mu       sync.Mutex
	messages []string
}

func (c *collector) handle(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, key+"="+string(value))
	return nil
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *collector) first() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[0]
}

func TestMemoryQueueFanOutAcrossGroups(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemoryQueue(logger.New("error", "json"))
	defer q.Close()

	recorder := &collector{}
	live := &collector{}

	require.NoError(t, q.Subscribe(ctx, "alliance.events", "timeline", recorder.handle))
	require.NoError(t, q.Subscribe(ctx, "alliance.events", "live-1", live.handle))

	require.NoError(t, q.Publish(ctx, "alliance.events", "a1", []byte(`{"kind":"rule.created"}`)))

	// Every group sees every message
	require.Eventually(t, func() bool {
		return recorder.len() == 1 && live.len() == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, `a1={"kind":"rule.created"}`, recorder.first())
	assert.Equal(t, `a1={"kind":"rule.created"}`, live.first())
}

func TestMemoryQueuePublishBeforeSubscribeDrops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemoryQueue(logger.New("error", "json"))
	defer q.Close()

	require.NoError(t, q.Publish(ctx, "alliance.events", "lost", []byte("x")))

	late := &collector{}
	require.NoError(t, q.Subscribe(ctx, "alliance.events", "timeline", late.handle))
	require.NoError(t, q.Publish(ctx, "alliance.events", "kept", []byte("y")))

	require.Eventually(t, func() bool { return late.len() == 1 }, time.Second, 5*time.Millisecond)

	// Only the message published after the subscription arrived
	assert.Equal(t, "kept=y", late.first())
}

func TestMemoryQueueTopicsAreIndependent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewMemoryQueue(logger.New("error", "json"))
	defer q.Close()

	events := &collector{}
	other := &collector{}

	require.NoError(t, q.Subscribe(ctx, "alliance.events", "timeline", events.handle))
	require.NoError(t, q.Subscribe(ctx, "other.topic", "timeline", other.handle))

	require.NoError(t, q.Publish(ctx, "alliance.events", "k", []byte("v")))

	require.Eventually(t, func() bool { return events.len() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, other.len(), "message leaked across topics")
}

func TestMemoryQueueSubscriptionStopsOnCancel(t *testing.T) {
	ctx := context.Background()
	subCtx, cancel := context.WithCancel(ctx)

	q := NewMemoryQueue(logger.New("error", "json"))
	defer q.Close()

	c := &collector{}
	require.NoError(t, q.Subscribe(subCtx, "alliance.events", "timeline", c.handle))

	require.NoError(t, q.Publish(ctx, "alliance.events", "before", []byte("1")))
	require.Eventually(t, func() bool { return c.len() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	// Give the consumer goroutine a beat to observe the cancel
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, q.Publish(ctx, "alliance.events", "after", []byte("2")))
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, c.len(), "cancelled subscription should stop consuming")
}
