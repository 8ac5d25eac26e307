package live

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/filter"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	eval, err := filter.NewEvaluator()
	require.NoError(t, err)
	return NewHub(eval, logger.New("error", "json"))
}

func testEvent(t *testing.T, allianceID uuid.UUID, kind string, attrs map[string]interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(models.Event{
		AllianceID: allianceID,
		Kind:       kind,
		Actor:      "officer-1",
		Attrs:      attrs,
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return data
}

// client builds a connectionless client; broadcast only touches the send
// channel, so tests never need a real socket
func client(h *Hub, allianceID uuid.UUID, filter string, buffer int) *Client {
	return &Client{hub: h, allianceID: allianceID, filter: filter, send: make(chan []byte, buffer)}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastsPerAlliance(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := testHub(t)
	go h.Run(ctx)

	allianceA := uuid.New()
	allianceB := uuid.New()

	watcherA := client(h, allianceA, "", 8)
	watcherB := client(h, allianceB, "", 8)
	h.Register(watcherA)
	h.Register(watcherB)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 2 }, time.Second, 5*time.Millisecond)

	payload := testEvent(t, allianceA, models.EventRuleCreated, map[string]interface{}{
		"member_name": "Zhou Yu",
	})
	require.NoError(t, h.handle(ctx, allianceA.String(), payload))

	frame := receive(t, watcherA)
	assert.Contains(t, string(frame), models.EventRuleCreated)
	assert.Contains(t, string(frame), `"member_name":"Zhou Yu"`)

	assertSilent(t, watcherB)
	assert.Equal(t, 2, h.AllianceCount())
}

func TestHubAppliesClientFilters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := testHub(t)
	go h.Run(ctx)

	allianceID := uuid.New()
	grantsOnly := client(h, allianceID, `event.kind == "ownership.granted"`, 8)
	everything := client(h, allianceID, "", 8)
	h.Register(grantsOnly)
	h.Register(everything)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.handle(ctx, allianceID.String(),
		testEvent(t, allianceID, models.EventMemberJoined, nil)))

	assert.Contains(t, string(receive(t, everything)), models.EventMemberJoined)
	assertSilent(t, grantsOnly)

	require.NoError(t, h.handle(ctx, allianceID.String(),
		testEvent(t, allianceID, models.EventOwnershipGranted, nil)))

	assert.Contains(t, string(receive(t, grantsOnly)), models.EventOwnershipGranted)
	assert.Contains(t, string(receive(t, everything)), models.EventOwnershipGranted)
}

func TestHubDropsStuckClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := testHub(t)
	go h.Run(ctx)

	allianceID := uuid.New()
	stuck := client(h, allianceID, "", 1)
	h.Register(stuck)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	// First event fills the buffer; the second cannot be delivered, so the
	// hub drops the connection
	require.NoError(t, h.handle(ctx, allianceID.String(), testEvent(t, allianceID, models.EventSeasonStarted, nil)))
	require.NoError(t, h.handle(ctx, allianceID.String(), testEvent(t, allianceID, models.EventSeasonClosed, nil)))

	require.Eventually(t, func() bool { return h.ConnectionCount() == 0 }, time.Second, 5*time.Millisecond)

	// Buffered frame still readable, then the closed channel reports done
	<-stuck.send
	_, open := <-stuck.send
	assert.False(t, open, "send channel should be closed after drop")
}

func TestHubIgnoresMalformedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := testHub(t)
	go h.Run(ctx)

	// Returning nil keeps the stream moving instead of redelivering garbage
	require.NoError(t, h.handle(ctx, "k", []byte("not json")))
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := testHub(t)
	go h.Run(ctx)

	allianceID := uuid.New()
	c := client(h, allianceID, "", 1)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	h.unregister <- c
	require.Eventually(t, func() bool { return h.ConnectionCount() == 0 }, time.Second, 5*time.Millisecond)

	// A second unregister for the same client must not panic on a double
	// close; readPump always sends one on exit
	h.unregister <- c
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, h.ConnectionCount())
}
