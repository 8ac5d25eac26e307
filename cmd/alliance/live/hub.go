// Package live pushes timeline events to connected dashboard clients over
// WebSocket. Each API instance runs one hub; the hub joins the event stream
// under its own consumer group so every instance sees every event and can
// serve whichever clients happen to be connected to it.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/filter"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/queue"
)

// Message carries one event to the broadcast loop. Data is the serialized
// form pushed to sockets; Event is kept alongside so per-client filters can
// evaluate without re-parsing.
type Message struct {
	AllianceID uuid.UUID
	Event      *models.AllianceEvent
	Data       []byte
}

// Hub maintains active WebSocket connections grouped by alliance and fans
// incoming events out to them.
type Hub struct {
	// Map: alliance ID → connected clients
	connections map[uuid.UUID][]*Client
	mutex       sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message

	filter *filter.Evaluator
	log    *logger.Logger
}

// NewHub creates a new Hub instance
func NewHub(eval *filter.Evaluator, log *logger.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		filter:      eval,
		log:         log,
	}
}

// Register queues a client for registration once its socket is upgraded
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run starts the hub's main loop and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("live hub started")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToAlliance(message)
		}
	}
}

// Start subscribes the hub to the event stream. The group name is unique per
// process: groups exist here for acking, not load balancing, and a shared
// name would split the flow between instances.
func (h *Hub) Start(ctx context.Context, q queue.Queue, stream string) error {
	group := fmt.Sprintf("live-%s", uuid.New().String()[:8])
	if err := q.Subscribe(ctx, stream, group, h.handle); err != nil {
		return fmt.Errorf("subscribe to %s: %w", stream, err)
	}

	h.log.Info("live hub subscribed", "stream", stream, "group", group)
	return nil
}

// handle converts one domain event into its timeline shape and hands it to
// the broadcast loop. Errors never propagate: a live push is best-effort and
// must not hold up the stream.
func (h *Hub) handle(ctx context.Context, key string, value []byte) error {
	var event models.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.log.Error("dropping malformed event", "key", key, "error", err)
		return nil
	}

	row := &models.AllianceEvent{
		AllianceID: event.AllianceID,
		SeasonID:   event.SeasonID,
		Kind:       event.Kind,
		Actor:      event.Actor,
		MemberName: gjson.GetBytes(value, "attrs.member_name").String(),
		Attrs:      event.Attrs,
		OccurredAt: event.OccurredAt,
	}

	data, err := json.Marshal(row)
	if err != nil {
		h.log.Error("dropping unserializable event", "kind", event.Kind, "error", err)
		return nil
	}

	select {
	case h.broadcast <- &Message{AllianceID: event.AllianceID, Event: row, Data: data}:
	default:
		// Broadcast queue is full; the timeline keeps the event, only the
		// live push is lost
		h.log.Warn("broadcast queue full, dropping live event", "kind", event.Kind)
	}

	return nil
}

// registerClient adds a client to its alliance's connection list
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.connections[client.allianceID] = append(h.connections[client.allianceID], client)
	h.log.Debug("live client registered",
		"alliance_id", client.allianceID,
		"total_for_alliance", len(h.connections[client.allianceID]),
	)
}

// unregisterClient removes a client and closes its send channel. Clients the
// broadcast path already dropped are a no-op here.
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.dropClient(client)
}

// dropClient removes a client from its alliance list and closes its send
// channel exactly once. Caller must hold the write lock.
func (h *Hub) dropClient(client *Client) {
	clients := h.connections[client.allianceID]
	for i, c := range clients {
		if c == client {
			h.connections[client.allianceID] = append(clients[:i], clients[i+1:]...)
			close(client.send)

			if len(h.connections[client.allianceID]) == 0 {
				delete(h.connections, client.allianceID)
			}

			h.log.Debug("live client dropped",
				"alliance_id", client.allianceID,
				"remaining_for_alliance", len(h.connections[client.allianceID]),
			)
			return
		}
	}
}

// broadcastToAlliance sends a message to every connection watching the
// event's alliance, applying each client's filter first.
func (h *Hub) broadcastToAlliance(message *Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients := h.connections[message.AllianceID]
	if len(clients) == 0 {
		return
	}

	var stuck []*Client
	for _, client := range clients {
		if client.filter != "" {
			ok, err := h.filter.Match(client.filter, message.Event)
			if err != nil {
				// The expression compiled at connect time, so this is a
				// runtime mismatch against this particular event; skip it
				h.log.Warn("live filter evaluation failed",
					"alliance_id", client.allianceID,
					"error", err,
				)
				continue
			}
			if !ok {
				continue
			}
		}

		select {
		case client.send <- message.Data:
		default:
			// Client's send buffer is full, drop the connection
			h.log.Warn("live client send buffer full, closing",
				"alliance_id", client.allianceID,
			)
			stuck = append(stuck, client)
		}
	}

	for _, client := range stuck {
		h.dropClient(client)
	}
}

// closeAll closes every connected client on shutdown
func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for allianceID, clients := range h.connections {
		for _, client := range clients {
			close(client.send)
		}
		delete(h.connections, allianceID)
	}
}

// ConnectionCount returns the total number of active connections
func (h *Hub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.connections {
		count += len(clients)
	}
	return count
}

// AllianceCount returns the number of alliances with at least one connection
func (h *Hub) AllianceCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}
