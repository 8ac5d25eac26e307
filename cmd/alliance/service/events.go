package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/queue"
)

// EventPublisher publishes domain events to the alliance event stream.
// Publication is fire-and-forget: cache invalidation has already happened
// synchronously by the time an event goes out, so a lost event costs a
// timeline entry, never correctness.
type EventPublisher struct {
	queue  queue.Queue
	stream string
	log    *logger.Logger
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(q queue.Queue, stream string, log *logger.Logger) *EventPublisher {
	return &EventPublisher{
		queue:  q,
		stream: stream,
		log:    log,
	}
}

// Publish emits one event. Errors are logged, never returned: the mutation
// that triggered the event has already committed.
func (p *EventPublisher) Publish(ctx context.Context, allianceID uuid.UUID, seasonID *uuid.UUID, kind, actor string, attrs map[string]interface{}) {
	event := models.Event{
		AllianceID: allianceID,
		SeasonID:   seasonID,
		Kind:       kind,
		Actor:      actor,
		Attrs:      attrs,
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal event", "kind", kind, "error", err)
		return
	}

	if err := p.queue.Publish(ctx, p.stream, allianceID.String(), payload); err != nil {
		p.log.Error("failed to publish event",
			"kind", kind,
			"alliance_id", allianceID,
			"error", err,
		)
	}
}
