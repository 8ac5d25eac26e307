// Package timeline turns the domain event stream into persisted timeline
// rows. The recorder runs inside cmd/timeline-worker against the Redis
// stream, or in-process when the service uses the memory queue.
package timeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/queue"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/repository"
)

// Group is the consumer group the recorder joins. One recorder instance at a
// time receives each event within this group.
const Group = "timeline"

// Recorder consumes domain events and writes timeline rows
type Recorder struct {
	queue  queue.Queue
	events *repository.EventRepository
	stream string
	log    *logger.Logger
}

// NewRecorder creates a new timeline recorder
func NewRecorder(q queue.Queue, events *repository.EventRepository, stream string, log *logger.Logger) *Recorder {
	return &Recorder{
		queue:  q,
		events: events,
		stream: stream,
		log:    log,
	}
}

// Start subscribes to the event stream and records events until ctx is done
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.queue.Subscribe(ctx, r.stream, Group, r.handle); err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.stream, err)
	}

	r.log.Info("timeline recorder started", "stream", r.stream)
	return nil
}

// handle persists one event. Returning an error leaves the message unacked
// for redelivery.
func (r *Recorder) handle(ctx context.Context, key string, value []byte) error {
	var event models.Event
	if err := json.Unmarshal(value, &event); err != nil {
		// Malformed payloads would redeliver forever; log and drop
		r.log.Error("dropping malformed event", "key", key, "error", err)
		return nil
	}

	row := &models.AllianceEvent{
		AllianceID: event.AllianceID,
		SeasonID:   event.SeasonID,
		Kind:       event.Kind,
		Actor:      event.Actor,
		// Pull the display name out of attrs so timeline search by member
		// stays a plain column comparison
		MemberName: gjson.GetBytes(value, "attrs.member_name").String(),
		Attrs:      event.Attrs,
		OccurredAt: event.OccurredAt,
	}

	if err := r.events.Insert(ctx, row); err != nil {
		return fmt.Errorf("insert timeline event: %w", err)
	}

	r.log.Debug("recorded timeline event",
		"alliance_id", event.AllianceID,
		"kind", event.Kind,
		"event_id", row.EventID,
	)

	return nil
}
