package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// EventRepository handles database operations for timeline events. It is
// shared between the API (timeline reads) and the timeline worker (writes).
type EventRepository struct {
	db *db.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(database *db.DB) *EventRepository {
	return &EventRepository{db: database}
}

// Insert persists one timeline event
func (r *EventRepository) Insert(ctx context.Context, event *models.AllianceEvent) error {
	query := `
		INSERT INTO alliance_event (alliance_id, season_id, kind, actor, member_name, attrs, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING event_id
	`

	attrs, err := json.Marshal(event.Attrs)
	if err != nil {
		return fmt.Errorf("failed to marshal event attrs: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		query,
		event.AllianceID,
		event.SeasonID,
		event.Kind,
		event.Actor,
		event.MemberName,
		attrs,
		event.OccurredAt,
	).Scan(&event.EventID)

	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// TimelineQuery narrows a timeline listing
type TimelineQuery struct {
	SeasonID *uuid.UUID
	Kind     string
	Before   *time.Time
	Limit    int
}

// ListByAlliance retrieves timeline events for an alliance, newest first
func (r *EventRepository) ListByAlliance(ctx context.Context, allianceID uuid.UUID, q TimelineQuery) ([]*models.AllianceEvent, error) {
	query := `
		SELECT event_id, alliance_id, season_id, kind, actor, member_name, attrs, occurred_at
		FROM alliance_event
		WHERE alliance_id = $1
		  AND ($2::uuid IS NULL OR season_id = $2)
		  AND ($3::text = '' OR kind = $3)
		  AND ($4::timestamptz IS NULL OR occurred_at < $4)
		ORDER BY occurred_at DESC, event_id DESC
		LIMIT $5
	`

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(ctx, query, allianceID, q.SeasonID, q.Kind, q.Before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.AllianceEvent
	for rows.Next() {
		event := &models.AllianceEvent{}
		var attrs []byte

		err := rows.Scan(
			&event.EventID,
			&event.AllianceID,
			&event.SeasonID,
			&event.Kind,
			&event.Actor,
			&event.MemberName,
			&attrs,
			&event.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &event.Attrs); err != nil {
				return nil, fmt.Errorf("failed to unmarshal event attrs: %w", err)
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// DeleteByAlliance removes an alliance's timeline, used when the alliance
// itself is deleted
func (r *EventRepository) DeleteByAlliance(ctx context.Context, allianceID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM alliance_event WHERE alliance_id = $1`, allianceID)
	if err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}
	return nil
}
