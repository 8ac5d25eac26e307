package models

import (
	"time"

	"github.com/google/uuid"
)

// Season represents a game season. Copper mine ownerships, contributions and
// donations are all scoped to a season.
// Maps to: season table
type Season struct {
	SeasonID   uuid.UUID `db:"season_id" json:"season_id"`
	AllianceID uuid.UUID `db:"alliance_id" json:"alliance_id"`
	Name       string    `db:"name" json:"name"`
	StartsAt   time.Time `db:"starts_at" json:"starts_at"`
	EndsAt     time.Time `db:"ends_at" json:"ends_at"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// IsOpen reports whether the season accepts new grants at the given time
func (s *Season) IsOpen(at time.Time) bool {
	return s.Active && !at.Before(s.StartsAt) && at.Before(s.EndsAt)
}
