package models

import (
	"time"

	"github.com/google/uuid"
)

// Member represents a game member tracked by the alliance
// Maps to: member table
type Member struct {
	MemberID   uuid.UUID `db:"member_id" json:"member_id"`
	AllianceID uuid.UUID `db:"alliance_id" json:"alliance_id"`

	// In-game name
	Name string `db:"name" json:"name"`

	// Internal group the alliance sorts the member into (e.g. '1st legion')
	GroupName string `db:"group_name" json:"group_name"`

	// Name the member uses in the coordination chat, often different from
	// the in-game name
	ChatDisplayName string `db:"chat_display_name" json:"chat_display_name"`

	// Cumulative merit score. This is the eligibility input; contribution
	// and donation ledgers are analytics data, not the merit source.
	Merit int64 `db:"merit" json:"merit"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
