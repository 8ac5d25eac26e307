package models

import (
	"time"

	"github.com/google/uuid"
)

// MineOwnership represents one granted copper mine within a season.
// A member's mine count is always derived by counting these rows; it is
// never tracked as a separate counter.
// Maps to: mine_ownership table, (season, x, y) unique
type MineOwnership struct {
	OwnershipID uuid.UUID `db:"ownership_id" json:"ownership_id"`
	SeasonID    uuid.UUID `db:"season_id" json:"season_id"`
	MemberID    uuid.UUID `db:"member_id" json:"member_id"`

	// Map coordinate of the mine
	X int `db:"x" json:"x"`
	Y int `db:"y" json:"y"`

	// Mine level, 9 or 10
	Level int `db:"level" json:"level"`

	// When the grant was recorded
	AppliedAt time.Time `db:"applied_at" json:"applied_at"`

	// Display fields captured from the member at grant/transfer time so the
	// roster view needs no join
	MemberName      string `db:"member_name" json:"member_name"`
	MemberGroup     string `db:"member_group" json:"member_group"`
	ChatDisplayName string `db:"chat_display_name" json:"chat_display_name"`
}

// ValidMineLevel reports whether the level is one the game has copper mines for
func ValidMineLevel(level int) bool {
	return level == 9 || level == 10
}
