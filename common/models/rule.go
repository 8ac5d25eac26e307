package models

import (
	"time"

	"github.com/google/uuid"
)

// AllowedLevel restricts which copper mine levels a tier may be redeemed for
type AllowedLevel string

const (
	LevelNineOnly AllowedLevel = "level_9_only"
	LevelTenOnly  AllowedLevel = "level_10_only"
	LevelEither   AllowedLevel = "either"
)

// Valid reports whether the value is a known level restriction
func (l AllowedLevel) Valid() bool {
	switch l {
	case LevelNineOnly, LevelTenOnly, LevelEither:
		return true
	}
	return false
}

// Allows reports whether a mine of the given level satisfies the restriction
func (l AllowedLevel) Allows(level int) bool {
	switch l {
	case LevelNineOnly:
		return level == 9
	case LevelTenOnly:
		return level == 10
	case LevelEither:
		return level == 9 || level == 10
	}
	return false
}

// MineRule defines the merit threshold for acquiring the Nth copper mine.
// Tier N covers a member's Nth mine: a member holding N-1 mines must meet
// tier N's threshold to apply for the next one.
// Maps to: mine_rule table, tier unique per alliance
type MineRule struct {
	RuleID     uuid.UUID `db:"rule_id" json:"rule_id"`
	AllianceID uuid.UUID `db:"alliance_id" json:"alliance_id"`

	// Ordinal of the mine this rule gates, starting at 1
	Tier int `db:"tier" json:"tier"`

	// Minimum cumulative merit to apply for this tier
	RequiredMerit int64 `db:"required_merit" json:"required_merit"`

	// Which mine levels the tier may be redeemed for
	AllowedLevel AllowedLevel `db:"allowed_level" json:"allowed_level"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
