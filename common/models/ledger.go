package models

import (
	"time"

	"github.com/google/uuid"
)

// Contribution kinds recorded by alliances. Free-form values are accepted;
// these are the ones the dashboard suggests.
const (
	ContributionConstruction = "construction"
	ContributionTech         = "tech"
	ContributionBattle       = "battle"
)

// Contribution represents one recorded contribution entry
// Maps to: contribution table
type Contribution struct {
	ContributionID uuid.UUID `db:"contribution_id" json:"contribution_id"`
	SeasonID       uuid.UUID `db:"season_id" json:"season_id"`
	MemberID       uuid.UUID `db:"member_id" json:"member_id"`
	Amount         int64     `db:"amount" json:"amount"`
	Kind           string    `db:"kind" json:"kind"`
	Note           *string   `db:"note" json:"note,omitempty"`
	RecordedAt     time.Time `db:"recorded_at" json:"recorded_at"`
}

// Resources donated to the alliance stockpile
const (
	ResourceCopper = "copper"
	ResourceGrain  = "grain"
	ResourceWood   = "wood"
)

// Donation represents one recorded donation entry
// Maps to: donation table
type Donation struct {
	DonationID uuid.UUID `db:"donation_id" json:"donation_id"`
	SeasonID   uuid.UUID `db:"season_id" json:"season_id"`
	MemberID   uuid.UUID `db:"member_id" json:"member_id"`
	Amount     int64     `db:"amount" json:"amount"`
	Resource   string    `db:"resource" json:"resource"`
	Note       *string   `db:"note" json:"note,omitempty"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}
