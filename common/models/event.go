package models

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds published to the alliance event stream
const (
	EventAllianceCreated      = "alliance.created"
	EventRuleCreated          = "rule.created"
	EventRuleUpdated          = "rule.updated"
	EventRuleDeleted          = "rule.deleted"
	EventOwnershipGranted     = "ownership.granted"
	EventOwnershipRevoked     = "ownership.revoked"
	EventOwnershipTransferred = "ownership.transferred"
	EventMemberJoined         = "member.joined"
	EventMemberUpdated        = "member.updated"
	EventMemberRemoved        = "member.removed"
	EventSeasonStarted        = "season.started"
	EventSeasonClosed         = "season.closed"
	EventContributionRecorded = "contribution.recorded"
	EventDonationRecorded     = "donation.recorded"
	EventCollaboratorJoined   = "collaborator.joined"
	EventSettingsUpdated      = "settings.updated"
	EventSubscriptionChanged  = "subscription.changed"
)

// Event is the message published to the event stream after a mutation.
// Publication is fire-and-forget: the mutation's cache invalidation has
// already happened synchronously by the time an event goes out.
type Event struct {
	AllianceID uuid.UUID              `json:"alliance_id"`
	SeasonID   *uuid.UUID             `json:"season_id,omitempty"`
	Kind       string                 `json:"kind"`
	Actor      string                 `json:"actor"`
	Attrs      map[string]interface{} `json:"attrs,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// AllianceEvent is a persisted timeline entry, written by the timeline
// recorder from the event stream
// Maps to: alliance_event table
type AllianceEvent struct {
	EventID    int64      `db:"event_id" json:"event_id"`
	AllianceID uuid.UUID  `db:"alliance_id" json:"alliance_id"`
	SeasonID   *uuid.UUID `db:"season_id" json:"season_id,omitempty"`
	Kind       string     `db:"kind" json:"kind"`
	Actor      string     `db:"actor" json:"actor"`

	// Extracted from attrs at write time so timeline search by member needs
	// no JSON operators
	MemberName string `db:"member_name" json:"member_name,omitempty"`

	Attrs      map[string]interface{} `db:"attrs" json:"attrs,omitempty"`
	OccurredAt time.Time              `db:"occurred_at" json:"occurred_at"`
}
