package models

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents a dashboard subscription plan
type Plan string

const (
	PlanFree     Plan = "free"
	PlanStandard Plan = "standard"
	PlanPremium  Plan = "premium"
)

// Valid reports whether the value is a known plan
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanStandard, PlanPremium:
		return true
	}
	return false
}

// SubscriptionStatus represents the state of an alliance's subscription
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
	SubscriptionNone    SubscriptionStatus = "none"
)

// Subscription represents an alliance's dashboard subscription
// Maps to: subscription table, one row per alliance
type Subscription struct {
	AllianceID uuid.UUID          `db:"alliance_id" json:"alliance_id"`
	Plan       Plan               `db:"plan" json:"plan"`
	Status     SubscriptionStatus `db:"status" json:"status"`
	ExpiresAt  *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	UpdatedAt  time.Time          `db:"updated_at" json:"updated_at"`
}

// AnalyticsEnabled reports whether the subscription unlocks the analytics
// endpoints. The free plan never does, regardless of status.
func (s *Subscription) AnalyticsEnabled() bool {
	return s.Plan != PlanFree && s.Status == SubscriptionActive
}
