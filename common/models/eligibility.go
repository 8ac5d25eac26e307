package models

import "github.com/google/uuid"

// EligibilityVerdict is the derived answer to "may this member apply for
// their next copper mine". It is computed on demand and never persisted.
//
// CurrentCount is a pure count of the member's ownership rows in the season.
// The Next* fields describe the tier being evaluated and are null when no
// rule defines that tier.
type EligibilityVerdict struct {
	MemberID          uuid.UUID     `json:"member_id"`
	CurrentCount      int           `json:"current_count"`
	NextTier          *int          `json:"next_tier"`
	NextRequiredMerit *int64        `json:"next_required_merit"`
	NextAllowedLevel  *AllowedLevel `json:"next_allowed_level"`
	CanApply          bool          `json:"can_apply"`
}
