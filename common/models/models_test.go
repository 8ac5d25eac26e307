package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAllowedLevelAllows(t *testing.T) {
	tests := []struct {
		level   AllowedLevel
		mine    int
		allowed bool
	}{
		{LevelNineOnly, 9, true},
		{LevelNineOnly, 10, false},
		{LevelTenOnly, 10, true},
		{LevelTenOnly, 9, false},
		{LevelEither, 9, true},
		{LevelEither, 10, true},
		{AllowedLevel("bogus"), 9, false},
	}

	for _, tt := range tests {
		if got := tt.level.Allows(tt.mine); got != tt.allowed {
			t.Errorf("%s.Allows(%d) = %v, want %v", tt.level, tt.mine, got, tt.allowed)
		}
	}
}

func TestValidMineLevel(t *testing.T) {
	for _, level := range []int{9, 10} {
		if !ValidMineLevel(level) {
			t.Errorf("ValidMineLevel(%d) = false, want true", level)
		}
	}
	for _, level := range []int{0, 1, 8, 11, -9} {
		if ValidMineLevel(level) {
			t.Errorf("ValidMineLevel(%d) = true, want false", level)
		}
	}
}

func TestSeasonIsOpen(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 2, 0)
	season := &Season{
		SeasonID:   uuid.New(),
		AllianceID: uuid.New(),
		StartsAt:   start,
		EndsAt:     end,
		Active:     true,
	}

	tests := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"before start", start.Add(-time.Hour), false},
		{"at start", start, true},
		{"mid season", start.AddDate(0, 1, 0), true},
		{"at end", end, false},
		{"after end", end.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := season.IsOpen(tt.at); got != tt.open {
				t.Errorf("IsOpen(%v) = %v, want %v", tt.at, got, tt.open)
			}
		})
	}

	closed := *season
	closed.Active = false
	if closed.IsOpen(start.AddDate(0, 1, 0)) {
		t.Error("closed season reported open within its window")
	}
}

func TestSubscriptionAnalyticsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		status  SubscriptionStatus
		enabled bool
	}{
		{"premium active", PlanPremium, SubscriptionActive, true},
		{"standard active", PlanStandard, SubscriptionActive, true},
		{"free never", PlanFree, SubscriptionActive, false},
		{"premium expired", PlanPremium, SubscriptionExpired, false},
		{"standard none", PlanStandard, SubscriptionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Subscription{Plan: tt.plan, Status: tt.status}
			if got := sub.AnalyticsEnabled(); got != tt.enabled {
				t.Errorf("AnalyticsEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestCollaboratorRoles(t *testing.T) {
	owner := &Collaborator{Role: RoleOwner}
	collab := &Collaborator{Role: RoleCollaborator}

	if !owner.IsOwner() || !owner.CanManage() {
		t.Error("owner should own and manage")
	}
	if collab.IsOwner() {
		t.Error("collaborator reported as owner")
	}
	if !collab.CanManage() {
		t.Error("collaborator should manage")
	}
}
