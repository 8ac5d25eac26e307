package models

import (
	"time"

	"github.com/google/uuid"
)

// Alliance represents a managed in-game alliance
// Maps to: alliance table
type Alliance struct {
	AllianceID uuid.UUID `db:"alliance_id" json:"alliance_id"`

	// Display name as entered by the owner
	Name string `db:"name" json:"name"`

	// URL-safe identifier derived from the name, unique
	Slug string `db:"slug" json:"slug"`

	// Game server / realm the alliance plays on
	GameServer string `db:"game_server" json:"game_server"`

	// User who created the alliance; always a collaborator with role 'owner'
	OwnerUserID string `db:"owner_user_id" json:"owner_user_id"`

	// Schemaless settings document (announcement, timezone, mine notes, ...)
	// Updated via RFC 7386 JSON merge patch
	Settings map[string]interface{} `db:"settings" json:"settings"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Role represents a collaborator's role within an alliance
type Role string

const (
	RoleOwner        Role = "owner"
	RoleCollaborator Role = "collaborator"
)

// Collaborator represents a dashboard user with access to an alliance
// Maps to: collaborator table, one row per (alliance, user)
type Collaborator struct {
	AllianceID uuid.UUID `db:"alliance_id" json:"alliance_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Role       Role      `db:"role" json:"role"`
	AddedAt    time.Time `db:"added_at" json:"added_at"`
}

// CanManage reports whether the role may mutate alliance data
func (c *Collaborator) CanManage() bool {
	return c.Role == RoleOwner || c.Role == RoleCollaborator
}

// IsOwner reports whether the role may perform destructive operations
func (c *Collaborator) IsOwner() bool {
	return c.Role == RoleOwner
}

// InviteStatus represents the lifecycle of a collaborator invite
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Invite represents a pending collaborator invitation
// Maps to: collaborator_invite table
type Invite struct {
	InviteID   uuid.UUID    `db:"invite_id" json:"invite_id"`
	AllianceID uuid.UUID    `db:"alliance_id" json:"alliance_id"`
	UserID     string       `db:"user_id" json:"user_id"`
	InvitedBy  string       `db:"invited_by" json:"invited_by"`
	Status     InviteStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}
