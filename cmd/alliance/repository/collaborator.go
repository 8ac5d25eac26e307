package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// CollaboratorRepository handles database operations for collaborators and invites
type CollaboratorRepository struct {
	db *db.DB
}

// NewCollaboratorRepository creates a new collaborator repository
func NewCollaboratorRepository(database *db.DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: database}
}

// Add inserts a collaborator row
func (r *CollaboratorRepository) Add(ctx context.Context, collab *models.Collaborator) error {
	query := `
		INSERT INTO collaborator (alliance_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING added_at
	`

	err := r.db.QueryRow(ctx, query,
		collab.AllianceID,
		collab.UserID,
		collab.Role,
	).Scan(&collab.AddedAt)

	if err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}

	return nil
}

// Get retrieves a collaborator row for a user within an alliance
func (r *CollaboratorRepository) Get(ctx context.Context, allianceID uuid.UUID, userID string) (*models.Collaborator, error) {
	query := `
		SELECT alliance_id, user_id, role, added_at
		FROM collaborator
		WHERE alliance_id = $1 AND user_id = $2
	`

	collab := &models.Collaborator{}
	err := r.db.QueryRow(ctx, query, allianceID, userID).Scan(
		&collab.AllianceID,
		&collab.UserID,
		&collab.Role,
		&collab.AddedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get collaborator: %w", err)
	}

	return collab, nil
}

// ListByAlliance retrieves all collaborators of an alliance
func (r *CollaboratorRepository) ListByAlliance(ctx context.Context, allianceID uuid.UUID) ([]*models.Collaborator, error) {
	query := `
		SELECT alliance_id, user_id, role, added_at
		FROM collaborator
		WHERE alliance_id = $1
		ORDER BY added_at ASC
	`

	rows, err := r.db.Query(ctx, query, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}
	defer rows.Close()

	var collabs []*models.Collaborator
	for rows.Next() {
		collab := &models.Collaborator{}
		err := rows.Scan(
			&collab.AllianceID,
			&collab.UserID,
			&collab.Role,
			&collab.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collaborator: %w", err)
		}
		collabs = append(collabs, collab)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collaborators: %w", err)
	}

	return collabs, nil
}

// Remove deletes a collaborator row
func (r *CollaboratorRepository) Remove(ctx context.Context, allianceID uuid.UUID, userID string) error {
	query := `DELETE FROM collaborator WHERE alliance_id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, allianceID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("collaborator not found: %s", userID)
	}

	return nil
}

// IsMember checks if a user is already a collaborator of an alliance
func (r *CollaboratorRepository) IsMember(ctx context.Context, allianceID uuid.UUID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM collaborator WHERE alliance_id = $1 AND user_id = $2)`

	var exists bool
	err := r.db.QueryRow(ctx, query, allianceID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check collaborator membership: %w", err)
	}

	return exists, nil
}

// CreateInvite inserts a new pending invite
func (r *CollaboratorRepository) CreateInvite(ctx context.Context, invite *models.Invite) error {
	query := `
		INSERT INTO collaborator_invite (invite_id, alliance_id, user_id, invited_by, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		invite.InviteID,
		invite.AllianceID,
		invite.UserID,
		invite.InvitedBy,
		invite.Status,
	).Scan(&invite.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	return nil
}

// GetInvite retrieves an invite by ID
func (r *CollaboratorRepository) GetInvite(ctx context.Context, inviteID uuid.UUID) (*models.Invite, error) {
	query := `
		SELECT invite_id, alliance_id, user_id, invited_by, status, created_at
		FROM collaborator_invite
		WHERE invite_id = $1
	`

	invite := &models.Invite{}
	err := r.db.QueryRow(ctx, query, inviteID).Scan(
		&invite.InviteID,
		&invite.AllianceID,
		&invite.UserID,
		&invite.InvitedBy,
		&invite.Status,
		&invite.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return invite, nil
}

// HasPendingInvite checks if a user already has a pending invite for an alliance
func (r *CollaboratorRepository) HasPendingInvite(ctx context.Context, allianceID uuid.UUID, userID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM collaborator_invite
			WHERE alliance_id = $1 AND user_id = $2 AND status = 'pending'
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, allianceID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invite: %w", err)
	}

	return exists, nil
}

// ListInvites retrieves invites for an alliance, newest first
func (r *CollaboratorRepository) ListInvites(ctx context.Context, allianceID uuid.UUID) ([]*models.Invite, error) {
	query := `
		SELECT invite_id, alliance_id, user_id, invited_by, status, created_at
		FROM collaborator_invite
		WHERE alliance_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		invite := &models.Invite{}
		err := rows.Scan(
			&invite.InviteID,
			&invite.AllianceID,
			&invite.UserID,
			&invite.InvitedBy,
			&invite.Status,
			&invite.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, invite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invites: %w", err)
	}

	return invites, nil
}

// UpdateInviteStatus moves an invite out of the pending state. Returns false
// when the invite was not pending anymore (lost race).
func (r *CollaboratorRepository) UpdateInviteStatus(ctx context.Context, inviteID uuid.UUID, status models.InviteStatus) (bool, error) {
	query := `
		UPDATE collaborator_invite
		SET status = $2
		WHERE invite_id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, inviteID, status)
	if err != nil {
		return false, fmt.Errorf("failed to update invite status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}
