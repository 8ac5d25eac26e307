package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// CollaboratorService handles collaborator membership and invites
type CollaboratorService struct {
	repo   *repository.CollaboratorRepository
	access *AccessService
	events *EventPublisher
	log    *logger.Logger
}

// NewCollaboratorService creates a new collaborator service
func NewCollaboratorService(repo *repository.CollaboratorRepository, access *AccessService, events *EventPublisher, log *logger.Logger) *CollaboratorService {
	return &CollaboratorService{
		repo:   repo,
		access: access,
		events: events,
		log:    log,
	}
}

// List retrieves the collaborators of an alliance
func (s *CollaboratorService) List(ctx context.Context, userID string, allianceID uuid.UUID) ([]*models.Collaborator, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	collabs, err := s.repo.ListByAlliance(ctx, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collaborators: %w", err)
	}

	return collabs, nil
}

// Invite creates a pending invite for a user. The two conflict cases carry
// distinct codes so clients can branch without parsing messages: a user with
// an open invite is invite_already_pending, an existing collaborator is
// already_member.
func (s *CollaboratorService) Invite(ctx context.Context, userID string, allianceID uuid.UUID, inviteeID string) (*models.Invite, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if inviteeID == "" {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "user_id is required")
	}

	isMember, err := s.repo.IsMember(ctx, allianceID, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil, apperr.Conflict(apperr.CodeAlreadyMember, "user is already a collaborator")
	}

	pending, err := s.repo.HasPendingInvite(ctx, allianceID, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invite: %w", err)
	}
	if pending {
		return nil, apperr.Conflict(apperr.CodeInviteAlreadyPending, "user already has a pending invite")
	}

	invite := &models.Invite{
		InviteID:   uuid.New(),
		AllianceID: allianceID,
		UserID:     inviteeID,
		InvitedBy:  userID,
		Status:     models.InvitePending,
	}

	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	s.log.Info("created invite",
		"alliance_id", allianceID,
		"invitee", inviteeID,
		"invited_by", userID,
	)

	return invite, nil
}

// ListInvites retrieves the invites of an alliance
func (s *CollaboratorService) ListInvites(ctx context.Context, userID string, allianceID uuid.UUID) ([]*models.Invite, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	invites, err := s.repo.ListInvites(ctx, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}

	return invites, nil
}

// Accept turns a pending invite into a collaborator row. Only the invited
// user may accept; a closed invite conflicts.
func (s *CollaboratorService) Accept(ctx context.Context, userID string, allianceID, inviteID uuid.UUID) (*models.Collaborator, error) {
	invite, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeInviteNotFound, "invite not found")
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	if invite.AllianceID != allianceID {
		return nil, apperr.NotFound(apperr.CodeInviteNotFound, "invite not found")
	}
	if invite.UserID != userID {
		return nil, apperr.Permission(apperr.CodePermissionDenied, "invite belongs to another user")
	}

	closed, err := s.repo.UpdateInviteStatus(ctx, inviteID, models.InviteAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to accept invite: %w", err)
	}
	if !closed {
		return nil, apperr.Conflict(apperr.CodeInviteClosed, "invite is no longer pending")
	}

	collab := &models.Collaborator{
		AllianceID: allianceID,
		UserID:     userID,
		Role:       models.RoleCollaborator,
	}
	if err := s.repo.Add(ctx, collab); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}

	s.log.Info("invite accepted", "alliance_id", allianceID, "user", userID)

	s.events.Publish(ctx, allianceID, nil, models.EventCollaboratorJoined, userID, map[string]interface{}{
		"invited_by": invite.InvitedBy,
	})

	return collab, nil
}

// Decline closes a pending invite without adding the user
func (s *CollaboratorService) Decline(ctx context.Context, userID string, allianceID, inviteID uuid.UUID) error {
	invite, err := s.repo.GetInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeInviteNotFound, "invite not found")
		}
		return fmt.Errorf("failed to get invite: %w", err)
	}

	if invite.AllianceID != allianceID {
		return apperr.NotFound(apperr.CodeInviteNotFound, "invite not found")
	}
	if invite.UserID != userID {
		return apperr.Permission(apperr.CodePermissionDenied, "invite belongs to another user")
	}

	closed, err := s.repo.UpdateInviteStatus(ctx, inviteID, models.InviteDeclined)
	if err != nil {
		return fmt.Errorf("failed to decline invite: %w", err)
	}
	if !closed {
		return apperr.Conflict(apperr.CodeInviteClosed, "invite is no longer pending")
	}

	s.log.Info("invite declined", "alliance_id", allianceID, "user", userID)

	return nil
}

// Remove deletes a collaborator. Owner only; the owner row itself cannot be
// removed.
func (s *CollaboratorService) Remove(ctx context.Context, userID string, allianceID uuid.UUID, targetUserID string) error {
	if _, err := s.access.RequireOwner(ctx, allianceID, userID); err != nil {
		return err
	}

	target, err := s.repo.Get(ctx, allianceID, targetUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeCollaboratorNotFound, "collaborator not found")
		}
		return fmt.Errorf("failed to get collaborator: %w", err)
	}

	if target.IsOwner() {
		return apperr.Conflict(apperr.CodeOwnerImmutable, "the owner cannot be removed")
	}

	if err := s.repo.Remove(ctx, allianceID, targetUserID); err != nil {
		return fmt.Errorf("failed to remove collaborator: %w", err)
	}

	s.log.Info("removed collaborator",
		"alliance_id", allianceID,
		"removed", targetUserID,
		"by", userID,
	)

	return nil
}
