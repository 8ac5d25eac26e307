package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// AccessService resolves what a user may do inside an alliance. All other
// services call it before touching alliance data.
type AccessService struct {
	allianceRepo *repository.AllianceRepository
	collabRepo   *repository.CollaboratorRepository
}

// NewAccessService creates a new access service
func NewAccessService(allianceRepo *repository.AllianceRepository, collabRepo *repository.CollaboratorRepository) *AccessService {
	return &AccessService{
		allianceRepo: allianceRepo,
		collabRepo:   collabRepo,
	}
}

// Require returns the user's collaborator row for the alliance. An unknown
// alliance is NotFound; a known alliance the user has no row in is
// PermissionDenied — the two must stay distinguishable.
func (s *AccessService) Require(ctx context.Context, allianceID uuid.UUID, userID string) (*models.Collaborator, error) {
	collab, err := s.collabRepo.Get(ctx, allianceID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			exists, existsErr := s.allianceRepo.Exists(ctx, allianceID)
			if existsErr != nil {
				return nil, fmt.Errorf("failed to check alliance: %w", existsErr)
			}
			if !exists {
				return nil, apperr.NotFound(apperr.CodeAllianceNotFound, "alliance not found")
			}
			return nil, apperr.Permission(apperr.CodePermissionDenied, "not a collaborator of this alliance")
		}
		return nil, fmt.Errorf("failed to resolve access: %w", err)
	}

	return collab, nil
}

// RequireOwner is Require plus the owner role. Destructive operations
// (delete alliance, remove collaborators, subscription changes) go through
// this.
func (s *AccessService) RequireOwner(ctx context.Context, allianceID uuid.UUID, userID string) (*models.Collaborator, error) {
	collab, err := s.Require(ctx, allianceID, userID)
	if err != nil {
		return nil, err
	}

	if !collab.IsOwner() {
		return nil, apperr.Permission(apperr.CodePermissionDenied, "owner role required")
	}

	return collab, nil
}
