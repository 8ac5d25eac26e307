package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// GrantInput carries the fields of a new mine grant
type GrantInput struct {
	MemberID uuid.UUID `json:"member_id"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Level    int       `json:"level"`
}

// OwnershipService handles the mine ownership ledger. A grant records a
// decision an officer already made; eligibility is advisory and never
// enforced here. Ownership reads feed the calculator, so mutations
// invalidate the season's key before returning.
type OwnershipService struct {
	repo       *repository.OwnershipRepository
	memberRepo *repository.MemberRepository
	seasons    *SeasonService
	access     *AccessService
	cache      *CollectionCache
	events     *EventPublisher
	log        *logger.Logger
}

// NewOwnershipService creates a new ownership service
func NewOwnershipService(
	repo *repository.OwnershipRepository,
	memberRepo *repository.MemberRepository,
	seasons *SeasonService,
	access *AccessService,
	cache *CollectionCache,
	events *EventPublisher,
	log *logger.Logger,
) *OwnershipService {
	return &OwnershipService{
		repo:       repo,
		memberRepo: memberRepo,
		seasons:    seasons,
		access:     access,
		cache:      cache,
		events:     events,
		log:        log,
	}
}

// Grant records a new mine ownership in an open season
func (s *OwnershipService) Grant(ctx context.Context, userID string, allianceID, seasonID uuid.UUID, in GrantInput) (*models.MineOwnership, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if !models.ValidMineLevel(in.Level) {
		return nil, apperr.Validation(apperr.CodeInvalidLevel, "level must be 9 or 10")
	}

	season, err := s.seasons.resolve(ctx, allianceID, seasonID)
	if err != nil {
		return nil, err
	}
	if !season.IsOpen(time.Now()) {
		return nil, apperr.Conflict(apperr.CodeSeasonClosed, "season does not accept grants")
	}

	member, err := s.memberRepo.GetByID(ctx, allianceID, in.MemberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	taken, err := s.repo.CoordinateTaken(ctx, seasonID, in.X, in.Y)
	if err != nil {
		return nil, fmt.Errorf("failed to check coordinate: %w", err)
	}
	if taken {
		return nil, apperr.Conflict(apperr.CodeCoordinateTaken, fmt.Sprintf("mine at (%d, %d) is already owned", in.X, in.Y))
	}

	own := &models.MineOwnership{
		OwnershipID:     uuid.New(),
		SeasonID:        seasonID,
		MemberID:        member.MemberID,
		X:               in.X,
		Y:               in.Y,
		Level:           in.Level,
		AppliedAt:       time.Now().UTC(),
		MemberName:      member.Name,
		MemberGroup:     member.GroupName,
		ChatDisplayName: member.ChatDisplayName,
	}

	if err := s.repo.Create(ctx, own); err != nil {
		return nil, fmt.Errorf("failed to create ownership: %w", err)
	}

	if err := s.cache.drop(ctx, ownershipsKey(seasonID)); err != nil {
		return nil, err
	}

	s.log.Info("granted mine",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"member_id", member.MemberID,
		"x", in.X,
		"y", in.Y,
		"level", in.Level,
	)

	s.events.Publish(ctx, allianceID, &seasonID, models.EventOwnershipGranted, userID, map[string]interface{}{
		"member_id":   member.MemberID.String(),
		"member_name": member.Name,
		"x":           in.X,
		"y":           in.Y,
		"level":       in.Level,
	})

	return own, nil
}

// List retrieves the season's ownerships through the cache
func (s *OwnershipService) List(ctx context.Context, userID string, allianceID, seasonID uuid.UUID) ([]*models.MineOwnership, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return nil, err
	}

	return s.listCached(ctx, seasonID)
}

// listCached is the read-through path, shared with the eligibility service
func (s *OwnershipService) listCached(ctx context.Context, seasonID uuid.UUID) ([]*models.MineOwnership, error) {
	key := ownershipsKey(seasonID)

	var owns []*models.MineOwnership
	if s.cache.get(ctx, key, &owns) {
		return owns, nil
	}

	owns, err := s.repo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownerships: %w", err)
	}

	s.cache.put(ctx, key, owns)

	return owns, nil
}

// Revoke deletes an ownership row. The mine becomes free again.
func (s *OwnershipService) Revoke(ctx context.Context, userID string, allianceID, seasonID, ownershipID uuid.UUID) error {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return err
	}

	own, err := s.repo.GetByID(ctx, seasonID, ownershipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeOwnershipNotFound, "ownership not found")
		}
		return fmt.Errorf("failed to get ownership: %w", err)
	}

	if err := s.repo.Delete(ctx, seasonID, ownershipID); err != nil {
		return fmt.Errorf("failed to delete ownership: %w", err)
	}

	if err := s.cache.drop(ctx, ownershipsKey(seasonID)); err != nil {
		return err
	}

	s.log.Info("revoked mine",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"ownership_id", ownershipID,
	)

	s.events.Publish(ctx, allianceID, &seasonID, models.EventOwnershipRevoked, userID, map[string]interface{}{
		"member_id":   own.MemberID.String(),
		"member_name": own.MemberName,
		"x":           own.X,
		"y":           own.Y,
	})

	return nil
}

// Transfer reassigns a mine to another member of the alliance. The row keeps
// its identity and coordinate; only the holder and display snapshot change.
func (s *OwnershipService) Transfer(ctx context.Context, userID string, allianceID, seasonID, ownershipID, toMemberID uuid.UUID) (*models.MineOwnership, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return nil, err
	}

	own, err := s.repo.GetByID(ctx, seasonID, ownershipID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeOwnershipNotFound, "ownership not found")
		}
		return nil, fmt.Errorf("failed to get ownership: %w", err)
	}

	to, err := s.memberRepo.GetByID(ctx, allianceID, toMemberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeMemberNotFound, "target member not found")
		}
		return nil, fmt.Errorf("failed to get target member: %w", err)
	}

	if err := s.repo.Transfer(ctx, seasonID, ownershipID, to.MemberID, to.Name, to.GroupName, to.ChatDisplayName); err != nil {
		return nil, fmt.Errorf("failed to transfer ownership: %w", err)
	}

	if err := s.cache.drop(ctx, ownershipsKey(seasonID)); err != nil {
		return nil, err
	}

	fromName := own.MemberName
	own.MemberID = to.MemberID
	own.MemberName = to.Name
	own.MemberGroup = to.GroupName
	own.ChatDisplayName = to.ChatDisplayName

	s.log.Info("transferred mine",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"ownership_id", ownershipID,
		"to_member", to.MemberID,
	)

	s.events.Publish(ctx, allianceID, &seasonID, models.EventOwnershipTransferred, userID, map[string]interface{}{
		"member_id":   to.MemberID.String(),
		"member_name": to.Name,
		"from_name":   fromName,
		"x":           own.X,
		"y":           own.Y,
	})

	return own, nil
}
