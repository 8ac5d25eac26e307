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

// MemberInput carries the writable fields of a member
type MemberInput struct {
	Name            string `json:"name"`
	GroupName       string `json:"group_name"`
	ChatDisplayName string `json:"chat_display_name"`
	Merit           int64  `json:"merit"`
}

// MemberService handles the game member roster
type MemberService struct {
	repo       *repository.MemberRepository
	seasonRepo *repository.SeasonRepository
	access     *AccessService
	cache      *CollectionCache
	events     *EventPublisher
	log        *logger.Logger
}

// NewMemberService creates a new member service
func NewMemberService(repo *repository.MemberRepository, seasonRepo *repository.SeasonRepository, access *AccessService, cache *CollectionCache, events *EventPublisher, log *logger.Logger) *MemberService {
	return &MemberService{
		repo:       repo,
		seasonRepo: seasonRepo,
		access:     access,
		cache:      cache,
		events:     events,
		log:        log,
	}
}

func (s *MemberService) validate(in MemberInput) error {
	if in.Name == "" {
		return apperr.Validation(apperr.CodeInvalidRequest, "name is required")
	}
	if in.Merit < 0 {
		return apperr.Validation(apperr.CodeInvalidRequest, "merit must not be negative")
	}
	return nil
}

// Create adds a member to the roster
func (s *MemberService) Create(ctx context.Context, userID string, allianceID uuid.UUID, in MemberInput) (*models.Member, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	member := &models.Member{
		MemberID:        uuid.New(),
		AllianceID:      allianceID,
		Name:            in.Name,
		GroupName:       in.GroupName,
		ChatDisplayName: in.ChatDisplayName,
		Merit:           in.Merit,
	}

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	if err := s.cache.drop(ctx, membersKey(allianceID)); err != nil {
		return nil, err
	}

	s.log.Info("created member",
		"alliance_id", allianceID,
		"member_id", member.MemberID,
		"name", member.Name,
	)

	s.events.Publish(ctx, allianceID, nil, models.EventMemberJoined, userID, map[string]interface{}{
		"member_id":   member.MemberID.String(),
		"member_name": member.Name,
	})

	return member, nil
}

// Get retrieves a member
func (s *MemberService) Get(ctx context.Context, userID string, allianceID, memberID uuid.UUID) (*models.Member, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	member, err := s.repo.GetByID(ctx, allianceID, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// List retrieves the roster through the cache
func (s *MemberService) List(ctx context.Context, userID string, allianceID uuid.UUID) ([]*models.Member, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	return s.listCached(ctx, allianceID)
}

// listCached is the read-through path, shared with the eligibility service
func (s *MemberService) listCached(ctx context.Context, allianceID uuid.UUID) ([]*models.Member, error) {
	key := membersKey(allianceID)

	var members []*models.Member
	if s.cache.get(ctx, key, &members) {
		return members, nil
	}

	members, err := s.repo.ListByAlliance(ctx, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	s.cache.put(ctx, key, members)

	return members, nil
}

// Update replaces a member's writable fields. Merit changes flow through
// here; the next eligibility read sees them because the roster key is
// invalidated before this returns.
func (s *MemberService) Update(ctx context.Context, userID string, allianceID, memberID uuid.UUID, in MemberInput) (*models.Member, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	member, err := s.repo.GetByID(ctx, allianceID, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	member.Name = in.Name
	member.GroupName = in.GroupName
	member.ChatDisplayName = in.ChatDisplayName
	member.Merit = in.Merit

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	if err := s.cache.drop(ctx, membersKey(allianceID)); err != nil {
		return nil, err
	}

	s.log.Info("updated member",
		"alliance_id", allianceID,
		"member_id", memberID,
		"merit", member.Merit,
	)

	s.events.Publish(ctx, allianceID, nil, models.EventMemberUpdated, userID, map[string]interface{}{
		"member_id":   memberID.String(),
		"member_name": member.Name,
		"merit":       member.Merit,
	})

	return member, nil
}

// Delete removes a member from the roster. Their ownership and ledger rows
// cascade, so every season's ownership key is invalidated alongside the
// roster key.
func (s *MemberService) Delete(ctx context.Context, userID string, allianceID, memberID uuid.UUID) error {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return err
	}

	member, err := s.repo.GetByID(ctx, allianceID, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return fmt.Errorf("failed to get member: %w", err)
	}

	seasons, err := s.seasonRepo.ListByAlliance(ctx, allianceID)
	if err != nil {
		return fmt.Errorf("failed to list seasons: %w", err)
	}

	if err := s.repo.Delete(ctx, allianceID, memberID); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	keys := []string{membersKey(allianceID)}
	for _, season := range seasons {
		keys = append(keys, ownershipsKey(season.SeasonID))
	}
	if err := s.cache.drop(ctx, keys...); err != nil {
		return err
	}

	s.log.Info("deleted member",
		"alliance_id", allianceID,
		"member_id", memberID,
	)

	s.events.Publish(ctx, allianceID, nil, models.EventMemberRemoved, userID, map[string]interface{}{
		"member_id":   memberID.String(),
		"member_name": member.Name,
	})

	return nil
}
