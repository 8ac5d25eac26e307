package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/eligibility"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// EligibilityService answers "may this member apply for their next mine".
// It assembles the calculator's inputs through the cached collection reads,
// so a verdict computed right after a rule or ownership mutation already
// sees that mutation. Unknown alliance, season or member is an error, never
// an ineligible verdict.
type EligibilityService struct {
	memberRepo *repository.MemberRepository
	rules      *RuleService
	ownerships *OwnershipService
	seasons    *SeasonService
	members    *MemberService
	access     *AccessService
	log        *logger.Logger
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(
	memberRepo *repository.MemberRepository,
	rules *RuleService,
	ownerships *OwnershipService,
	seasons *SeasonService,
	members *MemberService,
	access *AccessService,
	log *logger.Logger,
) *EligibilityService {
	return &EligibilityService{
		memberRepo: memberRepo,
		rules:      rules,
		ownerships: ownerships,
		seasons:    seasons,
		members:    members,
		access:     access,
		log:        log,
	}
}

// For computes the verdict for one member in a season
func (s *EligibilityService) For(ctx context.Context, userID string, allianceID, seasonID, memberID uuid.UUID) (*models.EligibilityVerdict, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(ctx, allianceID, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	rules, owns, err := s.inputs(ctx, allianceID, seasonID)
	if err != nil {
		return nil, err
	}

	verdict := eligibility.Compute(member.MemberID, member.Merit, rules, owns)

	return &verdict, nil
}

// Roster computes verdicts for every member of the alliance in one pass
func (s *EligibilityService) Roster(ctx context.Context, userID string, allianceID, seasonID uuid.UUID) ([]models.EligibilityVerdict, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return nil, err
	}

	roster, err := s.members.listCached(ctx, allianceID)
	if err != nil {
		return nil, err
	}

	rules, owns, err := s.inputs(ctx, allianceID, seasonID)
	if err != nil {
		return nil, err
	}

	members := make([]models.Member, len(roster))
	for i, m := range roster {
		members[i] = *m
	}

	return eligibility.ComputeAll(members, rules, owns), nil
}

// inputs loads both calculator inputs through the read-through caches
func (s *EligibilityService) inputs(ctx context.Context, allianceID, seasonID uuid.UUID) ([]models.MineRule, []models.MineOwnership, error) {
	cachedRules, err := s.rules.listCached(ctx, allianceID)
	if err != nil {
		return nil, nil, err
	}

	cachedOwns, err := s.ownerships.listCached(ctx, seasonID)
	if err != nil {
		return nil, nil, err
	}

	rules := make([]models.MineRule, len(cachedRules))
	for i, r := range cachedRules {
		rules[i] = *r
	}

	owns := make([]models.MineOwnership, len(cachedOwns))
	for i, o := range cachedOwns {
		owns[i] = *o
	}

	return rules, owns, nil
}
