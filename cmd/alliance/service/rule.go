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

// RuleInput carries the writable fields of a mine rule
type RuleInput struct {
	Tier          int                 `json:"tier"`
	RequiredMerit int64               `json:"required_merit"`
	AllowedLevel  models.AllowedLevel `json:"allowed_level"`
}

// RuleService handles the mine rule store. Rule reads feed the eligibility
// calculator, so every mutation invalidates the alliance's rules key before
// returning.
type RuleService struct {
	repo   *repository.RuleRepository
	access *AccessService
	cache  *CollectionCache
	events *EventPublisher
	log    *logger.Logger
}

// NewRuleService creates a new rule service
func NewRuleService(repo *repository.RuleRepository, access *AccessService, cache *CollectionCache, events *EventPublisher, log *logger.Logger) *RuleService {
	return &RuleService{
		repo:   repo,
		access: access,
		cache:  cache,
		events: events,
		log:    log,
	}
}

func (s *RuleService) validate(in RuleInput) error {
	if in.Tier < 1 {
		return apperr.Validation(apperr.CodeInvalidTier, "tier must be at least 1")
	}
	if in.RequiredMerit < 0 {
		return apperr.Validation(apperr.CodeInvalidRequest, "required_merit must not be negative")
	}
	if !in.AllowedLevel.Valid() {
		return apperr.Validation(apperr.CodeInvalidLevel, "allowed_level must be level_9_only, level_10_only or either")
	}
	return nil
}

// Create adds a rule. One rule per tier per alliance.
func (s *RuleService) Create(ctx context.Context, userID string, allianceID uuid.UUID, in RuleInput) (*models.MineRule, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	taken, err := s.repo.TierExists(ctx, allianceID, in.Tier)
	if err != nil {
		return nil, fmt.Errorf("failed to check tier: %w", err)
	}
	if taken {
		return nil, apperr.Conflict(apperr.CodeDuplicateTier, fmt.Sprintf("tier %d already has a rule", in.Tier))
	}

	rule := &models.MineRule{
		RuleID:        uuid.New(),
		AllianceID:    allianceID,
		Tier:          in.Tier,
		RequiredMerit: in.RequiredMerit,
		AllowedLevel:  in.AllowedLevel,
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	if err := s.cache.drop(ctx, rulesKey(allianceID)); err != nil {
		return nil, err
	}

	s.log.Info("created rule",
		"alliance_id", allianceID,
		"rule_id", rule.RuleID,
		"tier", rule.Tier,
		"required_merit", rule.RequiredMerit,
	)

	s.events.Publish(ctx, allianceID, nil, models.EventRuleCreated, userID, map[string]interface{}{
		"tier":           rule.Tier,
		"required_merit": rule.RequiredMerit,
		"allowed_level":  string(rule.AllowedLevel),
	})

	return rule, nil
}

// Get retrieves a rule
func (s *RuleService) Get(ctx context.Context, userID string, allianceID, ruleID uuid.UUID) (*models.MineRule, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	rule, err := s.repo.GetByID(ctx, allianceID, ruleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeRuleNotFound, "rule not found")
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

// List retrieves the rules of an alliance through the cache, ordered by tier
func (s *RuleService) List(ctx context.Context, userID string, allianceID uuid.UUID) ([]*models.MineRule, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	return s.listCached(ctx, allianceID)
}

// listCached is the read-through path, shared with the eligibility service
func (s *RuleService) listCached(ctx context.Context, allianceID uuid.UUID) ([]*models.MineRule, error) {
	key := rulesKey(allianceID)

	var rules []*models.MineRule
	if s.cache.get(ctx, key, &rules) {
		return rules, nil
	}

	rules, err := s.repo.ListByAlliance(ctx, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	s.cache.put(ctx, key, rules)

	return rules, nil
}

// guardUnreferenced rejects mutations of rules whose tier some member has
// already reached. Changing those would rewrite the terms of grants that
// already happened.
func (s *RuleService) guardUnreferenced(ctx context.Context, allianceID uuid.UUID, tier int) error {
	maxTier, err := s.repo.MaxExercisedTier(ctx, allianceID)
	if err != nil {
		return fmt.Errorf("failed to check rule references: %w", err)
	}

	if tier <= maxTier {
		return apperr.Conflict(apperr.CodeRuleReferenced, fmt.Sprintf("tier %d is referenced by existing grants", tier))
	}

	return nil
}

// Update rewrites a rule that no grant references yet
func (s *RuleService) Update(ctx context.Context, userID string, allianceID, ruleID uuid.UUID, in RuleInput) (*models.MineRule, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	rule, err := s.repo.GetByID(ctx, allianceID, ruleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeRuleNotFound, "rule not found")
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	if err := s.guardUnreferenced(ctx, allianceID, rule.Tier); err != nil {
		return nil, err
	}

	if in.Tier != rule.Tier {
		taken, err := s.repo.TierExists(ctx, allianceID, in.Tier)
		if err != nil {
			return nil, fmt.Errorf("failed to check tier: %w", err)
		}
		if taken {
			return nil, apperr.Conflict(apperr.CodeDuplicateTier, fmt.Sprintf("tier %d already has a rule", in.Tier))
		}
	}

	rule.Tier = in.Tier
	rule.RequiredMerit = in.RequiredMerit
	rule.AllowedLevel = in.AllowedLevel

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}

	if err := s.cache.drop(ctx, rulesKey(allianceID)); err != nil {
		return nil, err
	}

	s.log.Info("updated rule",
		"alliance_id", allianceID,
		"rule_id", ruleID,
		"tier", rule.Tier,
		"required_merit", rule.RequiredMerit,
	)

	s.events.Publish(ctx, allianceID, nil, models.EventRuleUpdated, userID, map[string]interface{}{
		"tier":           rule.Tier,
		"required_merit": rule.RequiredMerit,
		"allowed_level":  string(rule.AllowedLevel),
	})

	return rule, nil
}

// Delete removes a rule that no grant references yet
func (s *RuleService) Delete(ctx context.Context, userID string, allianceID, ruleID uuid.UUID) error {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return err
	}

	rule, err := s.repo.GetByID(ctx, allianceID, ruleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeRuleNotFound, "rule not found")
		}
		return fmt.Errorf("failed to get rule: %w", err)
	}

	if err := s.guardUnreferenced(ctx, allianceID, rule.Tier); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, allianceID, ruleID); err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	if err := s.cache.drop(ctx, rulesKey(allianceID)); err != nil {
		return err
	}

	s.log.Info("deleted rule", "alliance_id", allianceID, "rule_id", ruleID, "tier", rule.Tier)

	s.events.Publish(ctx, allianceID, nil, models.EventRuleDeleted, userID, map[string]interface{}{
		"tier": rule.Tier,
	})

	return nil
}
