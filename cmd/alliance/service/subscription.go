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

// SubscriptionService handles the per-alliance subscription. The cached row
// doubles as the plan source for rate limiting, so changes invalidate it
// synchronously.
type SubscriptionService struct {
	repo   *repository.SubscriptionRepository
	access *AccessService
	cache  *CollectionCache
	events *EventPublisher
	log    *logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo *repository.SubscriptionRepository, access *AccessService, cache *CollectionCache, events *EventPublisher, log *logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		access: access,
		cache:  cache,
		events: events,
		log:    log,
	}
}

// Get retrieves the alliance's subscription. An alliance without a row is on
// the free plan.
func (s *SubscriptionService) Get(ctx context.Context, userID string, allianceID uuid.UUID) (*models.Subscription, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	return s.Current(ctx, allianceID)
}

// Current is the ungated read used by middleware and the analytics gate
func (s *SubscriptionService) Current(ctx context.Context, allianceID uuid.UUID) (*models.Subscription, error) {
	key := subscriptionKey(allianceID)

	var cached models.Subscription
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	sub, err := s.repo.Get(ctx, allianceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			sub = &models.Subscription{
				AllianceID: allianceID,
				Plan:       models.PlanFree,
				Status:     models.SubscriptionNone,
			}
		} else {
			return nil, fmt.Errorf("failed to get subscription: %w", err)
		}
	}

	s.cache.put(ctx, key, sub)

	return sub, nil
}

// Set changes the subscription. Owner only.
func (s *SubscriptionService) Set(ctx context.Context, userID string, allianceID uuid.UUID, plan models.Plan, expiresAt *time.Time) (*models.Subscription, error) {
	if _, err := s.access.RequireOwner(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if !plan.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidPlan, "plan must be free, standard or premium")
	}

	status := models.SubscriptionActive
	if plan == models.PlanFree {
		status = models.SubscriptionNone
		expiresAt = nil
	} else if expiresAt != nil && expiresAt.Before(time.Now()) {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "expires_at is in the past")
	}

	sub := &models.Subscription{
		AllianceID: allianceID,
		Plan:       plan,
		Status:     status,
		ExpiresAt:  expiresAt,
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to set subscription: %w", err)
	}

	if err := s.cache.drop(ctx, subscriptionKey(allianceID)); err != nil {
		return nil, err
	}

	s.log.Info("subscription changed",
		"alliance_id", allianceID,
		"plan", plan,
		"status", status,
	)

	s.events.Publish(ctx, allianceID, nil, models.EventSubscriptionChanged, userID, map[string]interface{}{
		"plan":   string(plan),
		"status": string(status),
	})

	return sub, nil
}

// RequireAnalytics gates the analytics endpoints: active paid plan only
func (s *SubscriptionService) RequireAnalytics(ctx context.Context, allianceID uuid.UUID) error {
	sub, err := s.Current(ctx, allianceID)
	if err != nil {
		return err
	}

	if !sub.AnalyticsEnabled() {
		return apperr.Permission(apperr.CodeSubscriptionRequired, "analytics requires an active paid subscription")
	}

	return nil
}
