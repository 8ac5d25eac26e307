package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
	commonrepo "github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/repository"
)

// AllianceService handles alliance lifecycle and settings
type AllianceService struct {
	repo       *repository.AllianceRepository
	collabRepo *repository.CollaboratorRepository
	seasonRepo *repository.SeasonRepository
	subRepo    *repository.SubscriptionRepository
	eventRepo  *commonrepo.EventRepository
	access     *AccessService
	cache      *CollectionCache
	events     *EventPublisher
	log        *logger.Logger
}

// NewAllianceService creates a new alliance service
func NewAllianceService(
	repo *repository.AllianceRepository,
	collabRepo *repository.CollaboratorRepository,
	seasonRepo *repository.SeasonRepository,
	subRepo *repository.SubscriptionRepository,
	eventRepo *commonrepo.EventRepository,
	access *AccessService,
	cache *CollectionCache,
	events *EventPublisher,
	log *logger.Logger,
) *AllianceService {
	return &AllianceService{
		repo:       repo,
		collabRepo: collabRepo,
		seasonRepo: seasonRepo,
		subRepo:    subRepo,
		eventRepo:  eventRepo,
		access:     access,
		cache:      cache,
		events:     events,
		log:        log,
	}
}

// Create creates an alliance with the caller as owner. A fresh alliance
// starts on the free plan with empty settings.
func (s *AllianceService) Create(ctx context.Context, userID, name, gameServer string) (*models.Alliance, error) {
	if name == "" {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "name is required")
	}

	allianceSlug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	alliance := &models.Alliance{
		AllianceID:  uuid.New(),
		Name:        name,
		Slug:        allianceSlug,
		GameServer:  gameServer,
		OwnerUserID: userID,
		Settings:    map[string]interface{}{},
	}

	if err := s.repo.Create(ctx, alliance); err != nil {
		return nil, fmt.Errorf("failed to create alliance: %w", err)
	}

	owner := &models.Collaborator{
		AllianceID: alliance.AllianceID,
		UserID:     userID,
		Role:       models.RoleOwner,
	}
	if err := s.collabRepo.Add(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to add owner collaborator: %w", err)
	}

	sub := &models.Subscription{
		AllianceID: alliance.AllianceID,
		Plan:       models.PlanFree,
		Status:     models.SubscriptionNone,
	}
	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription row: %w", err)
	}

	s.log.Info("created alliance",
		"alliance_id", alliance.AllianceID,
		"slug", alliance.Slug,
		"owner", userID,
	)

	s.events.Publish(ctx, alliance.AllianceID, nil, models.EventAllianceCreated, userID, map[string]interface{}{
		"name": alliance.Name,
		"slug": alliance.Slug,
	})

	return alliance, nil
}

// uniqueSlug derives a URL-safe slug from the name, suffixing on collision
func (s *AllianceService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", apperr.Validation(apperr.CodeInvalidRequest, "name yields an empty slug")
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		if i > 50 {
			return "", apperr.Conflict(apperr.CodeDuplicateSlug, "could not derive a unique slug")
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Get retrieves an alliance the user collaborates on
func (s *AllianceService) Get(ctx context.Context, userID string, allianceID uuid.UUID) (*models.Alliance, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	alliance, err := s.repo.GetByID(ctx, allianceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeAllianceNotFound, "alliance not found")
		}
		return nil, fmt.Errorf("failed to get alliance: %w", err)
	}

	return alliance, nil
}

// List retrieves the user's alliances
func (s *AllianceService) List(ctx context.Context, userID string) ([]*models.Alliance, error) {
	alliances, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alliances: %w", err)
	}

	return alliances, nil
}

// PatchSettings applies an RFC 7386 merge patch to the settings document
func (s *AllianceService) PatchSettings(ctx context.Context, userID string, allianceID uuid.UUID, patch []byte) (*models.Alliance, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	alliance, err := s.repo.GetByID(ctx, allianceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeAllianceNotFound, "alliance not found")
		}
		return nil, fmt.Errorf("failed to get alliance: %w", err)
	}

	original, err := json.Marshal(alliance.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}

	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "invalid merge patch").Wrap(err)
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(merged, &settings); err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "merge patch must produce an object").Wrap(err)
	}

	if err := s.repo.UpdateSettings(ctx, allianceID, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	alliance.Settings = settings

	s.log.Info("updated alliance settings", "alliance_id", allianceID, "user", userID)

	s.events.Publish(ctx, allianceID, nil, models.EventSettingsUpdated, userID, nil)

	return alliance, nil
}

// Delete removes an alliance and all its data. Owner only.
func (s *AllianceService) Delete(ctx context.Context, userID string, allianceID uuid.UUID) error {
	if _, err := s.access.RequireOwner(ctx, allianceID, userID); err != nil {
		return err
	}

	// Collect season keys before the cascade wipes the rows
	seasons, err := s.seasonRepo.ListByAlliance(ctx, allianceID)
	if err != nil {
		return fmt.Errorf("failed to list seasons: %w", err)
	}

	if err := s.repo.Delete(ctx, allianceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeAllianceNotFound, "alliance not found")
		}
		return fmt.Errorf("failed to delete alliance: %w", err)
	}

	// Timeline rows have no FK so late worker writes never fail; clean them
	// up here instead
	if err := s.eventRepo.DeleteByAlliance(ctx, allianceID); err != nil {
		s.log.Warn("failed to delete timeline rows", "alliance_id", allianceID, "error", err)
	}

	keys := []string{rulesKey(allianceID), membersKey(allianceID), subscriptionKey(allianceID)}
	for _, season := range seasons {
		keys = append(keys, ownershipsKey(season.SeasonID))
	}
	if err := s.cache.drop(ctx, keys...); err != nil {
		return err
	}

	s.log.Info("deleted alliance", "alliance_id", allianceID, "user", userID)

	return nil
}
