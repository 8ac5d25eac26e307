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

// SeasonService handles game seasons
type SeasonService struct {
	repo   *repository.SeasonRepository
	access *AccessService
	events *EventPublisher
	log    *logger.Logger
}

// NewSeasonService creates a new season service
func NewSeasonService(repo *repository.SeasonRepository, access *AccessService, events *EventPublisher, log *logger.Logger) *SeasonService {
	return &SeasonService{
		repo:   repo,
		access: access,
		events: events,
		log:    log,
	}
}

// Create starts a new season. An alliance runs one active season at a time;
// starting a new active one closes the previous.
func (s *SeasonService) Create(ctx context.Context, userID string, allianceID uuid.UUID, name string, startsAt, endsAt time.Time) (*models.Season, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if name == "" {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "name is required")
	}
	if !endsAt.After(startsAt) {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "ends_at must be after starts_at")
	}

	if current, err := s.repo.GetActive(ctx, allianceID); err == nil {
		if _, err := s.repo.Close(ctx, current.SeasonID); err != nil {
			return nil, fmt.Errorf("failed to close previous season: %w", err)
		}
		s.events.Publish(ctx, allianceID, &current.SeasonID, models.EventSeasonClosed, userID, map[string]interface{}{
			"season_name": current.Name,
		})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}

	season := &models.Season{
		SeasonID:   uuid.New(),
		AllianceID: allianceID,
		Name:       name,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		Active:     true,
	}

	if err := s.repo.Create(ctx, season); err != nil {
		return nil, fmt.Errorf("failed to create season: %w", err)
	}

	s.log.Info("started season",
		"alliance_id", allianceID,
		"season_id", season.SeasonID,
		"name", name,
	)

	s.events.Publish(ctx, allianceID, &season.SeasonID, models.EventSeasonStarted, userID, map[string]interface{}{
		"season_name": name,
	})

	return season, nil
}

// List retrieves the seasons of an alliance
func (s *SeasonService) List(ctx context.Context, userID string, allianceID uuid.UUID) ([]*models.Season, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	seasons, err := s.repo.ListByAlliance(ctx, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}

	return seasons, nil
}

// GetActive retrieves the active season
func (s *SeasonService) GetActive(ctx context.Context, userID string, allianceID uuid.UUID) (*models.Season, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	season, err := s.repo.GetActive(ctx, allianceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeSeasonNotFound, "no active season")
		}
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}

	return season, nil
}

// Get retrieves a season, scoped to the alliance
func (s *SeasonService) Get(ctx context.Context, userID string, allianceID, seasonID uuid.UUID) (*models.Season, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	return s.resolve(ctx, allianceID, seasonID)
}

// resolve loads a season and checks it belongs to the alliance. Shared with
// the services that nest under a season path.
func (s *SeasonService) resolve(ctx context.Context, allianceID, seasonID uuid.UUID) (*models.Season, error) {
	season, err := s.repo.GetByID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeSeasonNotFound, "season not found")
		}
		return nil, fmt.Errorf("failed to get season: %w", err)
	}

	if season.AllianceID != allianceID {
		return nil, apperr.NotFound(apperr.CodeSeasonNotFound, "season not found")
	}

	return season, nil
}

// Close ends a season early
func (s *SeasonService) Close(ctx context.Context, userID string, allianceID, seasonID uuid.UUID) (*models.Season, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	season, err := s.resolve(ctx, allianceID, seasonID)
	if err != nil {
		return nil, err
	}

	closed, err := s.repo.Close(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to close season: %w", err)
	}
	if !closed {
		return nil, apperr.Conflict(apperr.CodeSeasonClosed, "season is already closed")
	}
	season.Active = false

	s.log.Info("closed season", "alliance_id", allianceID, "season_id", seasonID)

	s.events.Publish(ctx, allianceID, &seasonID, models.EventSeasonClosed, userID, map[string]interface{}{
		"season_name": season.Name,
	})

	return season, nil
}
