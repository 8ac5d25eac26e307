package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// SeasonRepository handles database operations for seasons
type SeasonRepository struct {
	db *db.DB
}

// NewSeasonRepository creates a new season repository
func NewSeasonRepository(database *db.DB) *SeasonRepository {
	return &SeasonRepository{db: database}
}

// Create inserts a new season
func (r *SeasonRepository) Create(ctx context.Context, season *models.Season) error {
	query := `
		INSERT INTO season (season_id, alliance_id, name, starts_at, ends_at, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		season.SeasonID,
		season.AllianceID,
		season.Name,
		season.StartsAt,
		season.EndsAt,
		season.Active,
	).Scan(&season.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create season: %w", err)
	}

	return nil
}

// GetByID retrieves a season by ID
func (r *SeasonRepository) GetByID(ctx context.Context, seasonID uuid.UUID) (*models.Season, error) {
	query := `
		SELECT season_id, alliance_id, name, starts_at, ends_at, active, created_at
		FROM season
		WHERE season_id = $1
	`

	season := &models.Season{}
	err := r.db.QueryRow(ctx, query, seasonID).Scan(
		&season.SeasonID,
		&season.AllianceID,
		&season.Name,
		&season.StartsAt,
		&season.EndsAt,
		&season.Active,
		&season.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}

	return season, nil
}

// ListByAlliance retrieves all seasons of an alliance, newest first
func (r *SeasonRepository) ListByAlliance(ctx context.Context, allianceID uuid.UUID) ([]*models.Season, error) {
	query := `
		SELECT season_id, alliance_id, name, starts_at, ends_at, active, created_at
		FROM season
		WHERE alliance_id = $1
		ORDER BY starts_at DESC
	`

	rows, err := r.db.Query(ctx, query, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		season := &models.Season{}
		err := rows.Scan(
			&season.SeasonID,
			&season.AllianceID,
			&season.Name,
			&season.StartsAt,
			&season.EndsAt,
			&season.Active,
			&season.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seasons: %w", err)
	}

	return seasons, nil
}

// GetActive retrieves the currently active season of an alliance
func (r *SeasonRepository) GetActive(ctx context.Context, allianceID uuid.UUID) (*models.Season, error) {
	query := `
		SELECT season_id, alliance_id, name, starts_at, ends_at, active, created_at
		FROM season
		WHERE alliance_id = $1 AND active = TRUE
		ORDER BY starts_at DESC
		LIMIT 1
	`

	season := &models.Season{}
	err := r.db.QueryRow(ctx, query, allianceID).Scan(
		&season.SeasonID,
		&season.AllianceID,
		&season.Name,
		&season.StartsAt,
		&season.EndsAt,
		&season.Active,
		&season.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get active season: %w", err)
	}

	return season, nil
}

// Close marks a season inactive. Returns false when it was already closed.
func (r *SeasonRepository) Close(ctx context.Context, seasonID uuid.UUID) (bool, error) {
	query := `
		UPDATE season
		SET active = FALSE
		WHERE season_id = $1 AND active = TRUE
	`

	result, err := r.db.Exec(ctx, query, seasonID)
	if err != nil {
		return false, fmt.Errorf("failed to close season: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// CloseEnded marks every active season whose end has passed as inactive and
// returns the closed rows. Used by the scheduler sweep.
func (r *SeasonRepository) CloseEnded(ctx context.Context, now time.Time) ([]*models.Season, error) {
	query := `
		UPDATE season
		SET active = FALSE
		WHERE active = TRUE AND ends_at < $1
		RETURNING season_id, alliance_id, name, starts_at, ends_at, active, created_at
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to close ended seasons: %w", err)
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		season := &models.Season{}
		err := rows.Scan(
			&season.SeasonID,
			&season.AllianceID,
			&season.Name,
			&season.StartsAt,
			&season.EndsAt,
			&season.Active,
			&season.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closed season: %w", err)
		}
		seasons = append(seasons, season)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating closed seasons: %w", err)
	}

	return seasons, nil
}
