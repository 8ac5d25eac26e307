package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// AllianceRepository handles database operations for alliances
type AllianceRepository struct {
	db *db.DB
}

// NewAllianceRepository creates a new alliance repository
func NewAllianceRepository(database *db.DB) *AllianceRepository {
	return &AllianceRepository{db: database}
}

// Create inserts a new alliance
func (r *AllianceRepository) Create(ctx context.Context, alliance *models.Alliance) error {
	query := `
		INSERT INTO alliance (alliance_id, name, slug, game_server, owner_user_id, settings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		alliance.AllianceID,
		alliance.Name,
		alliance.Slug,
		alliance.GameServer,
		alliance.OwnerUserID,
		alliance.Settings,
	).Scan(&alliance.CreatedAt, &alliance.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create alliance: %w", err)
	}

	return nil
}

// GetByID retrieves an alliance by ID
func (r *AllianceRepository) GetByID(ctx context.Context, allianceID uuid.UUID) (*models.Alliance, error) {
	query := `
		SELECT alliance_id, name, slug, game_server, owner_user_id, settings, created_at, updated_at
		FROM alliance
		WHERE alliance_id = $1
	`

	alliance := &models.Alliance{}
	err := r.db.QueryRow(ctx, query, allianceID).Scan(
		&alliance.AllianceID,
		&alliance.Name,
		&alliance.Slug,
		&alliance.GameServer,
		&alliance.OwnerUserID,
		&alliance.Settings,
		&alliance.CreatedAt,
		&alliance.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get alliance: %w", err)
	}

	return alliance, nil
}

// ListByUser retrieves all alliances the user collaborates on
func (r *AllianceRepository) ListByUser(ctx context.Context, userID string) ([]*models.Alliance, error) {
	query := `
		SELECT a.alliance_id, a.name, a.slug, a.game_server, a.owner_user_id, a.settings, a.created_at, a.updated_at
		FROM alliance a
		JOIN collaborator c ON c.alliance_id = a.alliance_id
		WHERE c.user_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alliances: %w", err)
	}
	defer rows.Close()

	var alliances []*models.Alliance
	for rows.Next() {
		alliance := &models.Alliance{}
		err := rows.Scan(
			&alliance.AllianceID,
			&alliance.Name,
			&alliance.Slug,
			&alliance.GameServer,
			&alliance.OwnerUserID,
			&alliance.Settings,
			&alliance.CreatedAt,
			&alliance.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alliance: %w", err)
		}
		alliances = append(alliances, alliance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alliances: %w", err)
	}

	return alliances, nil
}

// UpdateSettings replaces the settings document
func (r *AllianceRepository) UpdateSettings(ctx context.Context, allianceID uuid.UUID, settings map[string]interface{}) error {
	query := `
		UPDATE alliance
		SET settings = $2, updated_at = NOW()
		WHERE alliance_id = $1
	`

	result, err := r.db.Exec(ctx, query, allianceID, settings)
	if err != nil {
		return fmt.Errorf("failed to update alliance settings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("alliance not found: %s", allianceID)
	}

	return nil
}

// Delete removes an alliance and everything hanging off it (FK cascade)
func (r *AllianceRepository) Delete(ctx context.Context, allianceID uuid.UUID) error {
	query := `DELETE FROM alliance WHERE alliance_id = $1`

	result, err := r.db.Exec(ctx, query, allianceID)
	if err != nil {
		return fmt.Errorf("failed to delete alliance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("alliance not found: %s", allianceID)
	}

	return nil
}

// SlugExists checks if a slug is already taken
func (r *AllianceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM alliance WHERE slug = $1)`

	var exists bool
	err := r.db.QueryRow(ctx, query, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}

	return exists, nil
}

// Exists checks if an alliance exists
func (r *AllianceRepository) Exists(ctx context.Context, allianceID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM alliance WHERE alliance_id = $1)`

	var exists bool
	err := r.db.QueryRow(ctx, query, allianceID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check alliance existence: %w", err)
	}

	return exists, nil
}
