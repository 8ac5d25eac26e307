package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// OwnershipRepository handles database operations for mine ownerships
type OwnershipRepository struct {
	db *db.DB
}

// NewOwnershipRepository creates a new ownership repository
func NewOwnershipRepository(database *db.DB) *OwnershipRepository {
	return &OwnershipRepository{db: database}
}

// Create inserts a new ownership row
func (r *OwnershipRepository) Create(ctx context.Context, own *models.MineOwnership) error {
	query := `
		INSERT INTO mine_ownership (ownership_id, season_id, member_id, x, y, level, applied_at, member_name, member_group, chat_display_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		own.OwnershipID,
		own.SeasonID,
		own.MemberID,
		own.X,
		own.Y,
		own.Level,
		own.AppliedAt,
		own.MemberName,
		own.MemberGroup,
		own.ChatDisplayName,
	)

	if err != nil {
		return fmt.Errorf("failed to create ownership: %w", err)
	}

	return nil
}

// GetByID retrieves an ownership by ID within a season
func (r *OwnershipRepository) GetByID(ctx context.Context, seasonID, ownershipID uuid.UUID) (*models.MineOwnership, error) {
	query := `
		SELECT ownership_id, season_id, member_id, x, y, level, applied_at, member_name, member_group, chat_display_name
		FROM mine_ownership
		WHERE season_id = $1 AND ownership_id = $2
	`

	own := &models.MineOwnership{}
	err := r.db.QueryRow(ctx, query, seasonID, ownershipID).Scan(
		&own.OwnershipID,
		&own.SeasonID,
		&own.MemberID,
		&own.X,
		&own.Y,
		&own.Level,
		&own.AppliedAt,
		&own.MemberName,
		&own.MemberGroup,
		&own.ChatDisplayName,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get ownership: %w", err)
	}

	return own, nil
}

// ListBySeason retrieves all ownerships of a season. The eligibility
// calculator counts rows from this list; there is no separate counter.
func (r *OwnershipRepository) ListBySeason(ctx context.Context, seasonID uuid.UUID) ([]*models.MineOwnership, error) {
	query := `
		SELECT ownership_id, season_id, member_id, x, y, level, applied_at, member_name, member_group, chat_display_name
		FROM mine_ownership
		WHERE season_id = $1
		ORDER BY applied_at ASC, ownership_id ASC
	`

	rows, err := r.db.Query(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ownerships: %w", err)
	}
	defer rows.Close()

	var owns []*models.MineOwnership
	for rows.Next() {
		own := &models.MineOwnership{}
		err := rows.Scan(
			&own.OwnershipID,
			&own.SeasonID,
			&own.MemberID,
			&own.X,
			&own.Y,
			&own.Level,
			&own.AppliedAt,
			&own.MemberName,
			&own.MemberGroup,
			&own.ChatDisplayName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ownership: %w", err)
		}
		owns = append(owns, own)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ownerships: %w", err)
	}

	return owns, nil
}

// Transfer reassigns the existing row to a new member and refreshes the
// display snapshot. Never inserts; the mine keeps its identity.
func (r *OwnershipRepository) Transfer(ctx context.Context, seasonID, ownershipID, toMemberID uuid.UUID, memberName, memberGroup, chatDisplayName string) error {
	query := `
		UPDATE mine_ownership
		SET member_id = $3, member_name = $4, member_group = $5, chat_display_name = $6
		WHERE season_id = $1 AND ownership_id = $2
	`

	result, err := r.db.Exec(ctx, query,
		seasonID,
		ownershipID,
		toMemberID,
		memberName,
		memberGroup,
		chatDisplayName,
	)

	if err != nil {
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ownership not found: %s", ownershipID)
	}

	return nil
}

// Delete removes an ownership row (revocation)
func (r *OwnershipRepository) Delete(ctx context.Context, seasonID, ownershipID uuid.UUID) error {
	query := `DELETE FROM mine_ownership WHERE season_id = $1 AND ownership_id = $2`

	result, err := r.db.Exec(ctx, query, seasonID, ownershipID)
	if err != nil {
		return fmt.Errorf("failed to delete ownership: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("ownership not found: %s", ownershipID)
	}

	return nil
}

// CountByMember counts the member's mines in a season
func (r *OwnershipRepository) CountByMember(ctx context.Context, seasonID, memberID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM mine_ownership WHERE season_id = $1 AND member_id = $2`

	var count int
	err := r.db.QueryRow(ctx, query, seasonID, memberID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ownerships: %w", err)
	}

	return count, nil
}

// CoordinateTaken checks if a coordinate is already granted in the season
func (r *OwnershipRepository) CoordinateTaken(ctx context.Context, seasonID uuid.UUID, x, y int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM mine_ownership WHERE season_id = $1 AND x = $2 AND y = $3)`

	var exists bool
	err := r.db.QueryRow(ctx, query, seasonID, x, y).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check coordinate: %w", err)
	}

	return exists, nil
}
