package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// MemberRepository handles database operations for game members
type MemberRepository struct {
	db *db.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(database *db.DB) *MemberRepository {
	return &MemberRepository{db: database}
}

// Create inserts a new member
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO member (member_id, alliance_id, name, group_name, chat_display_name, merit)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		member.MemberID,
		member.AllianceID,
		member.Name,
		member.GroupName,
		member.ChatDisplayName,
		member.Merit,
	).Scan(&member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// GetByID retrieves a member by ID within an alliance
func (r *MemberRepository) GetByID(ctx context.Context, allianceID, memberID uuid.UUID) (*models.Member, error) {
	query := `
		SELECT member_id, alliance_id, name, group_name, chat_display_name, merit, created_at, updated_at
		FROM member
		WHERE alliance_id = $1 AND member_id = $2
	`

	member := &models.Member{}
	err := r.db.QueryRow(ctx, query, allianceID, memberID).Scan(
		&member.MemberID,
		&member.AllianceID,
		&member.Name,
		&member.GroupName,
		&member.ChatDisplayName,
		&member.Merit,
		&member.CreatedAt,
		&member.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// ListByAlliance retrieves all members of an alliance
func (r *MemberRepository) ListByAlliance(ctx context.Context, allianceID uuid.UUID) ([]*models.Member, error) {
	query := `
		SELECT member_id, alliance_id, name, group_name, chat_display_name, merit, created_at, updated_at
		FROM member
		WHERE alliance_id = $1
		ORDER BY merit DESC, name ASC
	`

	rows, err := r.db.Query(ctx, query, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		err := rows.Scan(
			&member.MemberID,
			&member.AllianceID,
			&member.Name,
			&member.GroupName,
			&member.ChatDisplayName,
			&member.Merit,
			&member.CreatedAt,
			&member.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}

	return members, nil
}

// Update updates a member's fields
func (r *MemberRepository) Update(ctx context.Context, member *models.Member) error {
	query := `
		UPDATE member
		SET name = $3, group_name = $4, chat_display_name = $5, merit = $6, updated_at = NOW()
		WHERE alliance_id = $1 AND member_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		member.AllianceID,
		member.MemberID,
		member.Name,
		member.GroupName,
		member.ChatDisplayName,
		member.Merit,
	).Scan(&member.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	return nil
}

// Delete removes a member
func (r *MemberRepository) Delete(ctx context.Context, allianceID, memberID uuid.UUID) error {
	query := `DELETE FROM member WHERE alliance_id = $1 AND member_id = $2`

	result, err := r.db.Exec(ctx, query, allianceID, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("member not found: %s", memberID)
	}

	return nil
}

// Exists checks if a member belongs to an alliance
func (r *MemberRepository) Exists(ctx context.Context, allianceID, memberID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM member WHERE alliance_id = $1 AND member_id = $2)`

	var exists bool
	err := r.db.QueryRow(ctx, query, allianceID, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check member existence: %w", err)
	}

	return exists, nil
}
