package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// SubscriptionRepository handles database operations for subscriptions
type SubscriptionRepository struct {
	db *db.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(database *db.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: database}
}

// Get retrieves the subscription row of an alliance
func (r *SubscriptionRepository) Get(ctx context.Context, allianceID uuid.UUID) (*models.Subscription, error) {
	query := `
		SELECT alliance_id, plan, status, expires_at, updated_at
		FROM subscription
		WHERE alliance_id = $1
	`

	sub := &models.Subscription{}
	err := r.db.QueryRow(ctx, query, allianceID).Scan(
		&sub.AllianceID,
		&sub.Plan,
		&sub.Status,
		&sub.ExpiresAt,
		&sub.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

// Upsert writes the subscription row, one per alliance
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscription (alliance_id, plan, status, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (alliance_id)
		DO UPDATE SET plan = $2, status = $3, expires_at = $4, updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		sub.AllianceID,
		sub.Plan,
		sub.Status,
		sub.ExpiresAt,
	).Scan(&sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// ExpireDue marks active subscriptions past their expiry as expired and
// returns the affected alliance IDs. Used by the scheduler sweep.
func (r *SubscriptionRepository) ExpireDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE subscription
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at < $1
		RETURNING alliance_id
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire subscriptions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expired subscription: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expired subscriptions: %w", err)
	}

	return ids, nil
}
