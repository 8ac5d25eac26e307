package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// RuleRepository handles database operations for mine rules
type RuleRepository struct {
	db *db.DB
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(database *db.DB) *RuleRepository {
	return &RuleRepository{db: database}
}

// Create inserts a new mine rule
func (r *RuleRepository) Create(ctx context.Context, rule *models.MineRule) error {
	query := `
		INSERT INTO mine_rule (rule_id, alliance_id, tier, required_merit, allowed_level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rule.RuleID,
		rule.AllianceID,
		rule.Tier,
		rule.RequiredMerit,
		rule.AllowedLevel,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

// GetByID retrieves a rule by ID within an alliance
func (r *RuleRepository) GetByID(ctx context.Context, allianceID, ruleID uuid.UUID) (*models.MineRule, error) {
	query := `
		SELECT rule_id, alliance_id, tier, required_merit, allowed_level, created_at, updated_at
		FROM mine_rule
		WHERE alliance_id = $1 AND rule_id = $2
	`

	rule := &models.MineRule{}
	err := r.db.QueryRow(ctx, query, allianceID, ruleID).Scan(
		&rule.RuleID,
		&rule.AllianceID,
		&rule.Tier,
		&rule.RequiredMerit,
		&rule.AllowedLevel,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

// ListByAlliance retrieves all rules of an alliance ordered by tier.
// The eligibility calculator relies on this ordering.
func (r *RuleRepository) ListByAlliance(ctx context.Context, allianceID uuid.UUID) ([]*models.MineRule, error) {
	query := `
		SELECT rule_id, alliance_id, tier, required_merit, allowed_level, created_at, updated_at
		FROM mine_rule
		WHERE alliance_id = $1
		ORDER BY tier ASC
	`

	rows, err := r.db.Query(ctx, query, allianceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.MineRule
	for rows.Next() {
		rule := &models.MineRule{}
		err := rows.Scan(
			&rule.RuleID,
			&rule.AllianceID,
			&rule.Tier,
			&rule.RequiredMerit,
			&rule.AllowedLevel,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// Update updates a rule's threshold and level restriction
func (r *RuleRepository) Update(ctx context.Context, rule *models.MineRule) error {
	query := `
		UPDATE mine_rule
		SET tier = $3, required_merit = $4, allowed_level = $5, updated_at = NOW()
		WHERE alliance_id = $1 AND rule_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rule.AllianceID,
		rule.RuleID,
		rule.Tier,
		rule.RequiredMerit,
		rule.AllowedLevel,
	).Scan(&rule.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	return nil
}

// Delete removes a rule
func (r *RuleRepository) Delete(ctx context.Context, allianceID, ruleID uuid.UUID) error {
	query := `DELETE FROM mine_rule WHERE alliance_id = $1 AND rule_id = $2`

	result, err := r.db.Exec(ctx, query, allianceID, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("rule not found: %s", ruleID)
	}

	return nil
}

// TierExists checks if the alliance already has a rule for the tier
func (r *RuleRepository) TierExists(ctx context.Context, allianceID uuid.UUID, tier int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM mine_rule WHERE alliance_id = $1 AND tier = $2)`

	var exists bool
	err := r.db.QueryRow(ctx, query, allianceID, tier).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tier existence: %w", err)
	}

	return exists, nil
}

// MaxExercisedTier returns the highest tier any member of the alliance has
// reached across all seasons: the largest per-member ownership count. Rules
// at or below this tier gate grants that already happened and must not change.
func (r *RuleRepository) MaxExercisedTier(ctx context.Context, allianceID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(MAX(cnt), 0)
		FROM (
			SELECT COUNT(*) AS cnt
			FROM mine_ownership o
			JOIN season s ON s.season_id = o.season_id
			WHERE s.alliance_id = $1
			GROUP BY o.season_id, o.member_id
		) counts
	`

	var max int
	err := r.db.QueryRow(ctx, query, allianceID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to get max exercised tier: %w", err)
	}

	return max, nil
}
