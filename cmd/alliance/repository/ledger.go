package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/db"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// LedgerRepository handles database operations for the contribution and
// donation ledgers
type LedgerRepository struct {
	db *db.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(database *db.DB) *LedgerRepository {
	return &LedgerRepository{db: database}
}

// CreateContribution inserts a contribution entry
func (r *LedgerRepository) CreateContribution(ctx context.Context, con *models.Contribution) error {
	query := `
		INSERT INTO contribution (contribution_id, season_id, member_id, amount, kind, note, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		con.ContributionID,
		con.SeasonID,
		con.MemberID,
		con.Amount,
		con.Kind,
		con.Note,
		con.RecordedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create contribution: %w", err)
	}

	return nil
}

// GetContribution retrieves a contribution by ID within a season
func (r *LedgerRepository) GetContribution(ctx context.Context, seasonID, contributionID uuid.UUID) (*models.Contribution, error) {
	query := `
		SELECT contribution_id, season_id, member_id, amount, kind, note, recorded_at
		FROM contribution
		WHERE season_id = $1 AND contribution_id = $2
	`

	con := &models.Contribution{}
	err := r.db.QueryRow(ctx, query, seasonID, contributionID).Scan(
		&con.ContributionID,
		&con.SeasonID,
		&con.MemberID,
		&con.Amount,
		&con.Kind,
		&con.Note,
		&con.RecordedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get contribution: %w", err)
	}

	return con, nil
}

// ListContributions retrieves contributions of a season, newest first.
// memberID and kind are optional filters.
func (r *LedgerRepository) ListContributions(ctx context.Context, seasonID uuid.UUID, memberID *uuid.UUID, kind string, limit int) ([]*models.Contribution, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT contribution_id, season_id, member_id, amount, kind, note, recorded_at
		FROM contribution
		WHERE season_id = $1
		  AND ($2::uuid IS NULL OR member_id = $2)
		  AND ($3::text = '' OR kind = $3)
		ORDER BY recorded_at DESC, contribution_id DESC
		LIMIT $4
	`

	rows, err := r.db.Query(ctx, query, seasonID, memberID, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var cons []*models.Contribution
	for rows.Next() {
		con := &models.Contribution{}
		err := rows.Scan(
			&con.ContributionID,
			&con.SeasonID,
			&con.MemberID,
			&con.Amount,
			&con.Kind,
			&con.Note,
			&con.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		cons = append(cons, con)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributions: %w", err)
	}

	return cons, nil
}

// DeleteContribution removes a contribution entry
func (r *LedgerRepository) DeleteContribution(ctx context.Context, seasonID, contributionID uuid.UUID) error {
	query := `DELETE FROM contribution WHERE season_id = $1 AND contribution_id = $2`

	result, err := r.db.Exec(ctx, query, seasonID, contributionID)
	if err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("contribution not found: %s", contributionID)
	}

	return nil
}

// CreateDonation inserts a donation entry
func (r *LedgerRepository) CreateDonation(ctx context.Context, don *models.Donation) error {
	query := `
		INSERT INTO donation (donation_id, season_id, member_id, amount, resource, note, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		don.DonationID,
		don.SeasonID,
		don.MemberID,
		don.Amount,
		don.Resource,
		don.Note,
		don.RecordedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create donation: %w", err)
	}

	return nil
}

// GetDonation retrieves a donation by ID within a season
func (r *LedgerRepository) GetDonation(ctx context.Context, seasonID, donationID uuid.UUID) (*models.Donation, error) {
	query := `
		SELECT donation_id, season_id, member_id, amount, resource, note, recorded_at
		FROM donation
		WHERE season_id = $1 AND donation_id = $2
	`

	don := &models.Donation{}
	err := r.db.QueryRow(ctx, query, seasonID, donationID).Scan(
		&don.DonationID,
		&don.SeasonID,
		&don.MemberID,
		&don.Amount,
		&don.Resource,
		&don.Note,
		&don.RecordedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get donation: %w", err)
	}

	return don, nil
}

// ListDonations retrieves donations of a season, newest first.
// memberID and resource are optional filters.
func (r *LedgerRepository) ListDonations(ctx context.Context, seasonID uuid.UUID, memberID *uuid.UUID, resource string, limit int) ([]*models.Donation, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT donation_id, season_id, member_id, amount, resource, note, recorded_at
		FROM donation
		WHERE season_id = $1
		  AND ($2::uuid IS NULL OR member_id = $2)
		  AND ($3::text = '' OR resource = $3)
		ORDER BY recorded_at DESC, donation_id DESC
		LIMIT $4
	`

	rows, err := r.db.Query(ctx, query, seasonID, memberID, resource, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	defer rows.Close()

	var dons []*models.Donation
	for rows.Next() {
		don := &models.Donation{}
		err := rows.Scan(
			&don.DonationID,
			&don.SeasonID,
			&don.MemberID,
			&don.Amount,
			&don.Resource,
			&don.Note,
			&don.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		dons = append(dons, don)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donations: %w", err)
	}

	return dons, nil
}

// DeleteDonation removes a donation entry
func (r *LedgerRepository) DeleteDonation(ctx context.Context, seasonID, donationID uuid.UUID) error {
	query := `DELETE FROM donation WHERE season_id = $1 AND donation_id = $2`

	result, err := r.db.Exec(ctx, query, seasonID, donationID)
	if err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("donation not found: %s", donationID)
	}

	return nil
}

// ContributionAmountsByGroup returns per-member contribution totals keyed by
// the member's group. Feeds the box-plot analytics.
func (r *LedgerRepository) ContributionAmountsByGroup(ctx context.Context, seasonID uuid.UUID, kind string) (map[string][]float64, error) {
	query := `
		SELECT m.group_name, SUM(c.amount)::float8
		FROM contribution c
		JOIN member m ON m.member_id = c.member_id
		WHERE c.season_id = $1
		  AND ($2::text = '' OR c.kind = $2)
		GROUP BY m.group_name, c.member_id
	`

	rows, err := r.db.Query(ctx, query, seasonID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get contribution amounts: %w", err)
	}
	defer rows.Close()

	amounts := make(map[string][]float64)
	for rows.Next() {
		var group string
		var total float64
		if err := rows.Scan(&group, &total); err != nil {
			return nil, fmt.Errorf("failed to scan contribution amount: %w", err)
		}
		amounts[group] = append(amounts[group], total)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contribution amounts: %w", err)
	}

	return amounts, nil
}
