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

// LedgerInput carries the writable fields of a ledger entry. Kind is the
// contribution kind or the donated resource depending on the ledger.
type LedgerInput struct {
	MemberID uuid.UUID `json:"member_id"`
	Amount   int64     `json:"amount"`
	Kind     string    `json:"kind"`
	Note     *string   `json:"note"`
}

// LedgerFilter narrows ledger list reads
type LedgerFilter struct {
	MemberID *uuid.UUID
	Kind     string
	Limit    int
}

// LedgerService handles the contribution and donation ledgers. These are
// analytics data; they never feed the merit score or the calculator.
type LedgerService struct {
	repo       *repository.LedgerRepository
	memberRepo *repository.MemberRepository
	seasons    *SeasonService
	access     *AccessService
	events     *EventPublisher
	log        *logger.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	repo *repository.LedgerRepository,
	memberRepo *repository.MemberRepository,
	seasons *SeasonService,
	access *AccessService,
	events *EventPublisher,
	log *logger.Logger,
) *LedgerService {
	return &LedgerService{
		repo:       repo,
		memberRepo: memberRepo,
		seasons:    seasons,
		access:     access,
		events:     events,
		log:        log,
	}
}

// checkEntry validates the shared parts of a ledger write and resolves the
// member for the event payload
func (s *LedgerService) checkEntry(ctx context.Context, userID string, allianceID, seasonID uuid.UUID, in LedgerInput) (*models.Member, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if in.Amount <= 0 {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "amount must be positive")
	}
	if in.Kind == "" {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "kind is required")
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(ctx, allianceID, in.MemberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(apperr.CodeMemberNotFound, "member not found")
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// RecordContribution appends a contribution entry
func (s *LedgerService) RecordContribution(ctx context.Context, userID string, allianceID, seasonID uuid.UUID, in LedgerInput) (*models.Contribution, error) {
	member, err := s.checkEntry(ctx, userID, allianceID, seasonID, in)
	if err != nil {
		return nil, err
	}

	con := &models.Contribution{
		ContributionID: uuid.New(),
		SeasonID:       seasonID,
		MemberID:       member.MemberID,
		Amount:         in.Amount,
		Kind:           in.Kind,
		Note:           in.Note,
		RecordedAt:     time.Now().UTC(),
	}

	if err := s.repo.CreateContribution(ctx, con); err != nil {
		return nil, fmt.Errorf("failed to record contribution: %w", err)
	}

	s.log.Info("recorded contribution",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"member_id", member.MemberID,
		"kind", in.Kind,
		"amount", in.Amount,
	)

	s.events.Publish(ctx, allianceID, &seasonID, models.EventContributionRecorded, userID, map[string]interface{}{
		"member_id":   member.MemberID.String(),
		"member_name": member.Name,
		"kind":        in.Kind,
		"amount":      in.Amount,
	})

	return con, nil
}

// ListContributions retrieves contribution entries
func (s *LedgerService) ListContributions(ctx context.Context, userID string, allianceID, seasonID uuid.UUID, filter LedgerFilter) ([]*models.Contribution, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return nil, err
	}

	cons, err := s.repo.ListContributions(ctx, seasonID, filter.MemberID, filter.Kind, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}

	return cons, nil
}

// DeleteContribution removes a mistaken entry
func (s *LedgerService) DeleteContribution(ctx context.Context, userID string, allianceID, seasonID, contributionID uuid.UUID) error {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return err
	}

	if _, err := s.repo.GetContribution(ctx, seasonID, contributionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeEntryNotFound, "contribution not found")
		}
		return fmt.Errorf("failed to get contribution: %w", err)
	}

	if err := s.repo.DeleteContribution(ctx, seasonID, contributionID); err != nil {
		return fmt.Errorf("failed to delete contribution: %w", err)
	}

	s.log.Info("deleted contribution",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"contribution_id", contributionID,
	)

	return nil
}

// RecordDonation appends a donation entry
func (s *LedgerService) RecordDonation(ctx context.Context, userID string, allianceID, seasonID uuid.UUID, in LedgerInput) (*models.Donation, error) {
	member, err := s.checkEntry(ctx, userID, allianceID, seasonID, in)
	if err != nil {
		return nil, err
	}

	don := &models.Donation{
		DonationID: uuid.New(),
		SeasonID:   seasonID,
		MemberID:   member.MemberID,
		Amount:     in.Amount,
		Resource:   in.Kind,
		Note:       in.Note,
		RecordedAt: time.Now().UTC(),
	}

	if err := s.repo.CreateDonation(ctx, don); err != nil {
		return nil, fmt.Errorf("failed to record donation: %w", err)
	}

	s.log.Info("recorded donation",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"member_id", member.MemberID,
		"resource", in.Kind,
		"amount", in.Amount,
	)

	s.events.Publish(ctx, allianceID, &seasonID, models.EventDonationRecorded, userID, map[string]interface{}{
		"member_id":   member.MemberID.String(),
		"member_name": member.Name,
		"resource":    in.Kind,
		"amount":      in.Amount,
	})

	return don, nil
}

// ListDonations retrieves donation entries
func (s *LedgerService) ListDonations(ctx context.Context, userID string, allianceID, seasonID uuid.UUID, filter LedgerFilter) ([]*models.Donation, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return nil, err
	}

	dons, err := s.repo.ListDonations(ctx, seasonID, filter.MemberID, filter.Kind, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}

	return dons, nil
}

// DeleteDonation removes a mistaken entry
func (s *LedgerService) DeleteDonation(ctx context.Context, userID string, allianceID, seasonID, donationID uuid.UUID) error {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return err
	}

	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return err
	}

	if _, err := s.repo.GetDonation(ctx, seasonID, donationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(apperr.CodeEntryNotFound, "donation not found")
		}
		return fmt.Errorf("failed to get donation: %w", err)
	}

	if err := s.repo.DeleteDonation(ctx, seasonID, donationID); err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}

	s.log.Info("deleted donation",
		"alliance_id", allianceID,
		"season_id", seasonID,
		"donation_id", donationID,
	)

	return nil
}
