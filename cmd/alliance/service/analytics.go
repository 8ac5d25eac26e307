package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/filter"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
	commonrepo "github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/stats"
)

// GroupSummary is one group's box-plot row
type GroupSummary struct {
	Group   string        `json:"group"`
	Summary stats.Summary `json:"summary"`
}

// TimelineRequest narrows a timeline read. Filter is an optional CEL
// expression evaluated per event; Before pages backwards through time.
type TimelineRequest struct {
	SeasonID *uuid.UUID
	Kind     string
	Filter   string
	Before   *time.Time
	Limit    int
}

// AnalyticsService serves the subscription-gated analytics reads: the
// contribution box plot and the event timeline.
type AnalyticsService struct {
	ledgerRepo *repository.LedgerRepository
	eventRepo  *commonrepo.EventRepository
	seasons    *SeasonService
	subs       *SubscriptionService
	access     *AccessService
	filter     *filter.Evaluator
	log        *logger.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	ledgerRepo *repository.LedgerRepository,
	eventRepo *commonrepo.EventRepository,
	seasons *SeasonService,
	subs *SubscriptionService,
	access *AccessService,
	filterEval *filter.Evaluator,
	log *logger.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		ledgerRepo: ledgerRepo,
		eventRepo:  eventRepo,
		seasons:    seasons,
		subs:       subs,
		access:     access,
		filter:     filterEval,
		log:        log,
	}
}

// ContributionBoxplot summarizes per-member contribution totals by group.
// Groups whose every member total is an outlier of itself cannot happen;
// single-member groups produce degenerate summaries, which are still useful
// to render.
func (s *AnalyticsService) ContributionBoxplot(ctx context.Context, userID string, allianceID, seasonID uuid.UUID, kind string) ([]GroupSummary, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireAnalytics(ctx, allianceID); err != nil {
		return nil, err
	}
	if _, err := s.seasons.resolve(ctx, allianceID, seasonID); err != nil {
		return nil, err
	}

	amounts, err := s.ledgerRepo.ContributionAmountsByGroup(ctx, seasonID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load contribution amounts: %w", err)
	}

	summaries := make([]GroupSummary, 0, len(amounts))
	for group, values := range amounts {
		summary, ok := stats.Describe(values)
		if !ok {
			continue
		}
		summaries = append(summaries, GroupSummary{Group: group, Summary: summary})
	}

	// Stable output order for clients
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Group < summaries[j].Group })

	return summaries, nil
}

// Timeline reads the persisted event timeline, optionally narrowed by a CEL
// filter expression. The SQL narrows by season/kind/time; the CEL filter
// runs over what the SQL returned, so a filtered page may come back shorter
// than the requested limit.
func (s *AnalyticsService) Timeline(ctx context.Context, userID string, allianceID uuid.UUID, req TimelineRequest) ([]*models.AllianceEvent, error) {
	if _, err := s.access.Require(ctx, allianceID, userID); err != nil {
		return nil, err
	}
	if err := s.subs.RequireAnalytics(ctx, allianceID); err != nil {
		return nil, err
	}

	// Reject a bad expression before touching the database
	if req.Filter != "" {
		if err := s.filter.Check(req.Filter); err != nil {
			return nil, err
		}
	}

	events, err := s.eventRepo.ListByAlliance(ctx, allianceID, commonrepo.TimelineQuery{
		SeasonID: req.SeasonID,
		Kind:     req.Kind,
		Before:   req.Before,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}

	if req.Filter == "" {
		return events, nil
	}

	filtered := make([]*models.AllianceEvent, 0, len(events))
	for _, event := range events {
		match, err := s.filter.Match(req.Filter, event)
		if err != nil {
			return nil, err
		}
		if match {
			filtered = append(filtered, event)
		}
	}

	return filtered, nil
}
