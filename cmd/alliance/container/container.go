package container

import (
	"fmt"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/live"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/service"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/bootstrap"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/filter"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/ratelimit"
	commonrepo "github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/timeline"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Repositories
	AllianceRepo     *repository.AllianceRepository
	CollaboratorRepo *repository.CollaboratorRepository
	MemberRepo       *repository.MemberRepository
	SeasonRepo       *repository.SeasonRepository
	RuleRepo         *repository.RuleRepository
	OwnershipRepo    *repository.OwnershipRepository
	LedgerRepo       *repository.LedgerRepository
	SubscriptionRepo *repository.SubscriptionRepository
	EventRepo        *commonrepo.EventRepository

	// Shared infrastructure
	Cache           *service.CollectionCache
	FilterEvaluator *filter.Evaluator
	RateLimiter     *ratelimit.RateLimiter
	Hub             *live.Hub
	Recorder        *timeline.Recorder
	Sweeper         *service.Sweeper

	// Services
	AccessService       *service.AccessService
	AllianceService     *service.AllianceService
	CollaboratorService *service.CollaboratorService
	MemberService       *service.MemberService
	SeasonService       *service.SeasonService
	RuleService         *service.RuleService
	OwnershipService    *service.OwnershipService
	EligibilityService  *service.EligibilityService
	LedgerService       *service.LedgerService
	SubscriptionService *service.SubscriptionService
	AnalyticsService    *service.AnalyticsService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Initialize repositories
	allianceRepo := repository.NewAllianceRepository(components.DB)
	collaboratorRepo := repository.NewCollaboratorRepository(components.DB)
	memberRepo := repository.NewMemberRepository(components.DB)
	seasonRepo := repository.NewSeasonRepository(components.DB)
	ruleRepo := repository.NewRuleRepository(components.DB)
	ownershipRepo := repository.NewOwnershipRepository(components.DB)
	ledgerRepo := repository.NewLedgerRepository(components.DB)
	subscriptionRepo := repository.NewSubscriptionRepository(components.DB)
	eventRepo := commonrepo.NewEventRepository(components.DB)

	// Shared infrastructure
	filterEval, err := filter.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create filter evaluator: %w", err)
	}

	collectionCache := service.NewCollectionCache(
		components.Cache,
		cfg.Cache.DefaultTTL,
		components.Logger,
	)

	events := service.NewEventPublisher(components.Queue, cfg.Events.Stream, components.Logger)

	// Initialize services (bottom-up: dependencies first)
	accessService := service.NewAccessService(allianceRepo, collaboratorRepo)

	allianceService := service.NewAllianceService(
		allianceRepo,
		collaboratorRepo,
		seasonRepo,
		subscriptionRepo,
		eventRepo,
		accessService,
		collectionCache,
		events,
		components.Logger,
	)
	collaboratorService := service.NewCollaboratorService(collaboratorRepo, accessService, events, components.Logger)
	memberService := service.NewMemberService(memberRepo, seasonRepo, accessService, collectionCache, events, components.Logger)
	seasonService := service.NewSeasonService(seasonRepo, accessService, events, components.Logger)
	ruleService := service.NewRuleService(ruleRepo, accessService, collectionCache, events, components.Logger)
	ownershipService := service.NewOwnershipService(
		ownershipRepo,
		memberRepo,
		seasonService,
		accessService,
		collectionCache,
		events,
		components.Logger,
	)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, accessService, collectionCache, events, components.Logger)
	eligibilityService := service.NewEligibilityService(
		memberRepo,
		ruleService,
		ownershipService,
		seasonService,
		memberService,
		accessService,
		components.Logger,
	)
	ledgerService := service.NewLedgerService(
		ledgerRepo,
		memberRepo,
		seasonService,
		accessService,
		events,
		components.Logger,
	)
	analyticsService := service.NewAnalyticsService(
		ledgerRepo,
		eventRepo,
		seasonService,
		subscriptionService,
		accessService,
		filterEval,
		components.Logger,
	)

	sweeper := service.NewSweeper(
		subscriptionRepo,
		seasonRepo,
		collectionCache,
		events,
		components.Redis,
		cfg.Scheduler,
		components.Logger,
	)

	hub := live.NewHub(filterEval, components.Logger)

	// The limiter rides on Redis; without it main skips the middleware
	var limiter *ratelimit.RateLimiter
	if components.Redis != nil {
		limiter = ratelimit.NewRateLimiter(components.Redis.GetUnderlying(), components.Logger)
	}

	// With the in-memory queue the timeline worker cannot see our events, so
	// the recorder runs inside this process
	var recorder *timeline.Recorder
	if cfg.Events.Backend == "memory" {
		recorder = timeline.NewRecorder(components.Queue, eventRepo, cfg.Events.Stream, components.Logger)
	}

	return &Container{
		Components:          components,
		AllianceRepo:        allianceRepo,
		CollaboratorRepo:    collaboratorRepo,
		MemberRepo:          memberRepo,
		SeasonRepo:          seasonRepo,
		RuleRepo:            ruleRepo,
		OwnershipRepo:       ownershipRepo,
		LedgerRepo:          ledgerRepo,
		SubscriptionRepo:    subscriptionRepo,
		EventRepo:           eventRepo,
		Cache:               collectionCache,
		FilterEvaluator:     filterEval,
		RateLimiter:         limiter,
		Hub:                 hub,
		Recorder:            recorder,
		Sweeper:             sweeper,
		AccessService:       accessService,
		AllianceService:     allianceService,
		CollaboratorService: collaboratorService,
		MemberService:       memberService,
		SeasonService:       seasonService,
		RuleService:         ruleService,
		OwnershipService:    ownershipService,
		EligibilityService:  eligibilityService,
		LedgerService:       ledgerService,
		SubscriptionService: subscriptionService,
		AnalyticsService:    analyticsService,
	}, nil
}
