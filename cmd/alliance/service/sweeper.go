package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/cmd/alliance/repository"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/config"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/logger"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/redis"
)

// Sweeper runs the periodic maintenance jobs: expiring overdue
// subscriptions and closing seasons whose end has passed. With multiple API
// instances a short Redis lock keeps each sweep single-flight; without
// Redis the instance is assumed to be alone and sweeps unconditionally.
type Sweeper struct {
	subRepo    *repository.SubscriptionRepository
	seasonRepo *repository.SeasonRepository
	cache      *CollectionCache
	events     *EventPublisher
	redis      *redis.Client
	cfg        config.SchedulerConfig
	scheduler  gocron.Scheduler
	log        *logger.Logger
}

// NewSweeper creates a new sweeper
func NewSweeper(
	subRepo *repository.SubscriptionRepository,
	seasonRepo *repository.SeasonRepository,
	cache *CollectionCache,
	events *EventPublisher,
	redisClient *redis.Client,
	cfg config.SchedulerConfig,
	log *logger.Logger,
) *Sweeper {
	return &Sweeper{
		subRepo:    subRepo,
		seasonRepo: seasonRepo,
		cache:      cache,
		events:     events,
		redis:      redisClient,
		cfg:        cfg,
		log:        log,
	}
}

// Start schedules the sweep jobs
func (s *Sweeper) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.scheduler = scheduler

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.SubscriptionInterval),
		gocron.NewTask(func() { s.sweepSubscriptions(context.Background()) }),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule subscription sweep: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.cfg.SeasonInterval),
		gocron.NewTask(func() { s.sweepSeasons(context.Background()) }),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule season sweep: %w", err)
	}

	scheduler.Start()

	s.log.Info("sweeper started",
		"subscription_interval", s.cfg.SubscriptionInterval,
		"season_interval", s.cfg.SeasonInterval,
	)

	return nil
}

// Stop shuts the scheduler down
func (s *Sweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

// acquire takes the single-flight lock for one sweep. The TTL only has to
// cover the sweep itself, not the interval.
func (s *Sweeper) acquire(ctx context.Context, name string) bool {
	if s.redis == nil {
		return true
	}

	ok, err := s.redis.SetNX(ctx, "sweep:"+name, "1", time.Minute)
	if err != nil {
		s.log.Warn("sweep lock failed, skipping", "sweep", name, "error", err)
		return false
	}

	return ok
}

func (s *Sweeper) release(ctx context.Context, name string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, "sweep:"+name); err != nil {
		s.log.Warn("sweep lock release failed", "sweep", name, "error", err)
	}
}

// sweepSubscriptions expires overdue subscriptions and invalidates their
// cached rows so the analytics gate sees the change immediately
func (s *Sweeper) sweepSubscriptions(ctx context.Context) {
	if !s.acquire(ctx, "subscriptions") {
		return
	}
	defer s.release(ctx, "subscriptions")

	ids, err := s.subRepo.ExpireDue(ctx, time.Now())
	if err != nil {
		s.log.Error("subscription sweep failed", "error", err)
		return
	}

	for _, allianceID := range ids {
		if err := s.cache.drop(ctx, subscriptionKey(allianceID)); err != nil {
			s.log.Error("failed to invalidate expired subscription", "alliance_id", allianceID, "error", err)
			continue
		}
		s.events.Publish(ctx, allianceID, nil, models.EventSubscriptionChanged, "system", map[string]interface{}{
			"status": string(models.SubscriptionExpired),
		})
	}

	if len(ids) > 0 {
		s.log.Info("expired subscriptions", "count", len(ids))
	}
}

// sweepSeasons closes seasons whose end has passed
func (s *Sweeper) sweepSeasons(ctx context.Context) {
	if !s.acquire(ctx, "seasons") {
		return
	}
	defer s.release(ctx, "seasons")

	seasons, err := s.seasonRepo.CloseEnded(ctx, time.Now())
	if err != nil {
		s.log.Error("season sweep failed", "error", err)
		return
	}

	for _, season := range seasons {
		s.events.Publish(ctx, season.AllianceID, &season.SeasonID, models.EventSeasonClosed, "system", map[string]interface{}{
			"season_name": season.Name,
		})
	}

	if len(seasons) > 0 {
		s.log.Info("closed ended seasons", "count", len(seasons))
	}
}
