package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/fotkaminsk-creator/LumiVault/internal/state"
)

// Default schedules. Advice refresh rides the store's own throttle, so a
// tight cadence here just means "refresh as soon as the store allows".
const (
	AdviceSpec    = "0 */2 * * * *" // every two minutes
	WindDownSpec  = "0 0 22 * * *"  // 22:00 local
	refreshBudget = 15 * time.Second
)

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron  *cron.Cron
	Store *state.Store
	Ctx   context.Context
	log   zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, store *state.Store, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:  cron.New(cron.WithSeconds()),
		Store: store,
		Ctx:   ctx,
		log:   log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the periodic advice refresh and the nightly wind-down.
func (s *Scheduler) RegisterAll(adviceSpec, windDownSpec string) error {
	if _, err := s.Cron.AddFunc(adviceSpec, s.adviceTask); err != nil {
		return fmt.Errorf("register advice task: %w", err)
	}
	if _, err := s.Cron.AddFunc(windDownSpec, s.windDownTask); err != nil {
		return fmt.Errorf("register wind-down task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) adviceTask() {
	ctx, cancel := context.WithTimeout(s.Ctx, refreshBudget)
	defer cancel()
	s.Store.RefreshAdvice(ctx, false)
}

// windDownTask puts the mascot to sleep for the night. Any user action
// afterwards moves the mood again as usual.
func (s *Scheduler) windDownTask() {
	s.log.Info().Msg("nightly wind-down")
	s.Store.SetMood(state.MoodSleepy, 0)
}
