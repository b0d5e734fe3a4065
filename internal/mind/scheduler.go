package mind

import (
	"context"
	"log"
	"sync"
	"time"
)

// SchedulerConfig holds the tick cadence and absence threshold.
type SchedulerConfig struct {
	TickInterval time.Duration
	MinAbsence   time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickInterval: 5 * time.Minute,
		MinAbsence:   10 * time.Minute,
	}
}

// Scheduler is the only active component: a fixed-period timer that runs the
// generation pipeline for users who have been absent long enough. A per-user
// lock guarantees at most one pipeline in flight per user; an overlapping
// tick skips that user instead of queueing. Pipeline errors are logged and
// swallowed so a bad tick never stops future ones.
type Scheduler struct {
	cfg          SchedulerConfig
	interactions InteractionSource
	pipeline     func(ctx context.Context, userID string) error

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewScheduler(cfg SchedulerConfig, interactions InteractionSource, pipeline func(ctx context.Context, userID string) error) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		interactions: interactions,
		pipeline:     pipeline,
		users:        make(map[string]*sync.Mutex),
	}
}

// NotifyUser registers a user with the scheduler. Called on every recorded
// interaction; registering twice is harmless.
func (s *Scheduler) NotifyUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		s.users[userID] = &sync.Mutex{}
	}
}

// Run ticks until ctx is done. In-flight pipelines finish on their own; no
// retries run after stop.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, time.Now())
		}
	}
}

// Tick runs one scheduling pass. Exported for the CLI and tests; Run calls
// it on the timer.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	s.tick(ctx, now)
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	type entry struct {
		id string
		mu *sync.Mutex
	}
	users := make([]entry, 0, len(s.users))
	for id, mu := range s.users {
		users = append(users, entry{id, mu})
	}
	s.mu.Unlock()

	for _, u := range users {
		last, err := s.interactions.LastInteraction(u.id)
		if err != nil {
			log.Printf("[ERR] last interaction for %s: %v", u.id, err)
			continue
		}
		if last.IsZero() || now.Sub(last) < s.cfg.MinAbsence {
			continue
		}
		if !u.mu.TryLock() {
			// previous pipeline still running; this tick skips the user
			continue
		}
		go s.runUser(ctx, u.id, u.mu)
	}
}

func (s *Scheduler) runUser(ctx context.Context, userID string, mu *sync.Mutex) {
	defer mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] pipeline panic for %s: %v", userID, r)
		}
	}()
	if err := s.pipeline(ctx, userID); err != nil {
		log.Printf("[MIND] pipeline failed for %s: %v", userID, err)
	}
}
