package mind

import (
	"context"
	"log"
	"math/rand"
	"time"
)

// StateStore is the mutable runtime state the engine shares with its
// consuming caller: absence tracking, mood signals, recent context, and the
// session surfacing counter.
type StateStore interface {
	SessionStore
	InteractionSource
	InteractionSink
	MoodSource
	RecentContextSource
}

// RunnerConfig bundles the engine knobs usually sourced from env config.
type RunnerConfig struct {
	Scheduler          SchedulerConfig
	Gate               GateConfig
	PendingCap         int
	RecentContextLines int
}

func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Scheduler:          DefaultSchedulerConfig(),
		Gate:               DefaultGateConfig(),
		PendingCap:         5,
		RecentContextLines: 6,
	}
}

// Runner wires the whole engine together and owns its outward contract:
// RecordInteraction, GetSurfacableThought, OnThoughtSurfaced. The thought
// store and session state are mutated here and nowhere else.
type Runner struct {
	cfg       RunnerConfig
	store     ThoughtStore
	state     StateStore
	agg       *Aggregator
	synth     *Synthesizer
	sessions  *SessionTracker
	gate      *Gate
	filter    *RelevanceFilter
	author    *Author
	Scheduler *Scheduler
}

// NewRunner builds a runner from its collaborators. provider-backed parts
// (filter, author) are passed in so tests can fake them.
func NewRunner(cfg RunnerConfig, store ThoughtStore, state StateStore, agg *Aggregator, filter *RelevanceFilter, author *Author, rng *rand.Rand) *Runner {
	r := &Runner{
		cfg:      cfg,
		store:    store,
		state:    state,
		agg:      agg,
		synth:    NewSynthesizer(rng),
		sessions: NewSessionTracker(state, cfg.Gate.SessionCooldown),
		filter:   filter,
		author:   author,
	}
	r.gate = NewGate(cfg.Gate, r.sessions)
	r.Scheduler = NewScheduler(cfg.Scheduler, state, r.runPipeline)
	return r
}

// Start launches the background scheduler. Stop via ctx cancellation.
func (r *Runner) Start(ctx context.Context) {
	go r.Scheduler.Run(ctx)
}

// RecordInteraction resets the user's absence clock and registers the user
// with the scheduler. Call on every user message.
func (r *Runner) RecordInteraction(userID string, at time.Time) {
	if err := r.state.TouchInteraction(userID, at); err != nil {
		log.Printf("[ERR] touch interaction for %s: %v", userID, err)
	}
	r.Scheduler.NotifyUser(userID)
}

// GetSurfacableThought is the sole entry point a chat-turn builder calls
// before composing its next outgoing message. Runs the relevance filter,
// then the surfacing gate; returns at most one thought, or nil. Errors here
// must never disrupt the chat path: callers log and carry on without a
// thought.
func (r *Runner) GetSurfacableThought(userID string) (*Thought, error) {
	now := time.Now()
	pending, err := r.store.GetPending(userID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	recent, err := r.state.RecentContext(userID, r.cfg.RecentContextLines)
	if err != nil {
		log.Printf("[ERR] recent context for %s: %v", userID, err)
		recent = ""
	}
	kept := pending
	if r.filter != nil {
		kept = r.filter.Filter(userID, pending, recent, now)
	}
	return r.gate.Pick(userID, kept, now), nil
}

// OnThoughtSurfaced must be called after the thought was actually included
// in an outgoing message. Transitions it to surfaced and burns session
// budget. Never call it for a thought that was only considered.
func (r *Runner) OnThoughtSurfaced(userID, thoughtID string) {
	now := time.Now()
	if err := r.store.MarkSurfaced(thoughtID, now); err != nil {
		log.Printf("[ERR] mark surfaced %s: %v", thoughtID, err)
		return
	}
	r.sessions.NoteSurfaced(userID, now)
}

// AuthorThoughtText phrases a thought via the generation collaborator,
// falling back to the raw seed on any failure.
func (r *Runner) AuthorThoughtText(userID string, t *Thought) string {
	if r.author == nil {
		if t == nil {
			return ""
		}
		return t.SeedContent
	}
	return r.author.AuthorThoughtText(userID, t)
}

// runPipeline is one generation pass for one user: aggregate → score →
// classify mood → synthesize → persist. Called only under the scheduler's
// per-user lock.
func (r *Runner) runPipeline(ctx context.Context, userID string) error {
	now := time.Now()

	// Idempotency guard: a full pending set means a second pass in the same
	// absence window generates nothing.
	count, err := r.store.CountPending(userID)
	if err != nil {
		return err
	}
	if count >= r.cfg.PendingCap {
		return nil
	}

	items := r.agg.Collect(ctx, userID)
	if len(items) == 0 {
		return nil
	}
	scored := ScoreAll(items, now)

	signals, err := r.state.MoodSignals(userID)
	if err != nil {
		log.Printf("[MIND] mood signals for %s unavailable, using neutral: %v", userID, err)
		signals = MoodSignals{Energy: 0, Warmth: 0.5}
	}
	last, err := r.state.LastInteraction(userID)
	if err != nil {
		return err
	}
	absence := now.Sub(last)

	weights := ClassifyMood(signals, absence, hasUpcomingEvent(items, now))

	pending, err := r.store.GetPending(userID)
	if err != nil {
		return err
	}
	t := r.synth.Synthesize(userID, scored, weights, pending, now)
	if t == nil {
		return nil
	}
	if err := r.store.Insert(t); err != nil {
		return err
	}
	log.Printf("[MIND] thought created user=%s category=%s score=%.2f seed=%s",
		userID, t.Category, t.Score, previewForLog(t.SeedContent, 80))
	return nil
}

// hasUpcomingEvent reports a calendar candidate within the next 48 hours.
func hasUpcomingEvent(items []CandidateItem, now time.Time) bool {
	for _, it := range items {
		if it.Provenance != ProvCalendarEvent {
			continue
		}
		at, err := time.Parse(time.RFC3339, it.Meta[MetaEventAt])
		if err != nil {
			continue
		}
		until := at.Sub(now)
		if until >= 0 && until <= 48*time.Hour {
			return true
		}
	}
	return false
}
