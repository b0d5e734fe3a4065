package mind

import (
	"context"
	"time"
)

// SignalReader is one external signal store. A reader that errors or times
// out simply contributes zero candidates for that pass.
type SignalReader interface {
	Provenance() Provenance
	Read(ctx context.Context, userID string, window int) ([]CandidateItem, error)
}

// InteractionSource reports when the user last interacted. Zero time means
// the user has never been seen.
type InteractionSource interface {
	LastInteraction(userID string) (time.Time, error)
}

// MoodSource reports the mood model's two output signals.
type MoodSource interface {
	MoodSignals(userID string) (MoodSignals, error)
}

// RecentContextSource renders the user's most recent activity as a flat text
// block for the relevance classifier.
type RecentContextSource interface {
	RecentContext(userID string, n int) (string, error)
}

// ThoughtStore is the durable thought log. GetPending runs lazy maintenance
// (TTL and capacity expiry) before returning.
type ThoughtStore interface {
	Insert(t *Thought) error
	GetPending(userID string) ([]Thought, error)
	CountPending(userID string) (int, error)
	MarkSurfaced(id string, at time.Time) error
	MarkExpired(id string, reason ExpireReason) error
}

// SessionStore persists the per-user session surfacing counter.
type SessionStore interface {
	SurfaceState(userID string) (SessionSurfaceState, bool, error)
	SetSurfaceState(userID string, st SessionSurfaceState) error
}

// InteractionSink records user interactions (resets the absence clock).
type InteractionSink interface {
	TouchInteraction(userID string, t time.Time) error
}
