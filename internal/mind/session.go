package mind

import (
	"log"
	"time"
)

// SessionTracker derives the current session surfacing counter from stored
// state plus the cooldown rule: a gap since the last surfaced thought longer
// than the cooldown means a new session, and the counter resets. Sessions
// are inferred from absence, never from an explicit login event.
type SessionTracker struct {
	store    SessionStore
	cooldown time.Duration
}

func NewSessionTracker(store SessionStore, cooldown time.Duration) *SessionTracker {
	return &SessionTracker{store: store, cooldown: cooldown}
}

// Current returns the effective session state at now, lazily creating or
// resetting it. The reset is persisted so a restart cannot refund budget.
func (t *SessionTracker) Current(userID string, now time.Time) SessionSurfaceState {
	st, ok, err := t.store.SurfaceState(userID)
	if err != nil {
		log.Printf("[ERR] session state read for %s: %v", userID, err)
		ok = false
	}
	if !ok {
		st = SessionSurfaceState{SessionStartedAt: now}
		t.put(userID, st)
		return st
	}
	if !st.LastSurfacedAt.IsZero() && now.Sub(st.LastSurfacedAt) > t.cooldown {
		st = SessionSurfaceState{SessionStartedAt: now}
		t.put(userID, st)
	}
	return st
}

// NoteSurfaced bumps the counter after a thought actually went out.
func (t *SessionTracker) NoteSurfaced(userID string, now time.Time) {
	st := t.Current(userID, now)
	st.Count++
	st.LastSurfacedAt = now
	t.put(userID, st)
}

func (t *SessionTracker) put(userID string, st SessionSurfaceState) {
	if err := t.store.SetSurfaceState(userID, st); err != nil {
		log.Printf("[ERR] session state write for %s: %v", userID, err)
	}
}
