package mind

import (
	"sort"
	"time"
)

// GateConfig holds the surfacing rate-limit knobs.
type GateConfig struct {
	SessionCap       int           // max thoughts per inferred session
	UrgencyThreshold float64       // score at or above this bypasses the cap
	SessionCooldown  time.Duration // gap that starts a new session
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		SessionCap:       3,
		UrgencyThreshold: 0.85,
		SessionCooldown:  2 * time.Hour,
	}
}

// Gate decides whether, and which single, pending thought may be injected
// into the next outgoing message.
type Gate struct {
	cfg      GateConfig
	sessions *SessionTracker
}

func NewGate(cfg GateConfig, sessions *SessionTracker) *Gate {
	return &Gate{cfg: cfg, sessions: sessions}
}

// Pick returns the highest-scoring pending thought the session allows, or
// nil. Ties break toward the most recent CreatedAt. When the session cap is
// reached, only a thought at or above the urgency threshold passes.
func (g *Gate) Pick(userID string, pending []Thought, now time.Time) *Thought {
	if len(pending) == 0 {
		return nil
	}

	ordered := make([]Thought, len(pending))
	copy(ordered, pending)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	top := ordered[0]
	session := g.sessions.Current(userID, now)
	if session.Count < g.cfg.SessionCap {
		return &top
	}
	if top.Score >= g.cfg.UrgencyThreshold {
		return &top
	}
	return nil
}
