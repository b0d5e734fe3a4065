package mind

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/keshon/reverie/internal/ai"
)

// memThoughtStore is an in-memory ThoughtStore with the same lazy
// maintenance semantics as thoughtdb.
type memThoughtStore struct {
	mu       sync.Mutex
	thoughts map[string]*Thought
	ttl      time.Duration
	cap      int
	failAll  bool
}

func newMemThoughtStore() *memThoughtStore {
	return &memThoughtStore{
		thoughts: make(map[string]*Thought),
		ttl:      7 * 24 * time.Hour,
		cap:      5,
	}
}

func (m *memThoughtStore) Insert(t *Thought) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return fmt.Errorf("store down")
	}
	cp := *t
	m.thoughts[t.ID] = &cp
	return nil
}

func (m *memThoughtStore) maintain(userID string, now time.Time) {
	var pending []*Thought
	for _, t := range m.thoughts {
		if t.UserID != userID || t.State != StatePending {
			continue
		}
		if now.Sub(t.CreatedAt) > m.ttl {
			t.State = StateExpired
			t.ExpiredReason = ReasonAge
			continue
		}
		pending = append(pending, t)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Score < pending[j].Score })
	for i := 0; i < len(pending)-m.cap; i++ {
		pending[i].State = StateExpired
		pending[i].ExpiredReason = ReasonCapacityExceeded
	}
}

func (m *memThoughtStore) GetPending(userID string) ([]Thought, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, fmt.Errorf("store down")
	}
	m.maintain(userID, time.Now())
	var out []Thought
	for _, t := range m.thoughts {
		if t.UserID == userID && t.State == StatePending {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memThoughtStore) CountPending(userID string) (int, error) {
	list, err := m.GetPending(userID)
	return len(list), err
}

func (m *memThoughtStore) MarkSurfaced(id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.thoughts[id]
	if !ok || t.State != StatePending {
		return fmt.Errorf("thought %s is not pending", id)
	}
	t.State = StateSurfaced
	t.SurfacedAt = &at
	return nil
}

func (m *memThoughtStore) MarkExpired(id string, reason ExpireReason) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.thoughts[id]
	if !ok || t.State != StatePending {
		return fmt.Errorf("thought %s is not pending", id)
	}
	t.State = StateExpired
	t.ExpiredReason = reason
	return nil
}

func (m *memThoughtStore) get(id string) Thought {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.thoughts[id]
}

// memState is an in-memory StateStore.
type memState struct {
	mu       sync.Mutex
	sessions map[string]SessionSurfaceState
	last     map[string]time.Time
	mood     MoodSignals
	context  string
}

func newMemState() *memState {
	return &memState{
		sessions: make(map[string]SessionSurfaceState),
		last:     make(map[string]time.Time),
		mood:     MoodSignals{Energy: 0, Warmth: 0.5},
	}
}

func (m *memState) SurfaceState(userID string) (SessionSurfaceState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[userID]
	return st, ok, nil
}

func (m *memState) SetSurfaceState(userID string, st SessionSurfaceState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = st
	return nil
}

func (m *memState) LastInteraction(userID string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last[userID], nil
}

func (m *memState) TouchInteraction(userID string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[userID] = t
	return nil
}

func (m *memState) MoodSignals(string) (MoodSignals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mood, nil
}

func (m *memState) RecentContext(string, int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.context, nil
}

// stubReader serves fixed candidates, optionally failing or hanging.
type stubReader struct {
	prov  Provenance
	items []CandidateItem
	err   error
	delay time.Duration
}

func (r *stubReader) Provenance() Provenance { return r.prov }

func (r *stubReader) Read(ctx context.Context, _ string, _ int) ([]CandidateItem, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.items, nil
}

// stubProvider returns a canned reply or error.
type stubProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (p *stubProvider) Generate(_ []ai.Message) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}
