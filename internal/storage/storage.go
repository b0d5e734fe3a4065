package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/datastore"

	"github.com/keshon/reverie/internal/mind"
)

const dialogueHistoryLimit = 50

// Storage keeps mutable runtime state per user: the dialogue log the engine
// reads topics and relevance context from, the last-interaction timestamp the
// scheduler checks absence against, the latest presence snapshot, and the
// session surfacing counter. Thought records live in thoughtdb, not here.
type Storage struct {
	ds *datastore.DataStore
}

// DialogueRecord is one line of recent conversation.
type DialogueRecord struct {
	Role    string    `json:"role"` // "user" | "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// PresenceRecord is the latest demeanor snapshot for a user, written by the
// mood collaborator (or the adapter on its behalf).
type PresenceRecord struct {
	Note   string    `json:"note"`
	Energy float64   `json:"energy"` // -1..1
	Warmth float64   `json:"warmth"` // 0..1
	At     time.Time `json:"at"`
}

// UserRecord is the full per-user state blob stored under the user's key.
type UserRecord struct {
	Dialogue          []DialogueRecord          `json:"dialogue"`
	LastInteractionAt time.Time                 `json:"last_interaction_at"`
	Presence          *PresenceRecord           `json:"presence,omitempty"`
	Session           *mind.SessionSurfaceState `json:"session,omitempty"`
}

func New(path string) (*Storage, error) {
	ds, err := datastore.New(path)
	if err != nil {
		return nil, fmt.Errorf("storage: open datastore: %w", err)
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) getOrCreateUserRecord(userID string) (*UserRecord, error) {
	data, exists := s.ds.Get(userID)
	if !exists {
		rec := &UserRecord{Dialogue: []DialogueRecord{}}
		s.ds.Add(userID, rec)
		return rec, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("storage: marshal user record: %w", err)
	}

	var rec UserRecord
	if err := json.Unmarshal(jsonData, &rec); err != nil {
		return nil, fmt.Errorf("storage: unmarshal user record: %w", err)
	}

	if len(rec.Dialogue) > dialogueHistoryLimit {
		rec.Dialogue = rec.Dialogue[len(rec.Dialogue)-dialogueHistoryLimit:]
	}

	return &rec, nil
}

// AppendDialogue records one conversation line for a user.
func (s *Storage) AppendDialogue(userID string, d DialogueRecord) error {
	rec, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return err
	}
	if d.At.IsZero() {
		d.At = time.Now()
	}
	rec.Dialogue = append(rec.Dialogue, d)
	if len(rec.Dialogue) > dialogueHistoryLimit {
		rec.Dialogue = rec.Dialogue[len(rec.Dialogue)-dialogueHistoryLimit:]
	}
	s.ds.Add(userID, rec)
	return nil
}

// RecentDialogue returns up to n most recent lines, oldest first.
func (s *Storage) RecentDialogue(userID string, n int) ([]DialogueRecord, error) {
	rec, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return nil, err
	}
	if n <= 0 || n > len(rec.Dialogue) {
		n = len(rec.Dialogue)
	}
	out := make([]DialogueRecord, n)
	copy(out, rec.Dialogue[len(rec.Dialogue)-n:])
	return out, nil
}

// RecentContext renders the last n dialogue lines as a flat block for the
// relevance classifier.
func (s *Storage) RecentContext(userID string, n int) (string, error) {
	lines, err := s.RecentDialogue(userID, n)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Role)
		b.WriteString(": ")
		b.WriteString(l.Content)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// TouchInteraction records that the user interacted at t (resets absence).
func (s *Storage) TouchInteraction(userID string, t time.Time) error {
	rec, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return err
	}
	rec.LastInteractionAt = t
	s.ds.Add(userID, rec)
	return nil
}

// LastInteraction returns the last interaction time; zero if never seen.
func (s *Storage) LastInteraction(userID string) (time.Time, error) {
	rec, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return time.Time{}, err
	}
	return rec.LastInteractionAt, nil
}

// SetPresence stores the latest presence snapshot.
func (s *Storage) SetPresence(userID string, p PresenceRecord) error {
	rec, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return err
	}
	if p.At.IsZero() {
		p.At = time.Now()
	}
	rec.Presence = &p
	s.ds.Add(userID, rec)
	return nil
}

// Presence returns the latest presence snapshot, or nil if none recorded.
func (s *Storage) Presence(userID string) (*PresenceRecord, error) {
	rec, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return nil, err
	}
	return rec.Presence, nil
}

// MoodSignals exposes the presence snapshot as the two mood outputs the
// classifier consumes. Neutral defaults when nothing is recorded.
func (s *Storage) MoodSignals(userID string) (mind.MoodSignals, error) {
	p, err := s.Presence(userID)
	if err != nil {
		return mind.MoodSignals{}, err
	}
	if p == nil {
		return mind.MoodSignals{Energy: 0, Warmth: 0.5}, nil
	}
	return mind.MoodSignals{Energy: p.Energy, Warmth: p.Warmth}, nil
}

// SurfaceState returns the stored session surfacing counter.
func (s *Storage) SurfaceState(userID string) (mind.SessionSurfaceState, bool, error) {
	rec, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return mind.SessionSurfaceState{}, false, err
	}
	if rec.Session == nil {
		return mind.SessionSurfaceState{}, false, nil
	}
	return *rec.Session, true, nil
}

// SetSurfaceState overwrites the session surfacing counter.
func (s *Storage) SetSurfaceState(userID string, st mind.SessionSurfaceState) error {
	rec, err := s.getOrCreateUserRecord(userID)
	if err != nil {
		return err
	}
	rec.Session = &st
	s.ds.Add(userID, rec)
	return nil
}
