package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keshon/reverie/internal/mind"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestDialogueRoundtrip(t *testing.T) {
	st := newTestStorage(t)

	require.NoError(t, st.AppendDialogue("u1", DialogueRecord{Role: "user", Content: "hey"}))
	require.NoError(t, st.AppendDialogue("u1", DialogueRecord{Role: "assistant", Content: "hello"}))
	require.NoError(t, st.AppendDialogue("u1", DialogueRecord{Role: "user", Content: "the auth bug is back"}))

	lines, err := st.RecentDialogue("u1", 2)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "hello", lines[0].Content)
	require.Equal(t, "the auth bug is back", lines[1].Content)

	ctx, err := st.RecentContext("u1", 10)
	require.NoError(t, err)
	require.Equal(t, "user: hey\nassistant: hello\nuser: the auth bug is back", ctx)
}

func TestDialogueHistoryTrimmed(t *testing.T) {
	st := newTestStorage(t)
	for i := 0; i < dialogueHistoryLimit+10; i++ {
		require.NoError(t, st.AppendDialogue("u1", DialogueRecord{Role: "user", Content: fmt.Sprintf("line %d", i)}))
	}

	lines, err := st.RecentDialogue("u1", 0)
	require.NoError(t, err)
	require.Len(t, lines, dialogueHistoryLimit)
	require.Equal(t, fmt.Sprintf("line %d", dialogueHistoryLimit+9), lines[len(lines)-1].Content)
}

func TestInteractionClock(t *testing.T) {
	st := newTestStorage(t)

	last, err := st.LastInteraction("u1")
	require.NoError(t, err)
	require.True(t, last.IsZero(), "unseen user has a zero clock")

	at := time.Now().Truncate(time.Second)
	require.NoError(t, st.TouchInteraction("u1", at))
	last, err = st.LastInteraction("u1")
	require.NoError(t, err)
	require.True(t, last.Equal(at))
}

func TestMoodSignalsDefaultNeutral(t *testing.T) {
	st := newTestStorage(t)

	m, err := st.MoodSignals("u1")
	require.NoError(t, err)
	require.Equal(t, mind.MoodSignals{Energy: 0, Warmth: 0.5}, m)

	require.NoError(t, st.SetPresence("u1", PresenceRecord{Note: "quiet evening", Energy: -0.4, Warmth: 0.3}))
	m, err = st.MoodSignals("u1")
	require.NoError(t, err)
	require.Equal(t, mind.MoodSignals{Energy: -0.4, Warmth: 0.3}, m)

	p, err := st.Presence("u1")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "quiet evening", p.Note)
	require.False(t, p.At.IsZero())
}

func TestSurfaceStateRoundtrip(t *testing.T) {
	st := newTestStorage(t)

	_, ok, err := st.SurfaceState("u1")
	require.NoError(t, err)
	require.False(t, ok)

	now := time.Now().Truncate(time.Second)
	want := mind.SessionSurfaceState{Count: 2, SessionStartedAt: now.Add(-time.Hour), LastSurfacedAt: now}
	require.NoError(t, st.SetSurfaceState("u1", want))

	got, ok, err := st.SurfaceState("u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want.Count, got.Count)
	require.True(t, got.LastSurfacedAt.Equal(want.LastSurfacedAt))
}

func TestUsersAreIsolated(t *testing.T) {
	st := newTestStorage(t)

	require.NoError(t, st.AppendDialogue("u1", DialogueRecord{Role: "user", Content: "mine"}))
	lines, err := st.RecentDialogue("u2", 10)
	require.NoError(t, err)
	require.Empty(t, lines)
}
