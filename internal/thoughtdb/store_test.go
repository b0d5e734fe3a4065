package thoughtdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keshon/reverie/internal/mind"
)

func newTestStore(t *testing.T, ttl time.Duration, cap int) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "thoughts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	store, err := New(db, ttl, cap)
	require.NoError(t, err)
	return store
}

func seedThought(id, userID string, score float64, createdAt time.Time) *mind.Thought {
	return &mind.Thought{
		ID:             id,
		UserID:         userID,
		Category:       mind.CategoryReflective,
		SeedContent:    "seed for " + id,
		SeedProvenance: mind.ProvConversationTopic,
		Score:          score,
		CreatedAt:      createdAt,
		State:          mind.StatePending,
	}
}

func TestInsertAndGetPending(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour, 5)
	now := time.Now()

	require.NoError(t, store.Insert(seedThought("b", "u1", 0.6, now)))
	require.NoError(t, store.Insert(seedThought("a", "u1", 0.8, now.Add(-time.Hour))))
	require.NoError(t, store.Insert(seedThought("other", "u2", 0.5, now)))

	pending, err := store.GetPending("u1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, "a", pending[0].ID, "oldest first")
	require.Equal(t, "b", pending[1].ID)
	require.Equal(t, mind.StatePending, pending[0].State)
	require.Equal(t, mind.ProvConversationTopic, pending[0].SeedProvenance)

	n, err := store.CountPending("u1")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestInsertRejectsIncomplete(t *testing.T) {
	store := newTestStore(t, 0, 0)
	require.Error(t, store.Insert(nil))
	require.Error(t, store.Insert(&mind.Thought{ID: "x"}))
	require.Error(t, store.Insert(&mind.Thought{UserID: "u1"}))
}

func TestTTLExpiryOnRead(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour, 5)
	now := time.Now()

	require.NoError(t, store.Insert(seedThought("aged", "u1", 0.9, now.Add(-8*24*time.Hour))))
	require.NoError(t, store.Insert(seedThought("fresh", "u1", 0.4, now)))

	pending, err := store.GetPending("u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "fresh", pending[0].ID)

	all, err := store.All("u1")
	require.NoError(t, err)
	for _, th := range all {
		if th.ID == "aged" {
			require.Equal(t, mind.StateExpired, th.State)
			require.Equal(t, mind.ReasonAge, th.ExpiredReason)
		}
	}
}

func TestCapacityExpiresLowestScored(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour, 2)
	now := time.Now()

	require.NoError(t, store.Insert(seedThought("low", "u1", 0.3, now.Add(-3*time.Minute))))
	require.NoError(t, store.Insert(seedThought("mid", "u1", 0.5, now.Add(-2*time.Minute))))
	require.NoError(t, store.Insert(seedThought("high", "u1", 0.8, now.Add(-time.Minute))))

	pending, err := store.GetPending("u1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	ids := []string{pending[0].ID, pending[1].ID}
	require.NotContains(t, ids, "low")

	all, err := store.All("u1")
	require.NoError(t, err)
	for _, th := range all {
		if th.ID == "low" {
			require.Equal(t, mind.StateExpired, th.State)
			require.Equal(t, mind.ReasonCapacityExceeded, th.ExpiredReason)
		}
	}
}

func TestMarkSurfacedIsTerminal(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour, 5)
	now := time.Now()
	require.NoError(t, store.Insert(seedThought("t1", "u1", 0.6, now)))

	require.NoError(t, store.MarkSurfaced("t1", now))

	all, err := store.All("u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, mind.StateSurfaced, all[0].State)
	require.NotNil(t, all[0].SurfacedAt)

	// Second surface and a late expiry both fail: the transition already happened.
	require.Error(t, store.MarkSurfaced("t1", now.Add(time.Minute)))
	require.Error(t, store.MarkExpired("t1", mind.ReasonAge))
	require.Error(t, store.MarkSurfaced("missing", now))
}

func TestMarkExpiredRecordsReason(t *testing.T) {
	store := newTestStore(t, 7*24*time.Hour, 5)
	now := time.Now()
	require.NoError(t, store.Insert(seedThought("t1", "u1", 0.6, now)))

	require.NoError(t, store.MarkExpired("t1", mind.ReasonNoLongerRelevant))

	all, err := store.All("u1")
	require.NoError(t, err)
	require.Equal(t, mind.StateExpired, all[0].State)
	require.Equal(t, mind.ReasonNoLongerRelevant, all[0].ExpiredReason)

	require.Error(t, store.MarkSurfaced("t1", now))
}

func TestSweepExpiresAcrossUsers(t *testing.T) {
	store := newTestStore(t, 24*time.Hour, 5)
	now := time.Now()

	require.NoError(t, store.Insert(seedThought("aged1", "u1", 0.5, now.Add(-48*time.Hour))))
	require.NoError(t, store.Insert(seedThought("aged2", "u2", 0.5, now.Add(-30*time.Hour))))
	require.NoError(t, store.Insert(seedThought("fresh", "u1", 0.5, now)))

	n, err := store.Sweep(now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	pending, err := store.GetPending("u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "fresh", pending[0].ID)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "thoughts.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var version int
	require.NoError(t, db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	require.Equal(t, SchemaVersion, version)
}
