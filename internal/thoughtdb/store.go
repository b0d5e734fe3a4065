package thoughtdb

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/keshon/reverie/internal/mind"
)

// Store is the durable append-only thought log. It is the only component
// that mutates thought state, and every transition is terminal: a row moves
// from pending to surfaced or expired exactly once.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	cap int
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("thoughtdb: open %s: %w", path, err)
	}
	return db, nil
}

// New returns a Store bound to an existing database handle. ttl is the
// pending-thought time to live; pendingCap bounds the pending set per user.
func New(db *sql.DB, ttl time.Duration, pendingCap int) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("thoughtdb: db is nil")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if pendingCap <= 0 {
		pendingCap = 5
	}
	return &Store{db: db, ttl: ttl, cap: pendingCap}, nil
}

// Insert persists a new thought. The single INSERT is atomic, so a failed
// write leaves no partial row behind.
func (s *Store) Insert(t *mind.Thought) error {
	if t == nil {
		return fmt.Errorf("insert thought: nil thought")
	}
	if t.ID == "" || t.UserID == "" {
		return fmt.Errorf("insert thought: missing id or user")
	}
	_, err := s.db.Exec(
		`INSERT INTO thoughts (id, user_id, category, seed_content, seed_provenance, score, created_at, state, expired_reason, surfaced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL)`,
		t.ID, t.UserID, string(t.Category), t.SeedContent, string(t.SeedProvenance),
		t.Score, formatTime(t.CreatedAt), string(mind.StatePending),
	)
	if err != nil {
		return fmt.Errorf("insert thought: %w", err)
	}
	return nil
}

// GetPending returns the pending set for a user, oldest first, after a lazy
// maintenance pass (TTL expiry, then capacity expiry of the lowest scored).
func (s *Store) GetPending(userID string) ([]mind.Thought, error) {
	if err := s.maintain(userID, time.Now()); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, user_id, category, seed_content, seed_provenance, score, created_at, state, expired_reason, surfaced_at
		 FROM thoughts WHERE user_id = ? AND state = ? ORDER BY created_at ASC`,
		userID, string(mind.StatePending),
	)
	if err != nil {
		return nil, fmt.Errorf("get pending: query: %w", err)
	}
	defer rows.Close()
	return scanThoughts(rows)
}

// CountPending returns the pending count after lazy maintenance.
func (s *Store) CountPending(userID string) (int, error) {
	if err := s.maintain(userID, time.Now()); err != nil {
		return 0, err
	}
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM thoughts WHERE user_id = ? AND state = ?`,
		userID, string(mind.StatePending),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

// MarkSurfaced transitions a pending thought to surfaced. Errors when the
// thought is not pending, which also blocks double-surfacing.
func (s *Store) MarkSurfaced(id string, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE thoughts SET state = ?, surfaced_at = ? WHERE id = ? AND state = ?`,
		string(mind.StateSurfaced), formatTime(at), id, string(mind.StatePending),
	)
	if err != nil {
		return fmt.Errorf("mark surfaced: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark surfaced: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark surfaced: thought %s is not pending", id)
	}
	return nil
}

// MarkExpired transitions a pending thought to expired with a reason.
func (s *Store) MarkExpired(id string, reason mind.ExpireReason) error {
	res, err := s.db.Exec(
		`UPDATE thoughts SET state = ?, expired_reason = ? WHERE id = ? AND state = ?`,
		string(mind.StateExpired), string(reason), id, string(mind.StatePending),
	)
	if err != nil {
		return fmt.Errorf("mark expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark expired: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark expired: thought %s is not pending", id)
	}
	return nil
}

// All returns every thought for a user, newest first. Inspection only.
func (s *Store) All(userID string) ([]mind.Thought, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, category, seed_content, seed_provenance, score, created_at, state, expired_reason, surfaced_at
		 FROM thoughts WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("all thoughts: query: %w", err)
	}
	defer rows.Close()
	return scanThoughts(rows)
}

// Sweep expires aged pending thoughts across all users. Run from a cron job
// so TTL expiry does not depend on someone reading their pending set.
func (s *Store) Sweep(now time.Time) (int64, error) {
	res, err := s.db.Exec(
		`UPDATE thoughts SET state = ?, expired_reason = ? WHERE state = ? AND created_at < ?`,
		string(mind.StateExpired), string(mind.ReasonAge), string(mind.StatePending),
		formatTime(now.Add(-s.ttl)),
	)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep: rows affected: %w", err)
	}
	return n, nil
}

// maintain runs the two lazy maintenance passes for one user.
func (s *Store) maintain(userID string, now time.Time) error {
	// TTL expiry. Timestamps are stored as UTC RFC3339Nano, so string
	// comparison orders correctly.
	_, err := s.db.Exec(
		`UPDATE thoughts SET state = ?, expired_reason = ? WHERE user_id = ? AND state = ? AND created_at < ?`,
		string(mind.StateExpired), string(mind.ReasonAge), userID, string(mind.StatePending),
		formatTime(now.Add(-s.ttl)),
	)
	if err != nil {
		return fmt.Errorf("maintain: ttl expiry: %w", err)
	}

	// Capacity: expire the lowest-scored excess beyond cap.
	rows, err := s.db.Query(
		`SELECT id FROM thoughts WHERE user_id = ? AND state = ? ORDER BY score ASC, created_at ASC`,
		userID, string(mind.StatePending),
	)
	if err != nil {
		return fmt.Errorf("maintain: capacity query: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("maintain: scan id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("maintain: capacity rows: %w", err)
	}

	excess := len(ids) - s.cap
	for i := 0; i < excess; i++ {
		_, err := s.db.Exec(
			`UPDATE thoughts SET state = ?, expired_reason = ? WHERE id = ? AND state = ?`,
			string(mind.StateExpired), string(mind.ReasonCapacityExceeded), ids[i], string(mind.StatePending),
		)
		if err != nil {
			return fmt.Errorf("maintain: capacity expiry: %w", err)
		}
	}
	return nil
}

func scanThoughts(rows *sql.Rows) ([]mind.Thought, error) {
	var out []mind.Thought
	for rows.Next() {
		var (
			t              mind.Thought
			category, prov string
			state          string
			createdAt      string
			expiredReason  sql.NullString
			surfacedAt     sql.NullString
		)
		err := rows.Scan(&t.ID, &t.UserID, &category, &t.SeedContent, &prov, &t.Score, &createdAt, &state, &expiredReason, &surfacedAt)
		if err != nil {
			return nil, fmt.Errorf("scan thought: %w", err)
		}
		t.Category = mind.ThoughtCategory(category)
		t.SeedProvenance = mind.Provenance(prov)
		t.State = mind.ThoughtState(state)
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("scan thought: created_at: %w", err)
		}
		if expiredReason.Valid {
			t.ExpiredReason = mind.ExpireReason(expiredReason.String)
		}
		if surfacedAt.Valid {
			at, err := parseTime(surfacedAt.String)
			if err != nil {
				return nil, fmt.Errorf("scan thought: surfaced_at: %w", err)
			}
			t.SurfacedAt = &at
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan thoughts: %w", err)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
