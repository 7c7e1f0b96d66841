package recording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/statetree/internal/store"
	"github.com/roach88/statetree/internal/tree"
)

// ErrSessionNotFound is returned when a session id has no row.
var ErrSessionNotFound = errors.New("session not found")

// Session describes one recorded store session.
type Session struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is a stored state as of a sequence number.
type Snapshot struct {
	Seq   int64
	State tree.Value
	Hash  string
}

// ReadSession retrieves one session by id.
// Returns ErrSessionNotFound if it does not exist.
func (r *Recorder) ReadSession(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, label, created_at
		FROM sessions
		WHERE id = ?
	`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("read session %q: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session %q: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns all sessions ordered by creation time, then id.
// Returns an empty slice (not nil) if none exist.
func (r *Recorder) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, created_at
		FROM sessions
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadRecords returns the recorded transactions of a session in seq order.
// Returns an empty slice (not nil) if none exist.
func (r *Recorder) ReadRecords(ctx context.Context, session string) ([]store.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, timestamp, mutations, diff
		FROM records
		WHERE session_id = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []store.Record{}
	for rows.Next() {
		var (
			rec           store.Record
			ts            string
			mutationsJSON string
			diffJSON      string
		)
		if err := rows.Scan(&rec.Seq, &ts, &mutationsJSON, &diffJSON); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if rec.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.Seq, err)
		}
		if rec.Mutations, err = unmarshalMutations(mutationsJSON); err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.Seq, err)
		}
		if rec.Diff, err = unmarshalDiff(diffJSON); err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.Seq, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// InitialSnapshot returns the seq 0 snapshot written by BeginSession.
func (r *Recorder) InitialSnapshot(ctx context.Context, session string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT seq, state, state_hash
		FROM snapshots
		WHERE session_id = ? AND seq = 0
	`, session)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("initial snapshot %q: %w", session, ErrSessionNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("initial snapshot %q: %w", session, err)
	}
	return snap, nil
}

// LatestSnapshot returns the snapshot with the highest seq for a session.
func (r *Recorder) LatestSnapshot(ctx context.Context, session string) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT seq, state, state_hash
		FROM snapshots
		WHERE session_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, session)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("latest snapshot %q: %w", session, ErrSessionNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot %q: %w", session, err)
	}
	return snap, nil
}

// LastSeq returns the highest recorded seq for a session, or 0.
func (r *Recorder) LastSeq(ctx context.Context, session string) (int64, error) {
	var seq sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM records WHERE session_id = ?
	`, session).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess    Session
		created string
	)
	if err := row.Scan(&sess.ID, &sess.Label, &created); err != nil {
		return Session{}, err
	}
	t, err := parseTime(created)
	if err != nil {
		return Session{}, fmt.Errorf("session %q: %w", sess.ID, err)
	}
	sess.CreatedAt = t
	return sess, nil
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var (
		snap      Snapshot
		stateJSON string
	)
	if err := row.Scan(&snap.Seq, &stateJSON, &snap.Hash); err != nil {
		return Snapshot{}, err
	}
	state, err := unmarshalState(stateJSON)
	if err != nil {
		return Snapshot{}, err
	}
	snap.State = state
	return snap, nil
}
