package recording

import (
	"context"
	"fmt"

	"github.com/roach88/statetree/internal/store"
	"github.com/roach88/statetree/internal/tree"
)

// BeginSession creates a session and stores initial as its seq 0 snapshot.
// Returns the new session id.
func (r *Recorder) BeginSession(ctx context.Context, label string, initial tree.Value) (string, error) {
	if initial == nil {
		initial = tree.Object{}
	}
	stateJSON, stateHash, err := marshalState(initial)
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}

	id := r.ids.Generate()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin session: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, label, created_at)
		VALUES (?, ?, ?)
	`, id, label, formatTime(r.now()))
	if err != nil {
		return "", fmt.Errorf("begin session: insert session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (session_id, seq, state, state_hash)
		VALUES (?, 0, ?, ?)
	`, id, stateJSON, stateHash)
	if err != nil {
		return "", fmt.Errorf("begin session: insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("begin session: commit: %w", err)
	}
	return id, nil
}

// WriteRecord appends a committed transaction to a session.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same seq twice
// is silently ignored.
//
// Note: The session must exist (foreign key constraint).
func (r *Recorder) WriteRecord(ctx context.Context, session string, rec store.Record) error {
	mutationsJSON, err := marshalMutations(rec.Mutations)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	diffJSON, diffHash, err := marshalDiff(rec.Diff)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO records
		(session_id, seq, timestamp, mutations, diff, diff_hash)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		session,
		rec.Seq,
		formatTime(rec.Timestamp),
		mutationsJSON,
		diffJSON,
		diffHash,
	)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// WriteSnapshot stores the state of a session as of seq. A later snapshot
// at the same seq replaces the earlier one.
func (r *Recorder) WriteSnapshot(ctx context.Context, session string, seq int64, state tree.Value) error {
	stateJSON, stateHash, err := marshalState(state)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (session_id, seq, state, state_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO UPDATE SET
			state = excluded.state,
			state_hash = excluded.state_hash
	`, session, seq, stateJSON, stateHash)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Hook returns a commit hook for store.WithCommitHook that writes every
// committed record to session. The store has no way to receive the error,
// so failures are logged.
func (r *Recorder) Hook(ctx context.Context, session string) func(store.Record) {
	return func(rec store.Record) {
		if err := r.WriteRecord(ctx, session, rec); err != nil {
			r.logger.Error("record write failed",
				"session", session,
				"seq", rec.Seq,
				"error", err)
		}
	}
}
