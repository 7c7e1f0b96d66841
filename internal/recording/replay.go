package recording

import (
	"context"
	"fmt"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/tree"
)

// ReplayResult is the outcome of rebuilding a session from its log.
type ReplayResult struct {
	Session string
	State   tree.Value
	Hash    string
	Records int
	LastSeq int64

	// SnapshotSeq and SnapshotHash describe the latest stored snapshot.
	// When it is the seq 0 snapshot there is nothing to compare against
	// beyond the initial state.
	SnapshotSeq  int64
	SnapshotHash string

	// Deterministic is true when the replayed state at SnapshotSeq hashes
	// to SnapshotHash.
	Deterministic bool
}

// Replay rebuilds a session's state by applying every recorded diff, in seq
// order, to the initial snapshot. The state reached at the latest snapshot's
// seq is hashed and compared with the stored hash.
func (r *Recorder) Replay(ctx context.Context, session string) (ReplayResult, error) {
	initial, err := r.InitialSnapshot(ctx, session)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	latest, err := r.LatestSnapshot(ctx, session)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	records, err := r.ReadRecords(ctx, session)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	res := ReplayResult{
		Session:      session,
		Records:      len(records),
		SnapshotSeq:  latest.Seq,
		SnapshotHash: latest.Hash,
	}

	state := initial.State
	atSnapshot := state
	for _, rec := range records {
		state, err = diff.Apply(state, rec.Diff)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replay: record %d: %w", rec.Seq, err)
		}
		res.LastSeq = rec.Seq
		if rec.Seq <= latest.Seq {
			atSnapshot = state
		}
	}

	res.State = state
	if res.Hash, err = tree.Hash(state); err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	snapshotHash, err := tree.Hash(atSnapshot)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	res.Deterministic = snapshotHash == latest.Hash
	return res, nil
}
