package recording

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/mutation"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/store"
	"github.com/roach88/statetree/internal/testutil"
	"github.com/roach88/statetree/internal/tree"
)

func recordedStore(t *testing.T, r *Recorder, initial tree.Value) (*store.Store, string) {
	t.Helper()
	ctx := context.Background()
	id, err := r.BeginSession(ctx, "", initial)
	require.NoError(t, err)
	s := store.New(initial,
		store.WithCommitHook(r.Hook(ctx, id)),
		store.WithTimeSource(testutil.FixedTime(testutil.Epoch)))
	return s, id
}

func TestReplay_RebuildsState(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)
	initial := tree.Obj(
		tree.P("player", tree.Obj(tree.P("hp", tree.Int(100)))),
		tree.P("log", tree.Arr()),
	)
	s, id := recordedStore(t, r, initial)

	steps := [][]mutation.Mutation{
		{mutation.Set("player.hp", tree.Int(90)), mutation.Push("log", tree.String("hit"))},
		{mutation.Set("player.name", tree.String("knight"))},
		{mutation.RemoveWhere("log", func(v tree.Value) bool { return true })},
		{mutation.RemoveKey("player.name")},
	}
	for _, muts := range steps {
		require.True(t, s.Dispatch(muts...).Valid)
	}
	require.NoError(t, r.WriteSnapshot(ctx, id, s.Seq(), s.State()))

	res, err := r.Replay(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Deterministic)
	assert.Equal(t, 4, res.Records)
	assert.Equal(t, int64(4), res.LastSeq)
	assert.Equal(t, int64(4), res.SnapshotSeq)
	assert.True(t, tree.Equal(s.State(), res.State))
	assert.Equal(t, tree.MustHash(s.State()), res.Hash)
}

func TestReplay_OnlyInitialSnapshot(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)
	s, id := recordedStore(t, r, tree.Obj(tree.P("n", tree.Int(0))))

	require.True(t, s.Dispatch(mutation.Set("n", tree.Int(1))).Valid)

	res, err := r.Replay(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Deterministic, "seq 0 snapshot matches the initial state")
	assert.Equal(t, int64(0), res.SnapshotSeq)
	assert.Equal(t, tree.Obj(tree.P("n", tree.Int(1))), res.State)
}

func TestReplay_DetectsDivergence(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)
	s, id := recordedStore(t, r, tree.Obj(tree.P("n", tree.Int(0))))

	require.True(t, s.Dispatch(mutation.Set("n", tree.Int(1))).Valid)
	require.NoError(t, r.WriteSnapshot(ctx, id, s.Seq(), tree.Obj(tree.P("n", tree.Int(2)))))

	res, err := r.Replay(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.Deterministic)
}

func TestReplay_SnapshotBeforeLastRecord(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)
	s, id := recordedStore(t, r, tree.Obj(tree.P("n", tree.Int(0))))

	require.True(t, s.Dispatch(mutation.Set("n", tree.Int(1))).Valid)
	require.NoError(t, r.WriteSnapshot(ctx, id, s.Seq(), s.State()))
	require.True(t, s.Dispatch(mutation.Set("n", tree.Int(2))).Valid)

	res, err := r.Replay(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Deterministic)
	assert.Equal(t, int64(1), res.SnapshotSeq)
	assert.Equal(t, int64(2), res.LastSeq)
	assert.Equal(t, tree.Obj(tree.P("n", tree.Int(2))), res.State)
}

func TestReplay_RandomSessions(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRand(7)

	for i := 0; i < 20; i++ {
		r := createTestRecorder(t)
		initial := testutil.RandomObject(rng, 3)
		id, err := r.BeginSession(ctx, "", initial)
		require.NoError(t, err)

		state := tree.Value(initial)
		for seq := int64(1); seq <= 5; seq++ {
			next := testutil.RandomEdit(rng, state, 3)
			rec := store.Record{Seq: seq, Timestamp: testutil.Epoch, Diff: diff.Compute(state, next)}
			require.NoError(t, r.WriteRecord(ctx, id, rec))
			state = next
		}
		require.NoError(t, r.WriteSnapshot(ctx, id, 5, state))

		res, err := r.Replay(ctx, id)
		require.NoError(t, err)
		assert.True(t, res.Deterministic, "session %d", i)
		assert.True(t, tree.Equal(state, res.State), "session %d", i)
	}
}

func TestReplay_UnknownSession(t *testing.T) {
	r := createTestRecorder(t)

	_, err := r.Replay(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReplay_CorruptDiff(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)
	id, err := r.BeginSession(ctx, "", tree.Obj())
	require.NoError(t, err)

	rec := store.Record{Seq: 1, Timestamp: testutil.Epoch, Diff: diff.Diff{Entries: []diff.Entry{
		{Path: path.MustParse("missing.child"), To: tree.Int(1)},
	}}}
	require.NoError(t, r.WriteRecord(ctx, id, rec))

	_, err = r.Replay(ctx, id)
	assert.Error(t, err)
}
