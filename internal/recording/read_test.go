package recording

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/testutil"
	"github.com/roach88/statetree/internal/tree"
)

func TestReadSession_NotFound(t *testing.T) {
	r := createTestRecorder(t)

	_, err := r.ReadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReadSession(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)

	id, err := r.BeginSession(ctx, "inventory", tree.Obj())
	require.NoError(t, err)

	sess, err := r.ReadSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, "inventory", sess.Label)
	assert.True(t, sess.CreatedAt.Equal(testutil.Epoch.Add(1e9)), "got %v", sess.CreatedAt)
}

func TestListSessions_Ordered(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)

	empty, err := r.ListSessions(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, label := range []string{"a", "b", "c"} {
		_, err := r.BeginSession(ctx, label, tree.Obj())
		require.NoError(t, err)
	}

	sessions, err := r.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	var labels []string
	for _, s := range sessions {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"a", "b", "c"}, labels)
}

func TestReadRecords_Empty(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)
	id, err := r.BeginSession(ctx, "", tree.Obj())
	require.NoError(t, err)

	records, err := r.ReadRecords(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestReadRecords_OrderedBySeq(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)
	id, err := r.BeginSession(ctx, "", tree.Obj())
	require.NoError(t, err)

	for _, seq := range []int64{3, 1, 2} {
		require.NoError(t, r.WriteRecord(ctx, id, testRecord(seq)))
	}

	records, err := r.ReadRecords(ctx, id)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, int64(i+1), rec.Seq)
	}
}

func TestLatestSnapshot_NotFound(t *testing.T) {
	r := createTestRecorder(t)

	_, err := r.LatestSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLastSeq_NoRecords(t *testing.T) {
	ctx := context.Background()
	r := createTestRecorder(t)
	id, err := r.BeginSession(ctx, "", tree.Obj())
	require.NoError(t, err)

	seq, err := r.LastSeq(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)
}
