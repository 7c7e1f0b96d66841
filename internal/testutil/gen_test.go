package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

func TestRandomTreeDeterministic(t *testing.T) {
	a := RandomTree(NewRand(42), 4)
	b := RandomTree(NewRand(42), 4)
	assert.True(t, tree.Equal(a, b))
}

func TestAllPathsResolve(t *testing.T) {
	r := NewRand(5)
	for i := 0; i < 50; i++ {
		v := RandomTree(r, 4)
		for _, p := range AllPaths(v) {
			assert.True(t, path.Has(v, p), "path %q", p.String())
		}
	}
}

func TestRandomEditLeavesInputAlone(t *testing.T) {
	r := NewRand(6)
	for i := 0; i < 50; i++ {
		v := RandomObject(r, 3)
		snapshot := tree.Clone(v)
		RandomEdit(r, v, 3)
		assert.True(t, tree.Equal(snapshot, v))
	}
}
