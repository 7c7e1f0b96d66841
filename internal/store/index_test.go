package store

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/mutation"
	"github.com/roach88/statetree/internal/observer"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/testutil"
	"github.com/roach88/statetree/internal/tree"
)

func entitiesState() tree.Value {
	return tree.Obj(
		tree.P("entities", tree.Obj(
			tree.P("e1", tree.Obj(tree.P("hp", tree.Int(100)), tree.P("pos", tree.Obj(tree.P("x", tree.Int(0)))))),
			tree.P("e2", tree.Obj(tree.P("hp", tree.Int(50)))),
			tree.P("e3", tree.String("not an entity object")),
		)),
		tree.P("turn", tree.Int(1)),
	)
}

func TestComponentIndex(t *testing.T) {
	tests := []struct {
		name      string
		muts      []mutation.Mutation
		component string
		want      []string
	}{
		{"initial", nil, "hp", []string{"e1", "e2"}},
		{"scalar entity has no components", nil, "not an entity object", []string{}},
		{"add component", []mutation.Mutation{mutation.Set("entities.e2.pos", tree.Obj())}, "pos", []string{"e1", "e2"}},
		{"remove component", []mutation.Mutation{mutation.RemoveKey("entities.e1.hp")}, "hp", []string{"e2"}},
		{"remove entity", []mutation.Mutation{mutation.RemoveKey("entities.e2")}, "hp", []string{"e1"}},
		{"nested change keeps component", []mutation.Mutation{mutation.Set("entities.e1.pos.x", tree.Int(5))}, "pos", []string{"e1"}},
		{"entity becomes object", []mutation.Mutation{mutation.Set("entities.e3", tree.Obj(tree.P("hp", tree.Int(1))))}, "hp", []string{"e1", "e2", "e3"}},
		{"replace collection", []mutation.Mutation{mutation.Set("entities", tree.Obj(tree.P("z", tree.Obj(tree.P("hp", tree.Int(1))))))}, "hp", []string{"z"}},
		{"replace root", []mutation.Mutation{mutation.Set("", tree.Obj())}, "hp", []string{}},
		{"collection becomes scalar", []mutation.Mutation{mutation.Set("entities", tree.Int(0))}, "hp", []string{}},
		{"unrelated change", []mutation.Mutation{mutation.Set("turn", tree.Int(2))}, "hp", []string{"e1", "e2"}},
		{"unknown component", nil, "mana", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(entitiesState())
			require.NoError(t, s.EnableComponentIndex("entities"))
			if len(tt.muts) > 0 {
				require.True(t, s.Dispatch(tt.muts...).Valid)
			}
			assert.Equal(t, tt.want, s.EntitiesWithComponent(tt.component))
		})
	}
}

func TestComponentIndexUnchangedOnFailure(t *testing.T) {
	s := newStore(entitiesState())
	require.NoError(t, s.EnableComponentIndex("entities"))

	res := s.Dispatch(mutation.RemoveKey("entities.e1"), mutation.Push("turn", tree.Int(1)))
	require.False(t, res.Valid)
	assert.Equal(t, []string{"e1", "e2"}, s.EntitiesWithComponent("hp"))
}

func TestComponentIndexNestedCollection(t *testing.T) {
	s := newStore(tree.Obj(tree.P("world", tree.Obj(tree.P("entities", tree.Obj())))))
	require.NoError(t, s.EnableComponentIndex("world.entities"))

	require.True(t, s.Dispatch(mutation.Set("world.entities.7", tree.Obj(tree.P("hp", tree.Int(1))))).Valid)
	assert.Equal(t, []string{"7"}, s.EntitiesWithComponent("hp"))

	require.True(t, s.Dispatch(mutation.Set("world", tree.Obj(tree.P("entities", tree.Obj())))).Valid)
	assert.Empty(t, s.EntitiesWithComponent("hp"))
}

// expectedIndex computes the component index from scratch.
func expectedIndex(state tree.Value, collection string) map[string][]string {
	out := map[string][]string{}
	coll, ok := path.Get(state, path.MustParse(collection)).(tree.Object)
	if !ok {
		return out
	}
	for id, entity := range coll {
		obj, ok := entity.(tree.Object)
		if !ok {
			continue
		}
		for k := range obj {
			out[k] = append(out[k], id)
		}
	}
	for k := range out {
		slices.Sort(out[k])
	}
	return out
}

var componentKeys = []string{"hp", "armor", "pos", "ai"}

func randomEntity(r *rand.Rand) tree.Value {
	if r.IntN(6) == 0 {
		return tree.Int(r.IntN(3))
	}
	obj := tree.Object{}
	for _, k := range componentKeys {
		if r.IntN(2) == 0 {
			obj[k] = testutil.RandomTree(r, 2)
		}
	}
	return obj
}

func randomIndexMutation(r *rand.Rand) mutation.Mutation {
	id := fmt.Sprintf("e%d", r.IntN(6))
	comp := componentKeys[r.IntN(len(componentKeys))]
	switch r.IntN(7) {
	case 0:
		return mutation.Set("entities."+id, randomEntity(r))
	case 1:
		return mutation.RemoveKey("entities." + id)
	case 2:
		return mutation.Set("entities."+id+"."+comp, testutil.RandomScalar(r))
	case 3:
		return mutation.RemoveKey("entities." + id + "." + comp)
	case 4:
		coll := tree.Object{}
		for i := 0; i < r.IntN(4); i++ {
			coll[fmt.Sprintf("e%d", r.IntN(6))] = randomEntity(r)
		}
		return mutation.Set("entities", coll)
	case 5:
		return mutation.Set("other", testutil.RandomScalar(r))
	default:
		// Fails when the entity is missing or not an object.
		return mutation.Set("entities."+id+"."+comp+".deep", tree.Int(1))
	}
}

// For any sequence of dispatches and replacements, the index equals a
// full rebuild of the current state.
func TestPropertyComponentIndexMatchesRebuild(t *testing.T) {
	r := testutil.NewRand(11)
	for run := 0; run < 40; run++ {
		s := newStore(tree.Obj(tree.P("entities", tree.Obj())))
		require.NoError(t, s.EnableComponentIndex("entities"))

		for step := 0; step < 30; step++ {
			if r.IntN(15) == 0 {
				s.ReplaceState(tree.Obj(tree.P("entities", tree.Obj(tree.P("e0", randomEntity(r))))))
			} else {
				n := 1 + r.IntN(3)
				muts := make([]mutation.Mutation, n)
				for i := range muts {
					muts[i] = randomIndexMutation(r)
				}
				s.Dispatch(muts...)
			}

			want := expectedIndex(s.State(), "entities")
			for _, k := range append(slices.Clone(componentKeys), "deep") {
				expected := want[k]
				if expected == nil {
					expected = []string{}
				}
				require.Equal(t, expected, s.EntitiesWithComponent(k), "run %d step %d component %q", run, step, k)
			}
			require.Equal(t, len(want), len(s.Components()), "run %d step %d", run, step)
		}
	}
}

// Atomicity at the store level: a failing list changes nothing observable.
func TestPropertyDispatchAtomicity(t *testing.T) {
	r := testutil.NewRand(12)
	for run := 0; run < 100; run++ {
		s := newStore(testutil.RandomObject(r, 3))
		require.NoError(t, s.EnableComponentIndex("a"))

		fired := 0
		_, err := s.Observe("*", func(_, _ tree.Value, _ observer.Context) { fired++ })
		require.NoError(t, err)

		before := tree.Clone(s.State())
		components := s.Components()
		hist := len(s.History())

		muts := []mutation.Mutation{
			mutation.Set("fresh", testutil.RandomTree(r, 2)),
			mutation.Update("fresh", func(tree.Value) (tree.Value, error) { return nil, fmt.Errorf("boom") }),
		}
		res := s.Dispatch(muts...)

		require.False(t, res.Valid)
		require.True(t, tree.Equal(before, s.State()))
		require.Equal(t, components, s.Components())
		require.Len(t, s.History(), hist)
		require.Zero(t, fired)
	}
}
