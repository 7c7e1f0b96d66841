package testutil

import (
	"fmt"
	"math/rand/v2"

	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// NewRand returns a seeded generator so property tests replay identically.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// treeKeys is deliberately small so that random objects collide on keys,
// and includes names that stress path parsing ("0", "length").
var treeKeys = []string{"a", "b", "c", "hp", "0", "12", "length", "name"}

// RandomTree builds a random tree at most depth levels deep.
func RandomTree(r *rand.Rand, depth int) tree.Value {
	if depth <= 0 || r.IntN(3) == 0 {
		return RandomScalar(r)
	}
	if r.IntN(2) == 0 {
		n := r.IntN(4)
		arr := make(tree.Array, n)
		for i := range arr {
			arr[i] = RandomTree(r, depth-1)
		}
		return arr
	}
	n := r.IntN(4)
	obj := make(tree.Object, n)
	for i := 0; i < n; i++ {
		obj[treeKeys[r.IntN(len(treeKeys))]] = RandomTree(r, depth-1)
	}
	return obj
}

// RandomObject is like RandomTree but always returns an Object at the root.
func RandomObject(r *rand.Rand, depth int) tree.Object {
	obj := tree.Object{}
	for i := 0; i < 1+r.IntN(4); i++ {
		obj[treeKeys[r.IntN(len(treeKeys))]] = RandomTree(r, depth-1)
	}
	return obj
}

// RandomScalar returns a random leaf value.
func RandomScalar(r *rand.Rand) tree.Value {
	switch r.IntN(5) {
	case 0:
		return tree.Null{}
	case 1:
		return tree.Int(r.IntN(5))
	case 2:
		return tree.Float(float64(r.IntN(5)) + 0.5)
	case 3:
		return tree.Bool(r.IntN(2) == 0)
	default:
		return tree.String(fmt.Sprintf("s%d", r.IntN(3)))
	}
}

// AllPaths lists every location in v, the root included, parents first.
func AllPaths(v tree.Value) []path.Path {
	var out []path.Path
	var walk func(p path.Path, v tree.Value)
	walk = func(p path.Path, v tree.Value) {
		out = append(out, p)
		switch c := v.(type) {
		case tree.Array:
			for i, elem := range c {
				walk(p.Child(path.Index(i)), elem)
			}
		case tree.Object:
			for _, k := range c.SortedKeys() {
				walk(p.Child(path.ForKey(k)), c[k])
			}
		}
	}
	walk(path.Path{}, v)
	return out
}

// RandomEdit applies n random copy-on-write edits to v: replacing a
// subtree, adding or deleting an object key, or growing or shrinking an
// array. Untouched subtrees stay shared with v.
func RandomEdit(r *rand.Rand, v tree.Value, n int) tree.Value {
	for i := 0; i < n; i++ {
		paths := AllPaths(v)
		p := paths[r.IntN(len(paths))]
		if len(p) == 0 && len(paths) > 1 && r.IntN(4) != 0 {
			p = paths[1+r.IntN(len(paths)-1)]
		}

		var next tree.Value
		var err error
		switch cur := path.Get(v, p).(type) {
		case tree.Object:
			k := treeKeys[r.IntN(len(treeKeys))]
			if _, exists := cur[k]; exists && r.IntN(2) == 0 {
				next, err = path.Delete(v, p.Child(path.ForKey(k)))
			} else {
				next, err = path.Set(v, p.Child(path.ForKey(k)), RandomTree(r, 2))
			}
		case tree.Array:
			if len(cur) > 0 && r.IntN(2) == 0 {
				next, err = path.Set(v, p, cur[:r.IntN(len(cur))])
			} else {
				next, err = path.Set(v, p.Child(path.Index(len(cur))), RandomTree(r, 2))
			}
		default:
			next, err = path.Set(v, p, RandomTree(r, 2))
		}
		if err != nil {
			panic(fmt.Sprintf("RandomEdit at %q: %v", p.String(), err))
		}
		v = next
	}
	return v
}
