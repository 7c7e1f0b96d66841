package diff

import (
	"fmt"

	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// Apply replays d against before and returns the resulting tree. Applying
// Compute(a, b) to a yields a tree Equal to b.
//
// Entries are applied in order:
//   - To == nil deletes an object key, or truncates an array at that index
//   - a length entry on an array resizes it, padding with Null
//   - anything else is a path.Set
func Apply(before tree.Value, d Diff) (tree.Value, error) {
	state := before
	for i, e := range d.Entries {
		next, err := applyEntry(state, e)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, e.Path.String(), err)
		}
		state = next
	}
	return state, nil
}

func applyEntry(state tree.Value, e Entry) (tree.Value, error) {
	if len(e.Path) == 0 {
		return e.To, nil
	}

	parentPath := e.Path.Parent()
	parent := path.Get(state, parentPath)
	last := e.Path.Last()

	if arr, ok := parent.(tree.Array); ok && last.Kind == path.KindKey && last.Key == LengthKey {
		n, ok := e.To.(tree.Int)
		if !ok || n < 0 {
			return nil, fmt.Errorf("length entry needs a non-negative int, got %s", tree.KindOf(e.To))
		}
		return path.Set(state, parentPath, resize(arr, int(n)))
	}

	if e.To != nil {
		return path.Set(state, e.Path, e.To)
	}

	switch p := parent.(type) {
	case tree.Object:
		return path.Delete(state, e.Path)
	case tree.Array:
		if last.Kind != path.KindIndex {
			return nil, fmt.Errorf("cannot remove key %q from an array", last.Key)
		}
		if last.Index >= len(p) {
			return state, nil
		}
		return path.Set(state, parentPath, resize(p, last.Index))
	case nil:
		// The parent went away earlier in the same diff.
		return state, nil
	default:
		return nil, fmt.Errorf("cannot remove from %s", tree.KindOf(parent))
	}
}

func resize(arr tree.Array, n int) tree.Array {
	if n <= len(arr) {
		out := make(tree.Array, n)
		copy(out, arr[:n])
		return out
	}
	out := make(tree.Array, n)
	copy(out, arr)
	for i := len(arr); i < n; i++ {
		out[i] = tree.Null{}
	}
	return out
}
