package mutation

import (
	"fmt"

	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// UpdateFunc computes a new value from the current one. current is nil when
// nothing exists at the path.
type UpdateFunc func(current tree.Value) (tree.Value, error)

// Predicate selects array elements for RemoveWhere.
type Predicate func(elem tree.Value) bool

// Set overwrites the value at p.
func Set(p string, val tree.Value) Mutation {
	return build(KindSet, p, fmt.Sprintf("set %s to %s", displayPath(p), describeValue(val)),
		func(state tree.Value, pp path.Path) (tree.Value, error) {
			if val == nil {
				return nil, &Error{Code: ErrCodeInvalidValue, Kind: KindSet, Path: p, Message: "value is absent"}
			}
			return path.Set(state, pp, val)
		})
}

// Update reads the value at p, passes it to fn and writes the result back.
// Errors from fn are wrapped with ErrCodeUpdateFailed.
func Update(p string, fn UpdateFunc) Mutation {
	return build(KindUpdate, p, fmt.Sprintf("update %s", displayPath(p)),
		func(state tree.Value, pp path.Path) (tree.Value, error) {
			if fn == nil {
				return nil, &Error{Code: ErrCodeUpdateFailed, Kind: KindUpdate, Path: p, Message: "update function is nil"}
			}
			next, err := fn(path.Get(state, pp))
			if err != nil {
				return nil, &Error{Code: ErrCodeUpdateFailed, Kind: KindUpdate, Path: p, Message: "update function failed", Err: err}
			}
			if next == nil {
				return nil, &Error{Code: ErrCodeUpdateFailed, Kind: KindUpdate, Path: p, Message: "update function returned an absent value"}
			}
			return path.Set(state, pp, next)
		})
}

// Push appends item to the array at p.
func Push(p string, item tree.Value) Mutation {
	return build(KindPush, p, fmt.Sprintf("push %s onto %s", describeValue(item), displayPath(p)),
		func(state tree.Value, pp path.Path) (tree.Value, error) {
			if item == nil {
				return nil, &Error{Code: ErrCodeInvalidValue, Kind: KindPush, Path: p, Message: "item is absent"}
			}
			arr, err := arrayAt(state, pp, KindPush, p)
			if err != nil {
				return nil, err
			}
			out := make(tree.Array, len(arr), len(arr)+1)
			copy(out, arr)
			return path.Set(state, pp, append(out, item))
		})
}

// RemoveWhere drops every element of the array at p for which pred is true.
// If nothing matches, the state is returned unchanged.
func RemoveWhere(p string, pred Predicate) Mutation {
	return build(KindRemoveWhere, p, fmt.Sprintf("remove from %s where predicate matches", displayPath(p)),
		func(state tree.Value, pp path.Path) (tree.Value, error) {
			arr, err := arrayAt(state, pp, KindRemoveWhere, p)
			if err != nil {
				return nil, err
			}
			if pred == nil {
				return state, nil
			}
			out := make(tree.Array, 0, len(arr))
			for _, elem := range arr {
				if !pred(elem) {
					out = append(out, elem)
				}
			}
			if len(out) == len(arr) {
				return state, nil
			}
			return path.Set(state, pp, out)
		})
}

// RemoveKey deletes the property named by p's last segment from the object
// addressed by the rest of p. Removing a key that is not there is a no-op.
func RemoveKey(p string) Mutation {
	return build(KindRemoveKey, p, fmt.Sprintf("remove key %s", displayPath(p)),
		func(state tree.Value, pp path.Path) (tree.Value, error) {
			if len(pp) == 0 {
				return nil, &path.Error{Code: path.ErrCodeInvalidPath, Message: "removeKey needs at least one segment"}
			}
			parent := path.Get(state, pp.Parent())
			if _, ok := parent.(tree.Object); !ok {
				return nil, &Error{
					Code:    ErrCodeNotObject,
					Kind:    KindRemoveKey,
					Path:    p,
					Message: fmt.Sprintf("parent %q is %s, not an object", pp.Parent().String(), tree.KindOf(parent)),
				}
			}
			return path.Delete(state, pp)
		})
}

func arrayAt(state tree.Value, pp path.Path, kind Kind, p string) (tree.Array, error) {
	cur := path.Get(state, pp)
	arr, ok := cur.(tree.Array)
	if !ok {
		return nil, &Error{
			Code:    ErrCodeNotArray,
			Kind:    kind,
			Path:    p,
			Message: fmt.Sprintf("value is %s, not an array", tree.KindOf(cur)),
		}
	}
	return arr, nil
}

func displayPath(p string) string {
	if p == "" {
		return "<root>"
	}
	return p
}

const maxDescribedValue = 48

// describeValue renders a short JSON preview of v for descriptions.
func describeValue(v tree.Value) string {
	if v == nil {
		return "<absent>"
	}
	data, err := tree.Marshal(v)
	if err != nil {
		return "<" + string(tree.KindOf(v)) + ">"
	}
	if r := []rune(string(data)); len(r) > maxDescribedValue {
		return string(r[:maxDescribedValue-3]) + "..."
	}
	return string(data)
}
