// Package diff computes and replays leaf-level changes between two state
// trees.
//
// Compute walks both trees together. Subtrees that are the same reference
// are skipped without inspection, so the cost of a diff after a
// copy-on-write update is proportional to the updated spine. Arrays are
// compared index by index with no move detection; a length change adds a
// trailing "<path>.length" entry.
package diff

import (
	"slices"

	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// LengthKey is the final segment of the synthetic entry reporting an array
// length change.
const LengthKey = "length"

// Entry is one changed location. From or To is nil when the location was
// absent on that side.
type Entry struct {
	Path path.Path
	From tree.Value
	To   tree.Value
}

// IsLength reports whether e is a synthetic array length entry.
func (e Entry) IsLength() bool {
	if len(e.Path) == 0 {
		return false
	}
	last := e.Path.Last()
	if last.Kind != path.KindKey || last.Key != LengthKey {
		return false
	}
	_, fromInt := e.From.(tree.Int)
	_, toInt := e.To.(tree.Int)
	return fromInt && toInt
}

// Diff is the ordered list of changes between two trees.
type Diff struct {
	Entries []Entry
}

// Empty reports whether the diff has no entries.
func (d Diff) Empty() bool {
	return len(d.Entries) == 0
}

// Paths returns each entry's path string in order.
func (d Diff) Paths() []string {
	out := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		out[i] = e.Path.String()
	}
	return out
}

// Touches reports whether any entry is at p, under p, or above p.
func (d Diff) Touches(p path.Path) bool {
	for _, e := range d.Entries {
		if e.Path.HasPrefix(p) || p.HasPrefix(e.Path) {
			return true
		}
	}
	return false
}

// Compute returns the leaf-level changes that turn before into after.
// Equal-by-value subtrees produce no entries even when they are different
// references. A change of kind at a node produces one entry for that node.
func Compute(before, after tree.Value) Diff {
	var entries []Entry
	walk(path.Path{}, before, after, &entries)
	return Diff{Entries: entries}
}

func walk(p path.Path, a, b tree.Value, out *[]Entry) {
	if tree.Same(a, b) {
		return
	}

	switch av := a.(type) {
	case tree.Array:
		if bv, ok := b.(tree.Array); ok {
			walkArrays(p, av, bv, out)
			return
		}
	case tree.Object:
		if bv, ok := b.(tree.Object); ok {
			walkObjects(p, av, bv, out)
			return
		}
	}

	if !tree.Equal(a, b) {
		*out = append(*out, Entry{Path: p, From: a, To: b})
	}
}

func walkArrays(p path.Path, a, b tree.Array, out *[]Entry) {
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		var ai, bi tree.Value
		if i < len(a) {
			ai = a[i]
		}
		if i < len(b) {
			bi = b[i]
		}
		walk(p.Child(path.Index(i)), ai, bi, out)
	}
	if len(a) != len(b) {
		*out = append(*out, Entry{
			Path: p.Child(path.Key(LengthKey)),
			From: tree.Int(len(a)),
			To:   tree.Int(len(b)),
		})
	}
}

func walkObjects(p path.Path, a, b tree.Object, out *[]Entry) {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, tree.CompareKeys)

	for _, k := range keys {
		walk(p.Child(path.ForKey(k)), a[k], b[k], out)
	}
}
