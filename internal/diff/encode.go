package diff

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// Value encodes d as a tree: an array of {"path", "from"?, "to"?} objects.
// Absent sides are omitted, so an explicit null survives a round trip.
func (d Diff) Value() tree.Array {
	out := make(tree.Array, len(d.Entries))
	for i, e := range d.Entries {
		out[i] = e.Value()
	}
	return out
}

// Value encodes one entry as a tree object.
func (e Entry) Value() tree.Object {
	obj := tree.Obj(tree.P("path", tree.String(e.Path.String())))
	if e.From != nil {
		obj["from"] = e.From
	}
	if e.To != nil {
		obj["to"] = e.To
	}
	return obj
}

// FromValue decodes a diff encoded by Diff.Value.
func FromValue(v tree.Value) (Diff, error) {
	arr, ok := v.(tree.Array)
	if !ok {
		return Diff{}, fmt.Errorf("diff must be an array, got %s", tree.KindOf(v))
	}

	entries := make([]Entry, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(tree.Object)
		if !ok {
			return Diff{}, fmt.Errorf("entry %d: must be an object, got %s", i, tree.KindOf(item))
		}
		ps, ok := obj["path"].(tree.String)
		if !ok {
			return Diff{}, fmt.Errorf("entry %d: missing string path", i)
		}
		p, err := path.ParsePattern(string(ps))
		if err != nil {
			return Diff{}, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, Entry{Path: p, From: obj["from"], To: obj["to"]})
	}
	return Diff{Entries: entries}, nil
}

// MarshalJSON encodes the diff as its entry array.
func (d Diff) MarshalJSON() ([]byte, error) {
	return tree.Marshal(d.Value())
}

// UnmarshalJSON decodes a diff produced by MarshalJSON.
func (d *Diff) UnmarshalJSON(data []byte) error {
	v, err := tree.Parse(data)
	if err != nil {
		return err
	}
	decoded, err := FromValue(v)
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}

// Canonical returns the RFC 8785 encoding of d, suitable for hashing and
// golden files.
func (d Diff) Canonical() ([]byte, error) {
	return tree.MarshalCanonical(d.Value())
}

// Hash returns the content hash of d.
func (d Diff) Hash() (string, error) {
	return tree.HashWithDomain(tree.DomainDiff, d.Value())
}

// String renders an entry as "path: from -> to" for logs and CLI output.
func (e Entry) String() string {
	return fmt.Sprintf("%s: %s -> %s", displayPath(e.Path), render(e.From), render(e.To))
}

func displayPath(p path.Path) string {
	if len(p) == 0 {
		return "<root>"
	}
	return p.String()
}

func render(v tree.Value) string {
	if v == nil {
		return "<absent>"
	}
	data, err := tree.Marshal(v)
	if err != nil {
		return "<" + string(tree.KindOf(v)) + ">"
	}
	return string(data)
}

var (
	_ json.Marshaler   = Diff{}
	_ json.Unmarshaler = (*Diff)(nil)
)
