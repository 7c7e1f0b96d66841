package recording

import (
	"fmt"
	"time"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/mutation"
	"github.com/roach88/statetree/internal/tree"
)

// marshalState converts a state tree to canonical JSON TEXT and its hash.
func marshalState(state tree.Value) (text, hash string, err error) {
	data, err := tree.MarshalCanonical(state)
	if err != nil {
		return "", "", fmt.Errorf("marshal state: %w", err)
	}
	hash, err = tree.Hash(state)
	if err != nil {
		return "", "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), hash, nil
}

func unmarshalState(data string) (tree.Value, error) {
	v, err := tree.Parse([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return v, nil
}

// marshalMutations stores mutation summaries as a canonical JSON array of
// {"description", "kind", "path"} objects.
func marshalMutations(infos []mutation.Info) (string, error) {
	arr := make(tree.Array, len(infos))
	for i, info := range infos {
		arr[i] = tree.Obj(
			tree.P("kind", tree.String(info.Kind)),
			tree.P("path", tree.String(info.Path)),
			tree.P("description", tree.String(info.Description)),
		)
	}
	data, err := tree.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal mutations: %w", err)
	}
	return string(data), nil
}

func unmarshalMutations(data string) ([]mutation.Info, error) {
	v, err := tree.Parse([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal mutations: %w", err)
	}
	arr, ok := v.(tree.Array)
	if !ok {
		return nil, fmt.Errorf("unmarshal mutations: expected array, got %s", tree.KindOf(v))
	}

	infos := make([]mutation.Info, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(tree.Object)
		if !ok {
			return nil, fmt.Errorf("unmarshal mutations: item %d is %s", i, tree.KindOf(item))
		}
		kind, _ := obj["kind"].(tree.String)
		p, _ := obj["path"].(tree.String)
		desc, _ := obj["description"].(tree.String)
		infos = append(infos, mutation.Info{
			Kind:        mutation.Kind(kind),
			Path:        string(p),
			Description: string(desc),
		})
	}
	return infos, nil
}

// marshalDiff converts a diff to canonical JSON TEXT and its hash.
func marshalDiff(d diff.Diff) (text, hash string, err error) {
	data, err := d.Canonical()
	if err != nil {
		return "", "", fmt.Errorf("marshal diff: %w", err)
	}
	hash, err = d.Hash()
	if err != nil {
		return "", "", fmt.Errorf("marshal diff: %w", err)
	}
	return string(data), hash, nil
}

func unmarshalDiff(data string) (diff.Diff, error) {
	var d diff.Diff
	if err := d.UnmarshalJSON([]byte(data)); err != nil {
		return diff.Diff{}, fmt.Errorf("unmarshal diff: %w", err)
	}
	return d, nil
}

// Timestamps are stored as RFC 3339 in UTC so they sort as text.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
