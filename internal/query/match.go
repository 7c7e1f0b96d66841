package query

import (
	"github.com/roach88/statetree/internal/tree"
)

// Fields is a partial-match specification: each key names a property the
// candidate object must own, and each value is either a literal compared
// with tree.Equal or a Predicate (or plain func(tree.Value) bool) applied to
// the property. Literal Go values (int, string, ...) are converted with
// tree.FromGo.
type Fields map[string]any

type fieldMatcher struct {
	key  string
	pred Predicate
}

type partialMatch struct {
	fields []fieldMatcher
}

// Match returns a Filter that accepts objects satisfying every field. Keys
// are checked in sorted order. A value that cannot be converted to a tree
// value matches nothing. Non-objects never match.
func Match(fields Fields) Filter {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sortKeys(keys)

	m := &partialMatch{fields: make([]fieldMatcher, 0, len(keys))}
	for _, k := range keys {
		m.fields = append(m.fields, fieldMatcher{key: k, pred: fieldPredicate(fields[k])})
	}
	return m
}

func fieldPredicate(want any) Predicate {
	switch w := want.(type) {
	case Predicate:
		return w
	case func(tree.Value) bool:
		return w
	}
	lit, err := tree.FromGo(want)
	if err != nil {
		return func(tree.Value) bool { return false }
	}
	return Eq(lit)
}

// Matches implements Filter.
func (m *partialMatch) Matches(v tree.Value) bool {
	obj, ok := v.(tree.Object)
	if !ok {
		return false
	}
	for _, f := range m.fields {
		if !f.pred(obj[f.key]) {
			return false
		}
	}
	return true
}
