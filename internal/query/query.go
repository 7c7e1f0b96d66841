// Package query reads values out of a state tree by path or pattern and
// filters array results with small composable predicates.
package query

import (
	"fmt"

	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// Filter selects values from a query result.
type Filter interface {
	Matches(v tree.Value) bool
}

// Predicate is a Filter backed by a function.
type Predicate func(v tree.Value) bool

// Matches implements Filter.
func (p Predicate) Matches(v tree.Value) bool {
	return p(v)
}

// Query resolves pattern against state and returns the matching values.
//
// An array result is returned element by element; any other present value
// becomes a one-element result and an absent value an empty one. When
// filter is non-nil only the values it matches are kept. The result shares
// structure with state and must not be modified.
func Query(state tree.Value, pattern string, filter Filter) ([]tree.Value, error) {
	p, err := path.ParsePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return Values(path.Resolve(state, p), filter), nil
}

// Values applies the array-or-single rule of Query to an already resolved
// value.
func Values(resolved tree.Value, filter Filter) []tree.Value {
	var candidates []tree.Value
	switch v := resolved.(type) {
	case nil:
		return []tree.Value{}
	case tree.Array:
		candidates = v
	default:
		candidates = []tree.Value{v}
	}

	out := make([]tree.Value, 0, len(candidates))
	for _, c := range candidates {
		if filter == nil || filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the value at pattern, or nil if absent. Wildcards produce an
// Array of the flattened matches.
func Get(state tree.Value, pattern string) (tree.Value, error) {
	p, err := path.ParsePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return path.Resolve(state, p), nil
}

// Has reports whether a value (including null) exists at pattern.
func Has(state tree.Value, pattern string) (bool, error) {
	v, err := Get(state, pattern)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}
