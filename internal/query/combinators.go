package query

import (
	"slices"

	"github.com/roach88/statetree/internal/tree"
)

// Lt matches values strictly less than bound. Numbers compare numerically
// (Int and Float mix freely) and strings lexicographically; any other
// pairing does not match.
func Lt(bound tree.Value) Predicate {
	return func(v tree.Value) bool {
		c, ok := compare(v, bound)
		return ok && c < 0
	}
}

// Gt matches values strictly greater than bound.
func Gt(bound tree.Value) Predicate {
	return func(v tree.Value) bool {
		c, ok := compare(v, bound)
		return ok && c > 0
	}
}

// Lte matches values less than or equal to bound.
func Lte(bound tree.Value) Predicate {
	return func(v tree.Value) bool {
		c, ok := compare(v, bound)
		return ok && c <= 0
	}
}

// Gte matches values greater than or equal to bound.
func Gte(bound tree.Value) Predicate {
	return func(v tree.Value) bool {
		c, ok := compare(v, bound)
		return ok && c >= 0
	}
}

// Eq matches values equal to want by tree.Equal, so Int(1) matches Float(1).
func Eq(want tree.Value) Predicate {
	return func(v tree.Value) bool {
		return tree.Equal(v, want)
	}
}

// Neq matches values not equal to want, including absent values.
func Neq(want tree.Value) Predicate {
	return func(v tree.Value) bool {
		return !tree.Equal(v, want)
	}
}

// OneOf matches values equal to any of options.
func OneOf(options ...tree.Value) Predicate {
	opts := slices.Clone(options)
	return func(v tree.Value) bool {
		for _, o := range opts {
			if tree.Equal(v, o) {
				return true
			}
		}
		return false
	}
}

// Within matches values in the inclusive range [lo, hi].
func Within(lo, hi tree.Value) Predicate {
	return AllOf(Gte(lo), Lte(hi))
}

// AllOf matches when every predicate matches. With none it matches all.
func AllOf(preds ...Predicate) Predicate {
	ps := slices.Clone(preds)
	return func(v tree.Value) bool {
		for _, p := range ps {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// AnyOf matches when at least one predicate matches. With none it matches
// nothing.
func AnyOf(preds ...Predicate) Predicate {
	ps := slices.Clone(preds)
	return func(v tree.Value) bool {
		for _, p := range ps {
			if p(v) {
				return true
			}
		}
		return false
	}
}

// Not inverts pred.
func Not(pred Predicate) Predicate {
	return func(v tree.Value) bool {
		return !pred(v)
	}
}

// compare orders two numbers or two strings.
func compare(a, b tree.Value) (int, bool) {
	if af, ok := tree.Number(a); ok {
		bf, ok := tree.Number(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	as, ok := a.(tree.String)
	if !ok {
		return 0, false
	}
	bs, ok := b.(tree.String)
	if !ok {
		return 0, false
	}
	switch {
	case as < bs:
		return -1, true
	case as > bs:
		return 1, true
	}
	return 0, true
}

func sortKeys(keys []string) {
	slices.SortFunc(keys, tree.CompareKeys)
}
