package tree

import (
	"math"
	"reflect"
)

// Equal reports whether a and b are deeply equal by value.
// Two absent values are equal. Numbers compare by value, so Int(1) equals
// Float(1).
func Equal(a, b Value) bool {
	if Same(a, b) {
		return true
	}

	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int, Float:
		return numbersEqual(a, b)
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, aElem := range av {
			bElem, exists := bv[k]
			if !exists || !Equal(aElem, bElem) {
				return false
			}
		}
		return true
	}
	return false
}

// Same reports reference identity: the same map for Objects, the same
// backing array and length for Arrays, and value equality for scalars
// (numbers compare across Int and Float).
//
// Structural sharing guarantees that a subtree a write did not touch is
// Same before and after the write.
func Same(a, b Value) bool {
	switch av := a.(type) {
	case Object:
		bv, ok := b.(Object)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == nil && bv == nil
		}
		return reflect.ValueOf(av).UnsafePointer() == reflect.ValueOf(bv).UnsafePointer()
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		// Empty arrays carry no subtree to share.
		if len(av) == 0 {
			return true
		}
		return &av[0] == &bv[0]
	case nil:
		return b == nil
	case Int, Float:
		return numbersEqual(a, b)
	default:
		return a == b
	}
}

func numbersEqual(a, b Value) bool {
	switch av := a.(type) {
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return floatIsInt(float64(bv), int64(av))
		}
	case Float:
		switch bv := b.(type) {
		case Int:
			return floatIsInt(float64(av), int64(bv))
		case Float:
			return av == bv
		}
	}
	return false
}

// floatIsInt reports whether f is exactly the integer i.
func floatIsInt(f float64, i int64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && int64(f) == i
}

// Clone returns a deep copy of v that shares no containers with it.
// Time-travel callers capture Clone(store.State()) before later dispatches.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	default:
		return v
	}
}
