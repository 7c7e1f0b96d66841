package path

import "github.com/roach88/statetree/internal/tree"

// Get returns the value at p, or nil if any segment is missing. Wildcard
// segments resolve to absent here; use Resolve for pattern reads.
func Get(v tree.Value, p Path) tree.Value {
	cur := v
	for _, seg := range p {
		cur = step(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Has reports whether a value (including Null) exists at p.
func Has(v tree.Value, p Path) bool {
	return Get(v, p) != nil
}

// Resolve reads p allowing "*" segments. A wildcard maps the remainder of
// the path over every element of the array at that position and flattens
// the results one level; absent results are skipped. A wildcard against a
// non-array yields absent. Without wildcards Resolve equals Get.
func Resolve(v tree.Value, p Path) tree.Value {
	cur := v
	for i, seg := range p {
		if seg.Kind != KindWildcard {
			cur = step(cur, seg)
			if cur == nil {
				return nil
			}
			continue
		}

		arr, ok := cur.(tree.Array)
		if !ok {
			return nil
		}
		rest := p[i+1:]
		out := tree.Array{}
		for _, elem := range arr {
			switch r := Resolve(elem, rest).(type) {
			case nil:
			case tree.Array:
				out = append(out, r...)
			default:
				out = append(out, r)
			}
		}
		return out
	}
	return cur
}

// step reads one concrete segment from cur.
func step(cur tree.Value, seg Segment) tree.Value {
	switch c := cur.(type) {
	case tree.Object:
		if seg.Kind == KindWildcard {
			return nil
		}
		v, ok := c[seg.objectKey()]
		if !ok {
			return nil
		}
		return v
	case tree.Array:
		if seg.Kind != KindIndex || seg.Index < 0 || seg.Index >= len(c) {
			return nil
		}
		return c[seg.Index]
	default:
		return nil
	}
}
