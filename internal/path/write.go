package path

import "github.com/roach88/statetree/internal/tree"

// Set returns a copy of root with val stored at p. Only the containers on
// the path are copied; every other subtree is shared with root.
//
// Arrays accept an index equal to their length as an append. Set never
// creates intermediate containers: an absent parent is MISSING_PARENT and a
// scalar parent is TYPE_MISMATCH. If val is already Same as the current
// value, root is returned unchanged.
func Set(root tree.Value, p Path, val tree.Value) (tree.Value, error) {
	if val == nil {
		return nil, &Error{Code: ErrCodeTypeMismatch, Path: p.String(), Message: "cannot store an absent value"}
	}
	return setAt(root, p, 0, val)
}

func setAt(cur tree.Value, p Path, depth int, val tree.Value) (tree.Value, error) {
	if depth == len(p) {
		return val, nil
	}

	seg := p[depth]
	if seg.Kind == KindWildcard {
		return nil, newError(ErrCodeWildcardWrite, p, seg, "wildcard is not allowed in a write path")
	}
	last := depth == len(p)-1

	switch c := cur.(type) {
	case tree.Object:
		key := seg.objectKey()
		child, exists := c[key]
		if !exists && !last {
			return nil, newError(ErrCodeMissingParent, p, p[depth+1], "parent %q does not exist", p[:depth+1].String())
		}
		next, err := setAt(child, p, depth+1, val)
		if err != nil {
			return nil, err
		}
		if exists && tree.Same(child, next) {
			return c, nil
		}
		out := make(tree.Object, len(c)+1)
		for k, v := range c {
			out[k] = v
		}
		out[key] = next
		return out, nil

	case tree.Array:
		if seg.Kind != KindIndex {
			return nil, newError(ErrCodeTypeMismatch, p, seg, "key segment applied to an array at %q", p[:depth].String())
		}
		switch {
		case seg.Index < len(c):
			child := c[seg.Index]
			next, err := setAt(child, p, depth+1, val)
			if err != nil {
				return nil, err
			}
			if tree.Same(child, next) {
				return c, nil
			}
			out := make(tree.Array, len(c))
			copy(out, c)
			out[seg.Index] = next
			return out, nil
		case seg.Index == len(c) && last:
			out := make(tree.Array, len(c), len(c)+1)
			copy(out, c)
			return append(out, val), nil
		case seg.Index == len(c):
			return nil, newError(ErrCodeMissingParent, p, seg, "parent %q does not exist", p[:depth+1].String())
		default:
			return nil, newError(ErrCodeIndexOutOfRange, p, seg, "index %d beyond array length %d", seg.Index, len(c))
		}

	case nil:
		return nil, newError(ErrCodeMissingParent, p, seg, "parent %q does not exist", p[:depth].String())

	default:
		return nil, newError(ErrCodeTypeMismatch, p, seg, "cannot index into %s at %q", tree.KindOf(cur), p[:depth].String())
	}
}

// Delete returns a copy of root without the property named by p's last
// segment. The parent must be an Object. Deleting a key that does not exist
// returns root unchanged.
func Delete(root tree.Value, p Path) (tree.Value, error) {
	if len(p) == 0 {
		return nil, &Error{Code: ErrCodeInvalidPath, Message: "cannot delete the root"}
	}
	if p.IsPattern() {
		return nil, &Error{Code: ErrCodeWildcardWrite, Path: p.String(), Segment: "*", Message: "wildcard is not allowed in a write path"}
	}

	parentPath := p.Parent()
	parent := Get(root, parentPath)
	obj, ok := parent.(tree.Object)
	if !ok {
		if parent == nil {
			return nil, newError(ErrCodeMissingParent, p, p.Last(), "parent %q does not exist", parentPath.String())
		}
		return nil, newError(ErrCodeTypeMismatch, p, p.Last(), "parent %q is %s, not an object", parentPath.String(), tree.KindOf(parent))
	}

	key := p.Last().objectKey()
	if _, exists := obj[key]; !exists {
		return root, nil
	}
	out := make(tree.Object, len(obj))
	for k, v := range obj {
		if k != key {
			out[k] = v
		}
	}
	return Set(root, parentPath, out)
}
