package harness

import (
	"fmt"

	"github.com/roach88/statetree/internal/mutation"
	"github.com/roach88/statetree/internal/query"
	"github.com/roach88/statetree/internal/tree"
)

// BuildMutations turns a step's specs into mutations.
func BuildMutations(specs []MutationSpec) ([]mutation.Mutation, error) {
	out := make([]mutation.Mutation, 0, len(specs))
	for i, spec := range specs {
		m, err := buildMutation(spec)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func buildMutation(spec MutationSpec) (mutation.Mutation, error) {
	switch {
	case spec.Set != nil:
		v, err := tree.FromGo(spec.Set.Value)
		if err != nil {
			return mutation.Mutation{}, fmt.Errorf("set %s: %w", spec.Set.Path, err)
		}
		return mutation.Set(spec.Set.Path, v), nil

	case spec.Push != nil:
		v, err := tree.FromGo(spec.Push.Value)
		if err != nil {
			return mutation.Mutation{}, fmt.Errorf("push %s: %w", spec.Push.Path, err)
		}
		return mutation.Push(spec.Push.Path, v), nil

	case spec.RemoveKey != nil:
		return mutation.RemoveKey(spec.RemoveKey.Path), nil

	case spec.RemoveWhere != nil:
		pred, err := removePredicate(spec.RemoveWhere)
		if err != nil {
			return mutation.Mutation{}, fmt.Errorf("remove_where %s: %w", spec.RemoveWhere.Path, err)
		}
		return mutation.RemoveWhere(spec.RemoveWhere.Path, pred), nil

	case spec.Update != nil:
		fn, err := updateFunc(spec.Update)
		if err != nil {
			return mutation.Mutation{}, fmt.Errorf("update %s: %w", spec.Update.Path, err)
		}
		return mutation.Update(spec.Update.Path, fn), nil
	}
	return mutation.Mutation{}, fmt.Errorf("empty mutation spec")
}

func removePredicate(op *RemoveWhereOp) (mutation.Predicate, error) {
	if op.Match != nil {
		filter := query.Match(query.Fields(op.Match))
		return filter.Matches, nil
	}
	want, err := tree.FromGo(op.Equals)
	if err != nil {
		return nil, err
	}
	return mutation.Predicate(query.Eq(want)), nil
}

func updateFunc(op *UpdateOp) (mutation.UpdateFunc, error) {
	switch op.Op {
	case UpdateIncrement, UpdateDecrement:
		by := tree.Value(tree.Int(1))
		if op.By != nil {
			v, err := tree.FromGo(op.By)
			if err != nil {
				return nil, err
			}
			by = v
		}
		if _, ok := tree.Number(by); !ok {
			return nil, fmt.Errorf("by must be a number, got %s", tree.KindOf(by))
		}
		if op.Op == UpdateDecrement {
			by = negate(by)
		}
		return func(cur tree.Value) (tree.Value, error) {
			return add(cur, by)
		}, nil

	case UpdateToggle:
		return func(cur tree.Value) (tree.Value, error) {
			b, ok := cur.(tree.Bool)
			if !ok {
				return nil, fmt.Errorf("toggle needs a bool, got %s", tree.KindOf(cur))
			}
			return !b, nil
		}, nil

	case UpdateAppend:
		suffix, ok := op.Value.(string)
		if !ok {
			return nil, fmt.Errorf("append value must be a string")
		}
		return func(cur tree.Value) (tree.Value, error) {
			s, ok := cur.(tree.String)
			if !ok {
				return nil, fmt.Errorf("append needs a string, got %s", tree.KindOf(cur))
			}
			return s + tree.String(suffix), nil
		}, nil
	}
	return nil, fmt.Errorf("unknown update op %q", op.Op)
}

// add keeps Int + Int as Int; any Float operand makes the result Float.
func add(cur, by tree.Value) (tree.Value, error) {
	if a, ok := cur.(tree.Int); ok {
		if b, ok := by.(tree.Int); ok {
			return a + b, nil
		}
	}
	a, ok := tree.Number(cur)
	if !ok {
		return nil, fmt.Errorf("increment needs a number, got %s", tree.KindOf(cur))
	}
	b, _ := tree.Number(by)
	return tree.FromGo(a + b)
}

func negate(v tree.Value) tree.Value {
	switch n := v.(type) {
	case tree.Int:
		return -n
	case tree.Float:
		return -n
	}
	return v
}
