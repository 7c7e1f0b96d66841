// Package mutation builds inert, reusable descriptions of state changes.
//
// A Mutation carries its kind, its write path, a fixed human-readable
// description and a pure apply function. Builders never touch state and
// never panic: a malformed path is recorded and reported when the mutation
// is applied.
package mutation

import (
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// Kind names a mutation primitive.
type Kind string

const (
	KindSet         Kind = "set"
	KindUpdate      Kind = "update"
	KindPush        Kind = "push"
	KindRemoveWhere Kind = "removeWhere"
	KindRemoveKey   Kind = "removeKey"
)

// Mutation is one state change. The zero value is not usable; build
// mutations with Set, Update, Push, RemoveWhere or RemoveKey.
type Mutation struct {
	Kind        Kind
	Path        string
	Description string

	parsed path.Path
	err    error
	apply  func(state tree.Value, p path.Path) (tree.Value, error)
}

// Info is the serializable part of a Mutation, kept in transaction history.
type Info struct {
	Kind        Kind   `json:"kind"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Info returns the serializable summary of m.
func (m Mutation) Info() Info {
	return Info{Kind: m.Kind, Path: m.Path, Description: m.Description}
}

// Err returns the error recorded when the mutation was built, if any.
func (m Mutation) Err() error {
	return m.err
}

// Apply returns the state produced by applying m to state. The input is
// never modified; on error the returned state is nil.
func (m Mutation) Apply(state tree.Value) (tree.Value, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.apply == nil {
		return nil, &Error{Code: ErrCodeInvalidValue, Kind: m.Kind, Path: m.Path, Message: "mutation was not built by a constructor"}
	}
	return m.apply(state, m.parsed)
}

func build(kind Kind, p string, description string, apply func(tree.Value, path.Path) (tree.Value, error)) Mutation {
	parsed, err := path.Parse(p)
	return Mutation{
		Kind:        kind,
		Path:        p,
		Description: description,
		parsed:      parsed,
		err:         err,
		apply:       apply,
	}
}
