// Package store composes the state tree primitives behind one handle.
//
// A Store owns the current state, an observer registry, an optional
// in-memory transaction history and an optional component index. State
// changes only through Dispatch, which applies a mutation list atomically,
// records it, patches the component index and then notifies observers, in
// that order and to completion before returning. ReplaceState swaps the
// state wholesale without diffing, history or notification.
//
// Reentrancy: a Dispatch issued from inside an observer callback on the
// same store is rejected with ErrCodeReentrantDispatch. Callbacks that need
// follow-on changes use Defer, which queues the mutations until the current
// notification finishes and then dispatches them in order.
//
// State values handed out by the store are shared, not copied. Callers must
// treat them as read-only; use Snapshot for a private deep copy.
//
// A Store is not safe for concurrent use.
package store
