// Package observer holds pattern subscriptions and notifies them of the
// entries of a committed diff.
//
// A pattern is a dot path in which any segment may be "*". A pattern
// matches an entry path when both have the same number of segments and
// every non-wildcard segment is equal, so "party.*.hp" matches "party.0.hp"
// but neither "party.0" nor "party.0.hp.max".
//
// A Registry is not safe for concurrent use.
package observer

import (
	"fmt"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/tree"
)

// Context describes the change that triggered a callback.
type Context struct {
	// Path is the concrete path of the changed entry.
	Path string

	// Pattern is the subscription pattern that matched.
	Pattern string

	// Entry is the diff entry being delivered.
	Entry diff.Entry

	// Diff is the whole diff of the transaction.
	Diff diff.Diff
}

// Callback receives the new and old value at the changed path. Either may
// be nil when the location was added or removed.
type Callback func(newValue, oldValue tree.Value, ctx Context)

// Unsubscribe removes a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

type subscription struct {
	id      uint64
	pattern path.Path
	raw     string
	cb      Callback
	active  bool
}

// Registry is an ordered set of subscriptions.
type Registry struct {
	nextID uint64
	subs   []*subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Observe registers cb for entries matching pattern.
func (r *Registry) Observe(pattern string, cb Callback) (Unsubscribe, error) {
	if cb == nil {
		return nil, fmt.Errorf("observe %q: callback is nil", pattern)
	}
	p, err := path.ParsePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	r.nextID++
	sub := &subscription{id: r.nextID, pattern: p, raw: pattern, cb: cb, active: true}
	r.subs = append(r.subs, sub)

	return func() { r.remove(sub) }, nil
}

func (r *Registry) remove(sub *subscription) {
	if !sub.active {
		return
	}
	sub.active = false

	kept := make([]*subscription, 0, len(r.subs))
	for _, s := range r.subs {
		if s.id != sub.id {
			kept = append(kept, s)
		}
	}
	r.subs = kept
}

// Len returns the number of live subscriptions.
func (r *Registry) Len() int {
	return len(r.subs)
}

// Notify delivers each entry of d, in order, to every matching
// subscription in registration order, and returns the number of callbacks
// invoked.
//
// Subscriptions are snapshotted when Notify starts: one added by a callback
// first sees the next Notify, and one removed by a callback receives
// nothing further. The values passed to callbacks are the entry's To and
// From, which equal reading the entry path from newState and oldState; for
// a length entry they are the array lengths.
func (r *Registry) Notify(oldState, newState tree.Value, d diff.Diff) int {
	if len(r.subs) == 0 || d.Empty() {
		return 0
	}

	snapshot := make([]*subscription, len(r.subs))
	copy(snapshot, r.subs)

	calls := 0
	for _, e := range d.Entries {
		var entryPath string
		for _, sub := range snapshot {
			if !sub.active || !path.Match(sub.pattern, e.Path) {
				continue
			}
			if entryPath == "" {
				entryPath = e.Path.String()
			}
			sub.cb(e.To, e.From, Context{Path: entryPath, Pattern: sub.raw, Entry: e, Diff: d})
			calls++
		}
	}
	return calls
}
