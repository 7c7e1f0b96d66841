package store

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/statetree/internal/diff"
	"github.com/roach88/statetree/internal/mutation"
	"github.com/roach88/statetree/internal/observer"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/query"
	"github.com/roach88/statetree/internal/transaction"
	"github.com/roach88/statetree/internal/tree"
)

// Record is one committed transaction.
type Record struct {
	Seq       int64           `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Mutations []mutation.Info `json:"mutations"`
	Diff      diff.Diff       `json:"diff"`
}

// Store holds a state tree and the machinery around it.
type Store struct {
	state    tree.Value
	registry *observer.Registry
	clock    *Clock
	now      func() time.Time
	logger   *slog.Logger
	metrics  storeMetrics

	historyEnabled bool
	historyLimit   int
	history        []Record
	hooks          []func(Record)

	index        *componentIndex
	pendingIndex *string

	committing bool
	draining   bool
	deferred  deferQueue
}

// New creates a Store holding initial. A nil initial state is an empty
// object.
func New(initial tree.Value, opts ...Option) *Store {
	if initial == nil {
		initial = tree.Object{}
	}

	s := &Store{
		state:          initial,
		registry:       observer.NewRegistry(),
		clock:          NewClock(),
		now:            time.Now,
		logger:         slog.Default(),
		metrics:        storeMetrics{enabled: true},
		historyEnabled: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.pendingIndex != nil {
		if err := s.EnableComponentIndex(*s.pendingIndex); err != nil {
			s.logger.Warn("component index not enabled",
				"collection", *s.pendingIndex,
				"error", err)
		}
		s.pendingIndex = nil
	}

	return s
}

// State returns the current state. It is shared, not copied.
func (s *Store) State() tree.Value {
	return s.state
}

// Snapshot returns a deep copy of the current state, safe to keep across
// later dispatches and to hand back to ReplaceState.
func (s *Store) Snapshot() tree.Value {
	return tree.Clone(s.state)
}

// Dispatch applies mutations as one transaction.
//
// On success the record is appended to history, commit hooks run, the
// component index is updated and observers are notified, before Dispatch
// returns. On failure nothing changes. Callers must check Result.Valid.
// Deferred mutation lists queued by observers run after notification
// completes, each as its own dispatch.
func (s *Store) Dispatch(mutations ...mutation.Mutation) transaction.Result {
	res := s.dispatch(mutations)
	s.drain()
	return res
}

func (s *Store) dispatch(mutations []mutation.Mutation) transaction.Result {
	if s.committing {
		s.logger.Warn("reentrant dispatch rejected", "mutations", len(mutations))
		s.metrics.recordDispatch(outcomeReentrant, 0)
		return transaction.Fail(s.state, newReentrantError())
	}

	res := transaction.Execute(s.state, mutations)
	if !res.Valid {
		s.logger.Warn("dispatch rejected",
			"description", failedDescription(res.Err),
			"error", res.Err)
		s.metrics.recordDispatch(outcomeRejected, 0)
		return res
	}

	old := s.state
	s.state = res.State

	// Hooks, the index update and observers all see this commit alone.
	s.committing = true
	defer func() { s.committing = false }()

	rec := Record{
		Seq:       s.clock.Next(),
		Timestamp: s.now(),
		Mutations: infos(mutations),
		Diff:      res.Diff,
	}
	s.appendHistory(rec)
	for _, hook := range s.hooks {
		hook(rec)
	}

	if s.index != nil && res.Diff.Touches(s.index.collection) {
		s.updateIndex(res.Diff)
	}

	s.logger.Debug("dispatch committed",
		"seq", rec.Seq,
		"mutations", len(mutations),
		"entries", len(res.Diff.Entries))
	s.metrics.recordDispatch(outcomeCommitted, len(res.Diff.Entries))

	s.notify(old, res)
	return res
}

func (s *Store) notify(old tree.Value, res transaction.Result) {
	calls := s.registry.Notify(old, res.State, res.Diff)
	s.metrics.recordNotifications(calls)
}

// Defer queues mutations to run as a separate dispatch once the current
// commit, including its hooks and notifications, completes. Outside a notification it dispatches at once.
// Deferred dispatches have no caller to report to; failures are logged.
func (s *Store) Defer(mutations ...mutation.Mutation) {
	if s.committing || s.draining {
		s.deferred.enqueue(slices.Clone(mutations))
		return
	}
	if res := s.Dispatch(mutations...); !res.Valid {
		s.logDeferredFailure(res)
	}
}

// drain runs queued deferred lists in FIFO order. Only the outermost
// dispatch drains; lists queued while draining join the end of the queue.
func (s *Store) drain() {
	if s.committing || s.draining {
		return
	}
	s.draining = true
	defer func() { s.draining = false }()

	for {
		muts, ok := s.deferred.dequeue()
		if !ok {
			return
		}
		if res := s.dispatch(muts); !res.Valid {
			s.logDeferredFailure(res)
		}
	}
}

func (s *Store) logDeferredFailure(res transaction.Result) {
	s.logger.Error("deferred dispatch failed",
		"description", failedDescription(res.Err),
		"error", res.Err)
}

// Pending returns the number of deferred mutation lists not yet run.
func (s *Store) Pending() int {
	return s.deferred.len()
}

// Observe subscribes cb to committed changes matching pattern.
func (s *Store) Observe(pattern string, cb observer.Callback) (observer.Unsubscribe, error) {
	return s.registry.Observe(pattern, cb)
}

// Query resolves pattern against the current state; see query.Query.
func (s *Store) Query(pattern string, filter query.Filter) ([]tree.Value, error) {
	return query.Query(s.state, pattern, filter)
}

// Get returns the value at pattern in the current state, or nil.
func (s *Store) Get(pattern string) (tree.Value, error) {
	return query.Get(s.state, pattern)
}

// Has reports whether a value exists at pattern in the current state.
func (s *Store) Has(pattern string) (bool, error) {
	return query.Has(s.state, pattern)
}

// ReplaceState swaps in state wholesale. No diff is computed, nothing is
// recorded and observers are not notified; the component index, if
// enabled, is rebuilt. A nil state is an empty object.
func (s *Store) ReplaceState(state tree.Value) {
	if state == nil {
		state = tree.Object{}
	}
	s.state = state
	if s.index != nil {
		s.index.rebuild(s.state)
		s.logger.Debug("component index rebuilt", "reason", "replace state")
		s.metrics.recordIndexUpdate(false)
	}
}

// History returns the recorded transactions, oldest first. The slice is a
// copy; the records share their diffs with the store.
func (s *Store) History() []Record {
	return slices.Clone(s.history)
}

// Seq returns the sequence number of the last committed transaction.
func (s *Store) Seq() int64 {
	return s.clock.Current()
}

func (s *Store) appendHistory(rec Record) {
	if !s.historyEnabled {
		return
	}
	s.history = append(s.history, rec)
	if s.historyLimit > 0 && len(s.history) > s.historyLimit {
		drop := len(s.history) - s.historyLimit
		s.history = slices.Delete(s.history, 0, drop)
	}
}

// EnableComponentIndex indexes the object at collectionPath: for every
// entity id in it, each property key of the entity becomes a component.
// Enabling again with another path replaces the index.
func (s *Store) EnableComponentIndex(collectionPath string) error {
	p, err := path.Parse(collectionPath)
	if err != nil {
		return fmt.Errorf("enable component index: %w", err)
	}
	s.index = newComponentIndex(p)
	s.index.rebuild(s.state)
	s.logger.Debug("component index rebuilt", "reason", "enabled", "collection", collectionPath)
	s.metrics.recordIndexUpdate(false)
	return nil
}

// EntitiesWithComponent returns the ids of entities owning component,
// sorted ascending. It is empty (never nil) when the index is disabled or
// the component is unknown.
func (s *Store) EntitiesWithComponent(component string) []string {
	if s.index == nil {
		return []string{}
	}
	return s.index.lookup(component)
}

// Components returns every indexed component key, sorted.
func (s *Store) Components() []string {
	if s.index == nil {
		return []string{}
	}
	return s.index.componentKeys()
}

func (s *Store) updateIndex(d diff.Diff) {
	patched := s.index.update(s.state, d)
	if patched {
		s.logger.Debug("component index patched")
	} else {
		s.logger.Debug("component index rebuilt", "reason", "collection replaced")
	}
	s.metrics.recordIndexUpdate(patched)
}

func infos(mutations []mutation.Mutation) []mutation.Info {
	out := make([]mutation.Info, len(mutations))
	for i, m := range mutations {
		out[i] = m.Info()
	}
	return out
}

func failedDescription(err error) string {
	if _, desc, ok := transaction.FailedMutation(err); ok {
		return desc
	}
	return ""
}
