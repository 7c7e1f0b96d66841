package store

import (
	"log/slog"
	"time"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistory enables or disables the in-memory transaction history.
// Default: enabled.
func WithHistory(enabled bool) Option {
	return func(s *Store) {
		s.historyEnabled = enabled
	}
}

// WithHistoryLimit keeps only the most recent n records. n <= 0 means
// unlimited (the default).
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		s.historyLimit = n
	}
}

// WithTimeSource sets the clock used for record timestamps.
// Default: time.Now. Tests use a fixed time for byte-stable output.
func WithTimeSource(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithClock sets the logical clock that numbers records. Default: a new
// clock starting at 0.
func WithClock(c *Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithCommitHook registers fn to receive every committed Record, after the
// history append and before observers run. Hooks run whether or not
// history is enabled. A hook that calls Dispatch is rejected like an
// observer would be; use Defer instead.
func WithCommitHook(fn func(Record)) Option {
	return func(s *Store) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// WithComponentIndex enables the component index over the collection at
// collectionPath at construction. An invalid path is logged and ignored;
// call EnableComponentIndex to get the error.
func WithComponentIndex(collectionPath string) Option {
	return func(s *Store) {
		s.pendingIndex = &collectionPath
	}
}

// WithMetrics enables or disables OpenTelemetry instruments.
// Default: enabled.
func WithMetrics(enabled bool) Option {
	return func(s *Store) {
		s.metrics.enabled = enabled
	}
}
