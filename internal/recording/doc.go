// Package recording persists store sessions to SQLite for later inspection
// and replay.
//
// A session starts with a snapshot of the initial state at seq 0. Every
// committed store.Record is appended with its mutation summaries and its
// diff, both as RFC 8785 canonical JSON. Replay rebuilds the final state by
// applying the recorded diffs in seq order and checks it against the latest
// snapshot by content hash.
//
// # Ordering
//
// All reads order by seq ASC; sessions order by created_at, then id
// COLLATE BINARY. Seq comes from the store's logical clock, never from
// timestamps.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// The recorder is a collaborator tool. It is not a write-ahead log for the
// store, and a crash between a commit and its WriteRecord loses that record.
package recording
