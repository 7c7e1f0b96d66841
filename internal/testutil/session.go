package testutil

import (
	"fmt"
	"sync"
	"time"
)

// FixedSessionGenerator hands out predictable recording session ids:
// "<prefix>-1", "<prefix>-2", ... so recorded sessions and their golden
// output are byte-identical between runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedSessionGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedSessionGenerator creates a generator. An empty prefix becomes
// "test-session".
func NewFixedSessionGenerator(prefix string) *FixedSessionGenerator {
	if prefix == "" {
		prefix = "test-session"
	}
	return &FixedSessionGenerator{prefix: prefix}
}

// Generate returns the next session id.
func (g *FixedSessionGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Epoch is the fixed instant deterministic time sources start from.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// FixedTime returns a time source that always reports t.
func FixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
