package store

// Clock issues the sequence numbers stamped on committed records. Numbers
// start at 1 and never repeat within a store, so history order survives
// replay unchanged.
//
// Like Store, a Clock is not safe for concurrent use.
type Clock struct {
	last int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose first Next is start+1, for a store that
// continues a recorded session.
func NewClockAt(start int64) *Clock {
	return &Clock{last: start}
}

// Next advances the clock.
func (c *Clock) Next() int64 {
	c.last++
	return c.last
}

// Current is the last number issued, 0 before the first commit.
func (c *Clock) Current() int64 {
	return c.last
}
