package vault

// Clock is the explicitly-advanced logical time source auctions run
// against. Time never moves on its own: the host ticks the clock, and
// expiry and extension checks are pure functions of the last-observed
// value, so any auction scenario can be reconstructed deterministically.
//
// One tick corresponds to one second of vault time; the default policy's
// two-day auction is 172800 ticks.
//
// Not safe for concurrent use. The registry is the single writer and the
// only reader.
type Clock struct {
	now uint64
}

// NewClock creates a clock at time 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock at a specific time. Used when resuming from
// a persisted state.
func NewClockAt(now uint64) *Clock {
	return &Clock{now: now}
}

// Now returns the current logical time.
func (c *Clock) Now() uint64 {
	return c.now
}

// Advance moves the clock forward by delta ticks.
func (c *Clock) Advance(delta uint64) uint64 {
	c.now += delta
	return c.now
}
