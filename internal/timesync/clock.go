package timesync

// Clock converts tracer timestamps into offsets from the first event of the
// log and remembers the latest one seen.
type Clock struct {
	base    int64
	started bool
	last    int64
}

// NewClock creates a clock with no reference point yet.
func NewClock() *Clock {
	return &Clock{}
}

// Observe records an absolute tracer timestamp and returns it relative to
// the first observed one. Lines reordered across CPUs may come out negative.
func (c *Clock) Observe(absolute int64) int64 {
	if !c.started {
		c.base = absolute
		c.started = true
	}
	rel := absolute - c.base
	if rel > c.last {
		c.last = rel
	}
	return rel
}

// Last returns the latest relative timestamp observed so far. It is the end
// boundary used when buffers are flushed.
func (c *Clock) Last() int64 {
	return c.last
}

// Base returns the absolute timestamp of the first event, or 0.
func (c *Clock) Base() int64 {
	return c.base
}
