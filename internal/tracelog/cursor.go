package tracelog

// Cursor iterates over a process's events with one token of pushback.
type Cursor struct {
	events []Event
	pos    int
}

func NewCursor(events []Event) *Cursor {
	return &Cursor{events: events}
}

// Next returns the next event and advances.
func (c *Cursor) Next() (*Event, bool) {
	if c.pos >= len(c.events) {
		return nil, false
	}
	ev := &c.events[c.pos]
	c.pos++
	return ev, true
}

// Peek returns the next event without advancing.
func (c *Cursor) Peek() (*Event, bool) {
	if c.pos >= len(c.events) {
		return nil, false
	}
	return &c.events[c.pos], true
}

// Backup un-reads the last event returned by Next.
func (c *Cursor) Backup() {
	if c.pos > 0 {
		c.pos--
	}
}

// Pos is the number of events consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

// Last returns the most recently consumed event.
func (c *Cursor) Last() (*Event, bool) {
	if c.pos == 0 {
		return nil, false
	}
	return &c.events[c.pos-1], true
}
