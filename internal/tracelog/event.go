package tracelog

// Event is one decoded trace line.
type Event struct {
	Pid int64
	CPU uint32
	// Timestamp is sec*1e9+nsec as written by the tracer. The ingestor
	// rewrites it relative to the first event of the log.
	Timestamp int64
	Tag       Tag
	// Name is the raw tag text, kept for diagnostics on unknown tags.
	Name string
	// Index is the [n] chunk number, or -1 for the TAG|payload form.
	Index   int
	Payload string
	Line    int
}

// Indexed reports whether the event used the TAG[n]chunk form.
func (e *Event) Indexed() bool {
	return e.Index >= 0
}
