package procbuffer

import (
	"sort"

	"github.com/mrzor/etrace-parser/internal/tracelog"
)

// Buffer is the ordered event list of one pid.
type Buffer struct {
	Pid    int64
	Events []tracelog.Event
}

// Append adds an event at the end of the buffer.
func (b *Buffer) Append(ev tracelog.Event) {
	b.Events = append(b.Events, ev)
}

// Last returns the most recently appended event, or nil.
func (b *Buffer) Last() *tracelog.Event {
	if len(b.Events) == 0 {
		return nil
	}
	return &b.Events[len(b.Events)-1]
}

// SortByTime orders events by timestamp. Events with equal timestamps keep
// their log order.
func (b *Buffer) SortByTime() {
	sort.SliceStable(b.Events, func(i, j int) bool {
		return b.Events[i].Timestamp < b.Events[j].Timestamp
	})
}
