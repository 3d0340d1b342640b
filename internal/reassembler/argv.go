package reassembler

import (
	"fmt"
	"strings"

	"github.com/mrzor/etrace-parser/internal/tracelog"
)

// ArgvCollector accumulates A[n] chunks into an argument vector.
type ArgvCollector struct {
	args    []string
	last    int
	started bool
}

// Add folds one A[n] event into the vector.
func (c *ArgvCollector) Add(ev *tracelog.Event) error {
	if ev.Tag != tracelog.TagArg || !ev.Indexed() {
		return fmt.Errorf("%w: %s is not an argument chunk", ErrMalformedChunks, ev.Name)
	}
	chunk := strings.TrimRight(ev.Payload, "\x00")

	switch {
	case !c.started && ev.Index == 0:
		c.started = true
		c.args = append(c.args, "")
	case c.started && ev.Index == c.last:
	case c.started && ev.Index == c.last+1:
		c.args = append(c.args, "")
	default:
		return fmt.Errorf("%w: argument %d after %d at line %d", ErrMalformedChunks, ev.Index, c.last, ev.Line)
	}
	c.last = ev.Index
	c.args[len(c.args)-1] += chunk
	return nil
}

// Args returns the collected vector. It never returns nil.
func (c *ArgvCollector) Args() []string {
	out := make([]string, len(c.args))
	copy(out, c.args)
	return out
}

// ReadArgv consumes A[n] events up to and including End_of_args.
func ReadArgv(cur *tracelog.Cursor) ([]string, error) {
	var c ArgvCollector
	for {
		ev, ok := cur.Next()
		if !ok {
			return nil, fmt.Errorf("%w: log ended before End_of_args", ErrMissingTerminator)
		}
		switch ev.Tag {
		case tracelog.TagEndOfArgs:
			return c.Args(), nil
		case tracelog.TagArg:
			if err := c.Add(ev); err != nil {
				return nil, err
			}
		default:
			cur.Backup()
			return nil, fmt.Errorf("%w: %s before End_of_args at line %d", ErrMissingTerminator, ev.Name, ev.Line)
		}
	}
}
