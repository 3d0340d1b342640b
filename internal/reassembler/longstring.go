package reassembler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrzor/etrace-parser/internal/tracelog"
)

var (
	// ErrMalformedChunks is returned for gaps or reordering in a chunk run.
	ErrMalformedChunks = errors.New("malformed chunk sequence")
	// ErrMissingTerminator is returned when a chunk run is not closed.
	ErrMissingTerminator = errors.New("missing terminator")
)

// ReadLongString reads one long-string field identified by tag from cur.
// present is false when the next event does not belong to the field; in that
// case nothing is consumed.
func ReadLongString(cur *tracelog.Cursor, tag tracelog.Tag) (value string, present bool, err error) {
	end := tag.End()
	first, ok := cur.Peek()
	if !ok {
		return "", false, nil
	}

	switch {
	case first.Tag == end:
		cur.Next()
		return "", true, nil
	case first.Tag != tag:
		return "", false, nil
	case !first.Indexed():
		cur.Next()
		if next, ok := cur.Peek(); ok && next.Tag == end {
			cur.Next()
		}
		return first.Payload, true, nil
	}

	var b strings.Builder
	want := 0
	for {
		ev, ok := cur.Next()
		if !ok {
			return "", true, fmt.Errorf("%w: %s ended after %d chunks", ErrMissingTerminator, tag, want)
		}
		switch {
		case ev.Tag == end:
			return b.String(), true, nil
		case ev.Tag != tag:
			cur.Backup()
			return "", true, fmt.Errorf("%w: %s interrupted by %s at line %d", ErrMissingTerminator, tag, ev.Name, ev.Line)
		case !ev.Indexed():
			return "", true, fmt.Errorf("%w: unindexed %s inside a chunk run at line %d", ErrMalformedChunks, tag, ev.Line)
		case ev.Index != want:
			return "", true, fmt.Errorf("%w: %s chunk %d where %d was expected at line %d", ErrMalformedChunks, tag, ev.Index, want, ev.Line)
		}
		b.WriteString(ev.Payload)
		want++
	}
}
