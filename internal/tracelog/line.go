package tracelog

import (
	"fmt"
	"strconv"
	"strings"
)

const linePrefix = "0: "

// ParseLine decodes a single trace line. lineNo is only used for error
// reporting and is stored on the event.
func ParseLine(line string, lineNo int) (Event, error) {
	ev := Event{Index: -1, Line: lineNo}

	rest, ok := strings.CutPrefix(line, linePrefix)
	if !ok {
		return ev, &LineError{Line: lineNo, Err: fmt.Errorf("%w: missing %q marker", ErrBadHeader, linePrefix)}
	}

	var field string
	var err error

	if field, rest, err = cutField(rest, ',', "pid"); err != nil {
		return ev, &LineError{Line: lineNo, Err: err}
	}
	if ev.Pid, err = strconv.ParseInt(field, 10, 64); err != nil {
		return ev, &LineError{Line: lineNo, Err: fmt.Errorf("%w: pid %q", ErrBadHeader, field)}
	}

	if field, rest, err = cutField(rest, ',', "cpu"); err != nil {
		return ev, &LineError{Line: lineNo, Err: err}
	}
	cpu, err := strconv.ParseUint(field, 10, 32)
	if err != nil {
		return ev, &LineError{Line: lineNo, Err: fmt.Errorf("%w: cpu %q", ErrBadHeader, field)}
	}
	ev.CPU = uint32(cpu)

	if field, rest, err = cutField(rest, ',', "seconds"); err != nil {
		return ev, &LineError{Line: lineNo, Err: err}
	}
	sec, err := strconv.ParseInt(field, 10, 64)
	if err != nil || sec < 0 {
		return ev, &LineError{Line: lineNo, Err: fmt.Errorf("%w: seconds %q", ErrBadHeader, field)}
	}

	if field, rest, err = cutField(rest, '!', "nanoseconds"); err != nil {
		return ev, &LineError{Line: lineNo, Err: err}
	}
	nsec, err := strconv.ParseInt(field, 10, 64)
	if err != nil || nsec < 0 {
		return ev, &LineError{Line: lineNo, Err: fmt.Errorf("%w: nanoseconds %q", ErrBadHeader, field)}
	}
	ev.Timestamp = sec*1_000_000_000 + nsec

	if err := parseTag(&ev, rest); err != nil {
		return ev, &LineError{Line: lineNo, Err: err}
	}
	return ev, nil
}

func cutField(s string, sep byte, name string) (string, string, error) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return "", s, fmt.Errorf("%w: no %q after %s", ErrBadHeader, sep, name)
	}
	return s[:i], s[i+1:], nil
}

// parseTag splits "Tag|payload", "Tag[n]chunk" or a bare "Tag".
func parseTag(ev *Event, s string) error {
	pipe := strings.IndexByte(s, '|')
	bracket := strings.IndexByte(s, '[')

	if bracket >= 0 && (pipe < 0 || bracket < pipe) {
		closing := strings.IndexByte(s[bracket:], ']')
		if closing < 0 {
			return fmt.Errorf("%w: unterminated index in %q", ErrBadHeader, s)
		}
		closing += bracket
		idx, err := strconv.Atoi(s[bracket+1 : closing])
		if err != nil || idx < 0 {
			return fmt.Errorf("%w: bad index in %q", ErrBadHeader, s)
		}
		ev.Name = s[:bracket]
		ev.Tag = LookupTag(ev.Name)
		if !ev.Tag.Indexable() {
			return fmt.Errorf("%w: tag %q does not take an index", ErrBadHeader, ev.Name)
		}
		ev.Index = idx
		ev.Payload = s[closing+1:]
		return nil
	}

	if pipe < 0 {
		ev.Name = s
	} else {
		ev.Name = s[:pipe]
		ev.Payload = s[pipe+1:]
	}
	ev.Tag = LookupTag(ev.Name)
	return nil
}
