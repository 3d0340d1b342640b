package tracelog

import (
	"errors"
	"fmt"
)

var (
	// ErrBadHeader is returned when the fixed line header cannot be decoded.
	ErrBadHeader = errors.New("malformed event header")
	// ErrBadArgument is returned for payload tokens that are not key=value
	// or whose value is not an integer.
	ErrBadArgument = errors.New("malformed event argument")
	// ErrMissingArgument is returned when a required key is absent.
	ErrMissingArgument = errors.New("missing event argument")
)

// LineError ties a decoding error to its source line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
