package output

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

const flushSize = 256 << 10

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ArrayWriter streams values as the elements of one JSON array, one element
// per line.
type ArrayWriter struct {
	stream *jsoniter.Stream
	count  int
	closed bool
}

func NewArrayWriter(w io.Writer) *ArrayWriter {
	stream := json.BorrowStream(w)
	stream.WriteArrayStart()
	stream.WriteRaw("\n")
	return &ArrayWriter{stream: stream}
}

// Write appends one element.
func (a *ArrayWriter) Write(v interface{}) error {
	if a.count > 0 {
		a.stream.WriteMore()
		a.stream.WriteRaw("\n")
	}
	a.stream.WriteVal(v)
	a.count++
	if a.stream.Error != nil {
		return fmt.Errorf("failed to encode element %d: %w", a.count, a.stream.Error)
	}
	if a.stream.Buffered() >= flushSize {
		if err := a.stream.Flush(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// Count returns the number of elements written.
func (a *ArrayWriter) Count() int {
	return a.count
}

// Close terminates the array and flushes. It does not close the underlying
// writer.
func (a *ArrayWriter) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	defer json.ReturnStream(a.stream)
	if a.count > 0 {
		a.stream.WriteRaw("\n")
	}
	a.stream.WriteArrayEnd()
	a.stream.WriteRaw("\n")
	if err := a.stream.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
