package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/mrzor/etrace-parser/internal/record"
	"github.com/mrzor/etrace-parser/internal/stats"
)

// ErrSizeMismatch is returned when a string's length differs from the size
// declared by its owning event.
var ErrSizeMismatch = errors.New("declared size mismatch")

// CorruptionError reports the event at which a process's sequence could no
// longer be interpreted.
type CorruptionError struct {
	Pid  int64
	Line int
	Err  error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("pid %d corrupted at line %d: %v", e.Pid, e.Line, e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// Result is everything one process's event sequence produced.
type Result struct {
	Pid      int64
	Entries  []*record.Entry
	Syscalls []record.Syscall
	Links    []record.ParentLink
	Ops      []record.Op
	Kinds    stats.Kinds
	// Processed is the number of events consumed before the end of the
	// sequence or before the corrupted event.
	Processed int
	// Err is a *CorruptionError when the sequence could not be interpreted.
	// Callers must call Recover before using the other fields.
	Err error

	start int64
	end   int64
}

// Recovered reports whether Recover has to be applied.
func (r *Result) Recovered() bool {
	return r.Err != nil
}

// Recover reduces a corrupted result to a process that exited right after
// being forked: a single placeholder entry and one synthetic exit.
func (r *Result) Recover() {
	placeholder := record.NewPlaceholder(r.Pid, r.start)
	placeholder.Elapsed = r.end - r.start
	r.Entries = []*record.Entry{placeholder}
	r.Syscalls = []record.Syscall{{Kind: record.SyscallExit, Pid: r.Pid, Time: r.end}}
	r.Links = nil
	r.Ops = []record.Op{record.NewExitOp(placeholder.Ref(), r.end, 0, true)}
	r.Kinds = stats.Kinds{}
}
