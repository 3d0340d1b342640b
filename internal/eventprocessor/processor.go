package eventprocessor

import (
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mrzor/etrace-parser/internal/reassembler"
	"github.com/mrzor/etrace-parser/internal/record"
	"github.com/mrzor/etrace-parser/internal/tracelog"
)

// Processor turns the sorted event list of one process into exec
// incarnations and the syscalls the reconstruction pass needs.
type Processor struct {
	fs  afero.Fs
	log *zap.Logger
}

// NewProcessor creates a processor. fs is used to stat opened files and may
// be nil to skip stat entirely.
func NewProcessor(fs afero.Fs, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{fs: fs, log: logger}
}

// procState is the per-call state of Process.
type procState struct {
	pid    int64
	cur    *tracelog.Cursor
	res    *Result
	entry  *record.Entry
	exited bool
	exitAt int64
}

func (s *procState) ref() record.ExecRef {
	return s.entry.Ref()
}

func (s *procState) addSyscall(sc record.Syscall) {
	sc.Pid = s.pid
	s.res.Syscalls = append(s.res.Syscalls, sc)
}

// Process runs the state machine over events, which must belong to pid and
// be sorted by time. end is the boundary used for processes still alive and
// for Exit syscalls.
func (p *Processor) Process(pid int64, events []tracelog.Event, end int64) *Result {
	start := end
	if len(events) > 0 {
		start = events[0].Timestamp
	}

	placeholder := record.NewPlaceholder(pid, start)
	s := &procState{
		pid:   pid,
		cur:   tracelog.NewCursor(events),
		entry: placeholder,
		res: &Result{
			Pid:     pid,
			Entries: []*record.Entry{placeholder},
			start:   start,
			end:     end,
		},
	}

	for {
		before := s.cur.Pos()
		ev, ok := s.cur.Next()
		if !ok {
			break
		}
		if err := p.dispatch(s, ev); err != nil {
			s.res.Processed = before
			s.res.Err = &CorruptionError{Pid: pid, Line: ev.Line, Err: err}
			return s.res
		}
	}
	s.res.Processed = s.cur.Pos()

	last := end
	if s.exited {
		last = s.exitAt
	}
	s.entry.Elapsed = max(last-s.entry.Start, 0)
	return s.res
}

func (p *Processor) dispatch(s *procState, ev *tracelog.Event) error {
	switch ev.Tag {
	case tracelog.TagNewProc:
		return p.handleExec(s, ev)
	case tracelog.TagSchedFork:
		return p.handleFork(s, ev, 0)
	case tracelog.TagSysClone:
		return p.handleClone(s, ev)
	case tracelog.TagClose:
		return p.handleClose(s, ev)
	case tracelog.TagPipe:
		return p.handlePipe(s, ev)
	case tracelog.TagDup:
		return p.handleDup(s, ev)
	case tracelog.TagOpen:
		return p.handleOpen(s, ev)
	case tracelog.TagRenameFrom, tracelog.TagRename2From:
		return p.handleRename(s, ev)
	case tracelog.TagLinkFrom, tracelog.TagLinkatFrom:
		return p.handleLink(s, ev)
	case tracelog.TagSymlink:
		return p.handleSymlink(s, ev)
	case tracelog.TagExit:
		return p.handleExit(s, ev)
	case tracelog.TagMount, tracelog.TagUmount:
		return p.handleMount(s, ev)
	case tracelog.TagRenameTo, tracelog.TagLinkTo:
		return p.handleStrayTarget(s, ev)
	case tracelog.TagSysCloneFailed, tracelog.TagRenameFailed, tracelog.TagLinkFailed,
		tracelog.TagMountFailed, tracelog.TagUmountFailed:
		return nil
	default:
		s.res.Kinds.Unknown++
		p.log.Warn("skipping unexpected event",
			zap.Int64("pid", s.pid),
			zap.Int("line", ev.Line),
			zap.String("tag", ev.Name))
		return nil
	}
}

// readSized reads a long string and checks it against its declared size.
func readSized(s *procState, tag tracelog.Tag, want uint64) (string, error) {
	value, _, err := reassembler.ReadLongString(s.cur, tag)
	if err != nil {
		return "", err
	}
	if uint64(len(value)) != want {
		line := 0
		if ev, ok := s.cur.Last(); ok {
			line = ev.Line
		}
		return "", fmt.Errorf("%w: %s is %d bytes, %d declared (line %d)", ErrSizeMismatch, tag, len(value), want, line)
	}
	return value, nil
}
