package eventstream

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/cheggaaa/pb/v3"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"go.uber.org/zap"

	"github.com/mrzor/etrace-parser/internal/procbuffer"
	"github.com/mrzor/etrace-parser/internal/stats"
	"github.com/mrzor/etrace-parser/internal/timesync"
	"github.com/mrzor/etrace-parser/internal/tracelog"
)

// DefaultFlushMargin is the number of lines a process's buffer is kept after
// its Exit event.
const DefaultFlushMargin = 10000

const maxLineSize = 16 << 20

// BufferHandler receives buffers once they are complete. atExit is true when
// the process's Exit event was seen.
type BufferHandler interface {
	HandleBuffer(buf *procbuffer.Buffer, end int64, atExit bool) error
}

// Options tune the ingestor.
type Options struct {
	// FlushMargin is the exit deferral in lines.
	FlushMargin int
	// ContJoiner is inserted between an event's payload and each Cont part.
	ContJoiner string
	// Progress is advanced with the line count when non-nil.
	Progress *pb.ProgressBar
}

type pendingExit struct {
	pid int64
	due int
}

// Ingestor owns the per-process buffers while a log is read.
type Ingestor struct {
	handler BufferHandler
	opts    Options
	log     *zap.Logger
	stats   *stats.Stats

	buffers *procbuffer.Manager
	clock   *timesync.Clock
	exits   *linkedlistqueue.Queue // of pendingExit
	pending map[int64]bool
}

// New creates an ingestor that hands buffers to handler.
func New(handler BufferHandler, opts Options, st *stats.Stats, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if st == nil {
		st = &stats.Stats{}
	}
	if opts.FlushMargin < 0 {
		opts.FlushMargin = 0
	}
	return &Ingestor{
		handler: handler,
		opts:    opts,
		log:     logger,
		stats:   st,
		buffers: procbuffer.NewManager(),
		clock:   timesync.NewClock(),
		exits:   linkedlistqueue.New(),
		pending: make(map[int64]bool),
	}
}

// Clock exposes the relative clock, mainly for the end boundary.
func (in *Ingestor) Clock() *timesync.Clock {
	return in.clock
}

// Run reads r to the end. The first line is a header and is skipped. It
// returns ctx.Err() if the context is cancelled; buffered state is then
// discarded.
func (in *Ingestor) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineNo++
		in.stats.Lines++
		if in.opts.Progress != nil && lineNo%4096 == 0 {
			in.opts.Progress.SetCurrent(int64(lineNo))
		}
		if lineNo == 1 {
			continue
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		ev, err := tracelog.ParseLine(line, lineNo)
		if err != nil {
			return err
		}
		in.stats.Events++
		ev.Timestamp = in.clock.Observe(ev.Timestamp)
		in.route(ev)

		if err := in.flushDue(lineNo); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read trace log: %w", err)
	}

	if in.opts.Progress != nil {
		in.opts.Progress.SetCurrent(int64(lineNo))
		in.opts.Progress.Finish()
	}
	return in.flushAll(ctx)
}

func (in *Ingestor) route(ev tracelog.Event) {
	switch ev.Tag {
	case tracelog.TagCont:
		buf := in.buffers.Get(ev.Pid)
		if buf == nil || buf.Last() == nil {
			in.log.Warn("dropping continuation without a previous event",
				zap.Int64("pid", ev.Pid),
				zap.Int("line", ev.Line))
			return
		}
		last := buf.Last()
		last.Payload += in.opts.ContJoiner + ev.Payload
		return
	case tracelog.TagContEnd:
		in.stats.Multilines++
		return
	}

	in.buffers.GetOrCreate(ev.Pid).Append(ev)

	if ev.Tag == tracelog.TagExit && !in.pending[ev.Pid] {
		in.pending[ev.Pid] = true
		in.exits.Enqueue(pendingExit{pid: ev.Pid, due: ev.Line + in.opts.FlushMargin})
	}
}

func (in *Ingestor) flushDue(lineNo int) error {
	for {
		head, ok := in.exits.Peek()
		if !ok || head.(pendingExit).due > lineNo {
			return nil
		}
		in.exits.Dequeue()
		pid := head.(pendingExit).pid
		delete(in.pending, pid)

		buf := in.buffers.Take(pid)
		if buf == nil {
			continue
		}
		if err := in.flush(buf, true); err != nil {
			return err
		}
	}
}

func (in *Ingestor) flushAll(ctx context.Context) error {
	for _, buf := range in.buffers.Drain() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := in.flush(buf, in.pending[buf.Pid]); err != nil {
			return err
		}
	}
	in.exits.Clear()
	in.pending = make(map[int64]bool)
	return nil
}

func (in *Ingestor) flush(buf *procbuffer.Buffer, atExit bool) error {
	buf.SortByTime()
	if err := in.handler.HandleBuffer(buf, in.clock.Last(), atExit); err != nil {
		return fmt.Errorf("failed to handle pid %d: %w", buf.Pid, err)
	}
	return nil
}
