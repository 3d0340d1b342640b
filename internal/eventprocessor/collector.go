package eventprocessor

import (
	"go.uber.org/zap"

	"github.com/mrzor/etrace-parser/internal/procbuffer"
	"github.com/mrzor/etrace-parser/internal/record"
	"github.com/mrzor/etrace-parser/internal/stats"
)

// Collector runs the processor over flushed buffers and accumulates the
// results of the whole run.
type Collector struct {
	proc    *Processor
	log     *zap.Logger
	stats   *stats.Stats
	keepOps bool

	Entries  []*record.Entry
	Syscalls []record.Syscall
	// Parents maps a child pid to the incarnation that forked it. A later
	// fork of a reused pid replaces the earlier one.
	Parents map[int64]record.ExecRef
	Ops     []record.Op
}

// NewCollector creates a collector. Raw ops are only retained when keepOps
// is set.
func NewCollector(proc *Processor, st *stats.Stats, keepOps bool, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if st == nil {
		st = &stats.Stats{}
	}
	return &Collector{
		proc:    proc,
		log:     logger,
		stats:   st,
		keepOps: keepOps,
		Parents: make(map[int64]record.ExecRef),
	}
}

// HandleBuffer processes one flushed buffer. atExit tells whether the flush
// was triggered by the process's Exit event.
func (c *Collector) HandleBuffer(buf *procbuffer.Buffer, end int64, atExit bool) error {
	res := c.proc.Process(buf.Pid, buf.Events, end)
	if res.Recovered() {
		c.log.Warn("recovering corrupted process", zap.Int64("pid", buf.Pid), zap.Error(res.Err))
		res.Recover()
		c.stats.Corrupted++
	}
	c.commit(res)

	c.stats.Processes++
	if atExit {
		c.stats.ProcsAtExit++
	} else {
		c.stats.ProcsAtEnd++
	}
	return nil
}

func (c *Collector) commit(res *Result) {
	c.Entries = append(c.Entries, res.Entries...)
	c.Syscalls = append(c.Syscalls, res.Syscalls...)
	for _, link := range res.Links {
		c.Parents[link.Child] = link.Parent
	}
	if c.keepOps {
		c.Ops = append(c.Ops, res.Ops...)
	}
	c.stats.Processed += uint64(res.Processed)
	c.stats.Kinds.Add(res.Kinds)
	c.stats.Entries += uint64(len(res.Entries))
}

// EmptyChildren returns the fork targets that produced no entry at all.
func (c *Collector) EmptyChildren() []int64 {
	seen := make(map[int64]bool, len(c.Entries))
	for _, e := range c.Entries {
		seen[e.Pid] = true
	}
	var out []int64
	for child := range c.Parents {
		if !seen[child] {
			out = append(out, child)
		}
	}
	return out
}
