package eventprocessor

import (
	"go.uber.org/zap"

	"github.com/mrzor/etrace-parser/internal/record"
	"github.com/mrzor/etrace-parser/internal/tracelog"
)

func (p *Processor) handleFork(s *procState, ev *tracelog.Event, flags uint64) error {
	args, err := tracelog.ParseForkArgs(ev)
	if err != nil {
		return err
	}
	s.entry.Children = append(s.entry.Children, record.Child{Pid: args.ChildPid, Flags: flags})
	s.res.Links = append(s.res.Links, record.ParentLink{Child: args.ChildPid, Parent: s.ref()})
	s.addSyscall(record.Syscall{Kind: record.SyscallFork, Time: ev.Timestamp, Child: args.ChildPid, Flags: flags})
	s.res.Ops = append(s.res.Ops, record.NewForkOp(s.ref(), ev.Timestamp, args.ChildPid, flags))
	s.res.Kinds.Fork++
	return nil
}

// handleClone pairs SysClone with the SchedFork that completes it. Any other
// following event is pushed back and dispatched on its own.
func (p *Processor) handleClone(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParseCloneArgs(ev)
	if err != nil {
		return err
	}

	next, ok := s.cur.Next()
	if !ok {
		p.log.Warn("clone without outcome at end of process",
			zap.Int64("pid", s.pid),
			zap.Int("line", ev.Line))
		return nil
	}

	switch next.Tag {
	case tracelog.TagSchedFork:
		s.res.Kinds.Clone++
		return p.handleFork(s, next, args.Flags)
	case tracelog.TagSysCloneFailed:
		return nil
	default:
		s.cur.Backup()
		return nil
	}
}
