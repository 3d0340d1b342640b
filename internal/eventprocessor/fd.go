package eventprocessor

import (
	"github.com/mrzor/etrace-parser/internal/record"
	"github.com/mrzor/etrace-parser/internal/tracelog"
)

func (p *Processor) handleClose(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParseCloseArgs(ev)
	if err != nil {
		return err
	}
	s.addSyscall(record.Syscall{Kind: record.SyscallClose, Time: ev.Timestamp, Fd: args.Fd})
	s.res.Ops = append(s.res.Ops, record.NewCloseOp(s.ref(), ev.Timestamp, args.Fd))
	s.res.Kinds.Close++
	return nil
}

func (p *Processor) handlePipe(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParsePipeArgs(ev)
	if err != nil {
		return err
	}
	s.addSyscall(record.Syscall{Kind: record.SyscallPipe, Time: ev.Timestamp, Fd: args.Fd1, Fd2: args.Fd2, Flags: args.Flags})
	s.res.Ops = append(s.res.Ops, record.NewPipeOp(s.ref(), ev.Timestamp, args.Fd1, args.Fd2, args.Flags))
	s.res.Kinds.Pipe++
	return nil
}

func (p *Processor) handleDup(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParseDupArgs(ev)
	if err != nil {
		return err
	}
	s.addSyscall(record.Syscall{Kind: record.SyscallDup, Time: ev.Timestamp, Fd: args.OldFd, Fd2: args.NewFd, Flags: args.Flags})
	s.res.Ops = append(s.res.Ops, record.NewDupOp(s.ref(), ev.Timestamp, args.OldFd, args.NewFd, args.Flags))
	s.res.Kinds.Dup++
	return nil
}

func (p *Processor) handleExit(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParseExitArgs(ev)
	if err != nil {
		return err
	}
	s.entry.ExitStatus = args.Status
	if !s.exited {
		s.exited = true
		s.exitAt = ev.Timestamp
	}
	s.addSyscall(record.Syscall{Kind: record.SyscallExit, Time: s.res.end})
	s.res.Ops = append(s.res.Ops, record.NewExitOp(s.ref(), ev.Timestamp, args.Status, false))
	s.res.Kinds.Exit++
	return nil
}
