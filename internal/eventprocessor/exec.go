package eventprocessor

import (
	"path"

	"github.com/mrzor/etrace-parser/internal/reassembler"
	"github.com/mrzor/etrace-parser/internal/record"
	"github.com/mrzor/etrace-parser/internal/tracelog"
)

func (p *Processor) handleExec(s *procState, ev *tracelog.Event) error {
	args, err := tracelog.ParseNewProcArgs(ev)
	if err != nil {
		return err
	}
	interp, err := readSized(s, tracelog.TagPI, args.ProgNameISize)
	if err != nil {
		return err
	}
	prog, err := readSized(s, tracelog.TagPP, args.ProgNamePSize)
	if err != nil {
		return err
	}
	cwd, err := readSized(s, tracelog.TagCW, args.CwdSize)
	if err != nil {
		return err
	}
	argv, err := reassembler.ReadArgv(s.cur)
	if err != nil {
		return err
	}

	entry := s.entry
	if entry.Execed {
		entry.Elapsed = max(ev.Timestamp-entry.Start, 0)
		entry = record.NewPlaceholder(s.pid, ev.Timestamp)
		entry.Index = s.entry.Index + 1
		s.res.Entries = append(s.res.Entries, entry)
		s.entry = entry
	}
	entry.Execed = true
	entry.Binary = resolveBinary(cwd, prog)
	entry.Cwd = cwd
	entry.Argv = argv
	entry.Interpreter = interp

	s.addSyscall(record.Syscall{Kind: record.SyscallExec, Time: ev.Timestamp})
	s.res.Ops = append(s.res.Ops, record.NewExecOp(s.ref(), ev.Timestamp, entry.Binary, cwd, argv, interp))
	s.res.Kinds.Exec++
	return nil
}

// resolveBinary joins a relative program path onto the working directory.
func resolveBinary(cwd, prog string) string {
	if prog == "" || cwd == "" || path.IsAbs(prog) {
		return prog
	}
	return path.Join(cwd, prog)
}
