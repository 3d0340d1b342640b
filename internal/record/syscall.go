package record

// SyscallKind is the subset of events the reconstruction pass replays.
type SyscallKind uint8

const (
	SyscallPipe SyscallKind = iota + 1
	SyscallDup
	SyscallFork
	SyscallClose
	SyscallExec
	SyscallExit
)

func (k SyscallKind) String() string {
	switch k {
	case SyscallPipe:
		return "pipe"
	case SyscallDup:
		return "dup"
	case SyscallFork:
		return "fork"
	case SyscallClose:
		return "close"
	case SyscallExec:
		return "exec"
	case SyscallExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Syscall is the compact projection of an event kept for the second pass.
//
//	Pipe:  Fd = read end, Fd2 = write end, Flags = pipe2 flags
//	Dup:   Fd = old fd, Fd2 = new fd, Flags = dup3 flags
//	Fork:  Child = child pid, Flags = clone flags
//	Close: Fd
type Syscall struct {
	Kind  SyscallKind
	Pid   int64
	Time  int64
	Child int64
	Fd    int
	Fd2   int
	Flags uint64
}
