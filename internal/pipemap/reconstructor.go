package pipemap

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/mrzor/etrace-parser/internal/record"
)

// Options tunes the reconstruction.
type Options struct {
	// SiblingPipes enables the stdout/stdin check between an execing
	// process and the other children of its parent.
	SiblingPipes bool
}

// Result is the outcome of a reconstruction run.
type Result struct {
	PipeMap PipeMap
	// Skipped counts syscalls ignored because of missing tables or
	// topology entries.
	Skipped int
	Replayed int
}

// Reconstructor replays syscalls in time order.
type Reconstructor struct {
	opts Options
	log  *zap.Logger

	tables    map[int64]*FdTable
	topo      *Topology
	execs     map[int64]int
	nextGroup uint64
	res       *Result
}

func NewReconstructor(opts Options, logger *zap.Logger) *Reconstructor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconstructor{
		opts:   opts,
		log:    logger,
		tables: make(map[int64]*FdTable),
		topo:   NewTopology(),
		execs:  make(map[int64]int),
		res:    &Result{PipeMap: make(PipeMap)},
	}
}

// Run sorts the syscalls by time and replays all of them.
func (r *Reconstructor) Run(ctx context.Context, syscalls []record.Syscall) (*Result, error) {
	sorted := make([]record.Syscall, len(syscalls))
	copy(sorted, syscalls)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	if len(sorted) > 0 {
		r.Root(sorted[0].Pid)
	}
	for i := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.Apply(sorted[i])
	}
	return r.res, nil
}

// Root gives pid an empty table if it has none.
func (r *Reconstructor) Root(pid int64) {
	if _, ok := r.tables[pid]; !ok {
		r.tables[pid] = NewFdTable(pid)
	}
}

// Table returns the current table of pid.
func (r *Reconstructor) Table(pid int64) (*FdTable, bool) {
	t, ok := r.tables[pid]
	return t, ok
}

func (r *Reconstructor) Topology() *Topology {
	return r.topo
}

func (r *Reconstructor) Result() *Result {
	return r.res
}

// Incarnation returns the index of the current exec incarnation of pid.
func (r *Reconstructor) Incarnation(pid int64) int {
	return max(r.execs[pid]-1, 0)
}

func (r *Reconstructor) ref(pid int64) record.ExecRef {
	return record.ExecRef{Pid: pid, Index: r.Incarnation(pid)}
}

// Apply replays a single syscall.
func (r *Reconstructor) Apply(sc record.Syscall) {
	r.res.Replayed++
	switch sc.Kind {
	case record.SyscallPipe:
		r.pipe(sc)
	case record.SyscallDup:
		r.dup(sc)
	case record.SyscallFork:
		r.fork(sc)
	case record.SyscallClose:
		r.close(sc)
	case record.SyscallExec:
		r.exec(sc)
	case record.SyscallExit:
		r.exit(sc)
	}
}

func (r *Reconstructor) skip(msg string, sc record.Syscall, fields ...zap.Field) {
	r.res.Skipped++
	fields = append(fields,
		zap.Int64("pid", sc.Pid),
		zap.Stringer("syscall", sc.Kind),
		zap.Int64("time", sc.Time))
	r.log.Warn(msg, fields...)
}

func (r *Reconstructor) pipe(sc record.Syscall) {
	t, ok := r.tables[sc.Pid]
	if !ok {
		r.skip("no file descriptor table", sc)
		return
	}
	r.nextGroup++
	cloexec := sc.Flags&unix.O_CLOEXEC != 0
	t.Set(sc.Fd, FdEntry{Read: true, Cloexec: cloexec, Group: r.nextGroup})
	t.Set(sc.Fd2, FdEntry{Write: true, Cloexec: cloexec, Group: r.nextGroup})
}

func (r *Reconstructor) dup(sc record.Syscall) {
	t, ok := r.tables[sc.Pid]
	if !ok {
		r.skip("no file descriptor table", sc)
		return
	}
	src, ok := t.Get(sc.Fd)
	if !ok {
		return
	}
	src.Cloexec = sc.Flags&unix.O_CLOEXEC != 0
	t.Set(sc.Fd2, src)
}

func (r *Reconstructor) fork(sc record.Syscall) {
	r.execs[sc.Child] = 0

	parent, ok := r.tables[sc.Pid]
	if !ok {
		r.skip("no file descriptor table for parent", sc, zap.Int64("child", sc.Child))
		return
	}
	if _, ok := r.tables[sc.Child]; ok {
		r.skip("child already has a file descriptor table", sc, zap.Int64("child", sc.Child))
		return
	}
	if sc.Flags&unix.CLONE_FILES != 0 {
		parent.share(sc.Child)
		r.tables[sc.Child] = parent
	} else {
		r.tables[sc.Child] = parent.Clone(sc.Child)
	}
	if !r.topo.Register(sc.Pid, sc.Child) {
		r.skip("child already registered in process tree", sc, zap.Int64("child", sc.Child))
	}
}

func (r *Reconstructor) close(sc record.Syscall) {
	t, ok := r.tables[sc.Pid]
	if !ok {
		r.skip("no file descriptor table", sc, zap.Int("fd", sc.Fd))
		return
	}
	t.Delete(sc.Fd)
}

func (r *Reconstructor) exec(sc record.Syscall) {
	r.execs[sc.Pid]++

	t, ok := r.tables[sc.Pid]
	if !ok {
		r.skip("no file descriptor table", sc)
		return
	}
	if t.Shared() {
		t.release(sc.Pid)
		t = t.Clone(sc.Pid)
		r.tables[sc.Pid] = t
	}
	t.dropCloexec()

	ppid, ok := r.topo.Parent(sc.Pid)
	if !ok {
		r.skip("no active parent", sc)
		return
	}
	pt, ok := r.tables[ppid]
	if !ok {
		r.skip("no file descriptor table for parent", sc, zap.Int64("ppid", ppid))
		return
	}
	if writesTo(t, pt, false) {
		r.res.PipeMap.Add(r.ref(sc.Pid), r.ref(ppid))
	}

	if !r.opts.SiblingPipes {
		return
	}
	siblings, ok := r.topo.Children(ppid)
	if !ok {
		r.skip("no children recorded for parent", sc, zap.Int64("ppid", ppid))
		return
	}
	for _, sib := range siblings {
		if sib == sc.Pid {
			continue
		}
		st, ok := r.tables[sib]
		if !ok {
			continue
		}
		if writesTo(t, st, true) {
			r.res.PipeMap.Add(r.ref(sc.Pid), r.ref(sib))
		}
		if writesTo(st, t, true) {
			r.res.PipeMap.Add(r.ref(sib), r.ref(sc.Pid))
		}
	}
}

func (r *Reconstructor) exit(sc record.Syscall) {
	r.topo.Exit(sc.Pid)
	if t, ok := r.tables[sc.Pid]; ok {
		t.release(sc.Pid)
		delete(r.tables, sc.Pid)
	}
}
