package pipemap

import (
	"sort"

	"github.com/samber/lo"
)

// FdEntry describes one open descriptor. Group identifies the pipe the
// descriptor belongs to; it is zero for descriptors that are not pipe ends.
type FdEntry struct {
	Read    bool
	Write   bool
	Cloexec bool
	Group   uint64
}

// FdTable is the descriptor table of one or more pids.
type FdTable struct {
	fds     map[int]FdEntry
	sharers map[int64]struct{}
}

// NewFdTable returns an empty table owned by pid.
func NewFdTable(pid int64) *FdTable {
	return &FdTable{
		fds:     make(map[int]FdEntry),
		sharers: map[int64]struct{}{pid: {}},
	}
}

// Clone deep-copies the descriptors into a table owned by pid alone.
func (t *FdTable) Clone(pid int64) *FdTable {
	c := NewFdTable(pid)
	for fd, e := range t.fds {
		c.fds[fd] = e
	}
	return c
}

func (t *FdTable) Get(fd int) (FdEntry, bool) {
	e, ok := t.fds[fd]
	return e, ok
}

func (t *FdTable) Set(fd int, e FdEntry) {
	t.fds[fd] = e
}

func (t *FdTable) Delete(fd int) {
	delete(t.fds, fd)
}

// Len returns the number of open descriptors.
func (t *FdTable) Len() int {
	return len(t.fds)
}

// Fds returns the open descriptors in ascending order.
func (t *FdTable) Fds() []int {
	fds := lo.Keys(t.fds)
	sort.Ints(fds)
	return fds
}

// Sharers returns the pids using this table in ascending order.
func (t *FdTable) Sharers() []int64 {
	pids := lo.Keys(t.sharers)
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

// Shared reports whether more than one pid uses the table.
func (t *FdTable) Shared() bool {
	return len(t.sharers) > 1
}

func (t *FdTable) share(pid int64) {
	t.sharers[pid] = struct{}{}
}

// release removes pid from the sharers and reports whether the table is
// still in use.
func (t *FdTable) release(pid int64) bool {
	delete(t.sharers, pid)
	return len(t.sharers) > 0
}

func (t *FdTable) dropCloexec() {
	for fd, e := range t.fds {
		if e.Cloexec {
			delete(t.fds, fd)
		}
	}
}

// writesTo reports whether from holds the write end of a pipe whose read
// end is open in to. With stdio set only fd 1 of from and fd 0 of to count.
func writesTo(from, to *FdTable, stdio bool) bool {
	groups := make(map[uint64]struct{})
	for fd, e := range from.fds {
		if e.Write && e.Group != 0 && (!stdio || fd == 1) {
			groups[e.Group] = struct{}{}
		}
	}
	if len(groups) == 0 {
		return false
	}
	for fd, e := range to.fds {
		if !e.Read || (stdio && fd != 0) {
			continue
		}
		if _, ok := groups[e.Group]; ok {
			return true
		}
	}
	return false
}
