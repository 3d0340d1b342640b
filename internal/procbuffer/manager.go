package procbuffer

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
)

// Manager owns the buffers of every process seen so far.
type Manager struct {
	tree *redblacktree.Tree // pid -> *Buffer

	cachedPid int64
	cached    *Buffer

	hits   uint64
	misses uint64
}

// NewManager creates an empty buffer manager.
func NewManager() *Manager {
	return &Manager{
		tree: redblacktree.NewWith(utils.Int64Comparator),
	}
}

// Get retrieves the buffer for a pid (query).
// Returns nil if the pid has no buffer.
func (m *Manager) Get(pid int64) *Buffer {
	if m.cached != nil && m.cachedPid == pid {
		return m.cached
	}
	if v, found := m.tree.Get(pid); found {
		return v.(*Buffer)
	}
	return nil
}

// GetOrCreate returns the buffer for a pid, creating it if needed (command).
// The returned buffer becomes the cached one.
func (m *Manager) GetOrCreate(pid int64) *Buffer {
	if m.cached != nil && m.cachedPid == pid {
		m.hits++
		return m.cached
	}
	m.misses++

	var buf *Buffer
	if v, found := m.tree.Get(pid); found {
		buf = v.(*Buffer)
	} else {
		buf = &Buffer{Pid: pid}
		m.tree.Put(pid, buf)
	}
	m.cachedPid, m.cached = pid, buf
	return buf
}

// Take removes the buffer for a pid and returns it (command).
// Returns nil if the pid has no buffer.
func (m *Manager) Take(pid int64) *Buffer {
	buf := m.Get(pid)
	if buf == nil {
		return nil
	}
	m.tree.Remove(pid)
	if m.cached == buf {
		m.cached = nil
	}
	return buf
}

// Drain removes and returns every buffer, ordered by pid (command).
func (m *Manager) Drain() []*Buffer {
	out := make([]*Buffer, 0, m.tree.Size())
	it := m.tree.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Buffer))
	}
	m.tree.Clear()
	m.cached = nil
	return out
}

// Len returns the number of live buffers (query).
func (m *Manager) Len() int {
	return m.tree.Size()
}

// CacheStats returns how often the one-slot cache answered a lookup.
func (m *Manager) CacheStats() (hits, misses uint64) {
	return m.hits, m.misses
}
