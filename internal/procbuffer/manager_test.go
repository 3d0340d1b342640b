package procbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzor/etrace-parser/internal/tracelog"
)

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager()

	a := m.GetOrCreate(10)
	require.NotNil(t, a)
	assert.Equal(t, int64(10), a.Pid)
	assert.Same(t, a, m.GetOrCreate(10))

	b := m.GetOrCreate(11)
	assert.NotSame(t, a, b)
	assert.Same(t, a, m.GetOrCreate(10), "lookup after a cache miss must find the tree entry")
	assert.Equal(t, 2, m.Len())

	hits, misses := m.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(3), misses)
}

func TestManager_GetNonExistent(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.Get(9999))
	assert.Nil(t, m.Take(9999))
}

func TestManager_TakeClearsCache(t *testing.T) {
	m := NewManager()
	buf := m.GetOrCreate(42)
	buf.Append(tracelog.Event{Pid: 42, Tag: tracelog.TagExit})

	got := m.Take(42)
	assert.Same(t, buf, got)
	assert.Nil(t, m.Get(42))
	assert.Equal(t, 0, m.Len())

	fresh := m.GetOrCreate(42)
	assert.NotSame(t, buf, fresh)
	assert.Empty(t, fresh.Events)
}

func TestManager_DrainOrdersByPid(t *testing.T) {
	m := NewManager()
	for _, pid := range []int64{30, -2, 7, 100} {
		m.GetOrCreate(pid)
	}

	var pids []int64
	for _, buf := range m.Drain() {
		pids = append(pids, buf.Pid)
	}
	assert.Equal(t, []int64{-2, 7, 30, 100}, pids)
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Get(100))
}

func TestBuffer_SortByTimeIsStable(t *testing.T) {
	buf := &Buffer{Pid: 1}
	buf.Append(tracelog.Event{Timestamp: 30, Line: 1})
	buf.Append(tracelog.Event{Timestamp: 10, Line: 2})
	buf.Append(tracelog.Event{Timestamp: 30, Line: 3})
	buf.Append(tracelog.Event{Timestamp: 20, Line: 4})
	buf.Append(tracelog.Event{Timestamp: 10, Line: 5})

	buf.SortByTime()

	var lines []int
	for i, ev := range buf.Events {
		lines = append(lines, ev.Line)
		if i > 0 {
			assert.LessOrEqual(t, buf.Events[i-1].Timestamp, ev.Timestamp)
		}
	}
	assert.Equal(t, []int{2, 5, 4, 1, 3}, lines)
	assert.Equal(t, 3, buf.Last().Line)
}
