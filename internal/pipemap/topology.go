package pipemap

import (
	"sort"

	"github.com/samber/lo"
)

// Adopter is the synthetic pid that inherits the children of exited
// processes.
const Adopter int64 = 0

// Topology tracks the live fork tree during the replay.
type Topology struct {
	children map[int64]map[int64]struct{}
	parent   map[int64]int64
}

func NewTopology() *Topology {
	return &Topology{
		children: map[int64]map[int64]struct{}{Adopter: {}},
		parent:   make(map[int64]int64),
	}
}

// Register records child under parent. It returns false when the child is
// already known.
func (t *Topology) Register(parent, child int64) bool {
	if _, ok := t.parent[child]; ok {
		return false
	}
	set, ok := t.children[parent]
	if !ok {
		set = make(map[int64]struct{})
		t.children[parent] = set
	}
	set[child] = struct{}{}
	t.parent[child] = parent
	return true
}

// Parent returns the live parent of pid.
func (t *Topology) Parent(pid int64) (int64, bool) {
	p, ok := t.parent[pid]
	return p, ok
}

// Children returns the live children of pid in ascending order. ok is false
// when pid never forked and is not the adopter.
func (t *Topology) Children(pid int64) ([]int64, bool) {
	set, ok := t.children[pid]
	if !ok {
		return nil, false
	}
	out := lo.Keys(set)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, true
}

// Exit detaches pid from its parent and hands its children to the adopter.
func (t *Topology) Exit(pid int64) {
	if p, ok := t.parent[pid]; ok {
		delete(t.children[p], pid)
		delete(t.parent, pid)
	}
	if pid == Adopter {
		return
	}
	for child := range t.children[pid] {
		t.children[Adopter][child] = struct{}{}
		t.parent[child] = Adopter
	}
	delete(t.children, pid)
}
