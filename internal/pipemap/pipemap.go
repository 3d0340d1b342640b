package pipemap

import (
	"sort"

	"github.com/samber/lo"

	"github.com/mrzor/etrace-parser/internal/record"
)

// PipeMap maps a writing incarnation to the incarnations reading from it.
type PipeMap map[record.ExecRef]map[record.ExecRef]struct{}

// Add records an edge and reports whether it was new.
func (m PipeMap) Add(writer, reader record.ExecRef) bool {
	set, ok := m[writer]
	if !ok {
		set = make(map[record.ExecRef]struct{})
		m[writer] = set
	}
	if _, ok := set[reader]; ok {
		return false
	}
	set[reader] = struct{}{}
	return true
}

// Partners returns the readers of writer sorted by (pid, index).
func (m PipeMap) Partners(writer record.ExecRef) []record.ExecRef {
	set, ok := m[writer]
	if !ok {
		return nil
	}
	out := lo.Keys(set)
	sortRefs(out)
	return out
}

// Edges returns the number of distinct edges.
func (m PipeMap) Edges() int {
	n := 0
	for _, set := range m {
		n += len(set)
	}
	return n
}

func sortRefs(refs []record.ExecRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Pid != refs[j].Pid {
			return refs[i].Pid < refs[j].Pid
		}
		return refs[i].Index < refs[j].Index
	})
}
