package record

import "sort"

// ExecRef names one exec incarnation of a process.
type ExecRef struct {
	Pid   int64
	Index int
}

// NoParent is the reference written for processes whose fork was not traced.
var NoParent = ExecRef{Pid: -1}

// Child is a process forked by an incarnation.
type Child struct {
	Pid   int64
	Flags uint64
}

// FileKey identifies a file access. Original is empty when it equals Path.
type FileKey struct {
	Path     string
	Original string
}

// FileAccess is the merged access of one incarnation to one file.
//
// Mode layout is 0bEMMMMAA: E (0x40) is set when the file existed at
// analysis time, M are the S_IFMT bits shifted right by 10 and A is the
// open(2) access mode.
type FileAccess struct {
	FileKey
	Mode uint32
	Size int64
}

// Entry is one exec incarnation of a process.
type Entry struct {
	Pid     int64
	Index   int
	Elapsed int64
	Binary  string
	Cwd     string
	Argv    []string
	// Interpreter is the PI path of scripts; empty for native binaries.
	Interpreter string
	Children    []Child
	Files       map[FileKey]*FileAccess
	Parent      ExecRef
	ExitStatus  int

	// Execed is false while the entry is the pre-exec placeholder.
	Execed bool
	// Start is the relative time the incarnation began.
	Start int64
}

// NewPlaceholder creates the entry a pid gets when it is first seen.
func NewPlaceholder(pid int64, start int64) *Entry {
	return &Entry{
		Pid:    pid,
		Files:  make(map[FileKey]*FileAccess),
		Parent: NoParent,
		Start:  start,
	}
}

// Ref returns the ExecRef of the entry.
func (e *Entry) Ref() ExecRef {
	return ExecRef{Pid: e.Pid, Index: e.Index}
}

// SortedFiles returns the file accesses ordered by path then original path.
func (e *Entry) SortedFiles() []*FileAccess {
	out := make([]*FileAccess, 0, len(e.Files))
	for _, f := range e.Files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Original < out[j].Original
	})
	return out
}

// ParentLink records which incarnation forked a child pid.
type ParentLink struct {
	Child  int64
	Parent ExecRef
}
