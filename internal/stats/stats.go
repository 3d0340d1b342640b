// Package stats collects the run counters printed with -t.
package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Kinds counts accepted events per syscall kind.
type Kinds struct {
	Exec    uint64
	Fork    uint64
	Clone   uint64
	Close   uint64
	Pipe    uint64
	Dup     uint64
	Open    uint64
	Rename  uint64
	Link    uint64
	Symlink uint64
	Exit    uint64
	Mount   uint64
	Unknown uint64
}

// Add accumulates o into k.
func (k *Kinds) Add(o Kinds) {
	k.Exec += o.Exec
	k.Fork += o.Fork
	k.Clone += o.Clone
	k.Close += o.Close
	k.Pipe += o.Pipe
	k.Dup += o.Dup
	k.Open += o.Open
	k.Rename += o.Rename
	k.Link += o.Link
	k.Symlink += o.Symlink
	k.Exit += o.Exit
	k.Mount += o.Mount
	k.Unknown += o.Unknown
}

// Stats are the counters of one run.
type Stats struct {
	Lines      uint64
	Events     uint64
	Multilines uint64

	Processes   uint64
	ProcsAtExit uint64
	ProcsAtEnd  uint64
	Processed   uint64
	Corrupted   uint64
	Kinds       Kinds

	Entries         uint64
	Records         uint64
	Filtered        uint64
	PipeEdges       uint64
	ReconstructSkip uint64
	EmptyChildren   uint64
}

// Report writes a human readable summary.
func (s *Stats) Report(w io.Writer) error {
	rows := []struct {
		name  string
		value uint64
	}{
		{"lines read", s.Lines},
		{"events", s.Events},
		{"multi-line merges", s.Multilines},
		{"processes", s.Processes},
		{"  flushed at exit", s.ProcsAtExit},
		{"  flushed at end of log", s.ProcsAtEnd},
		{"  corrupted", s.Corrupted},
		{"events processed", s.Processed},
		{"  exec", s.Kinds.Exec},
		{"  fork", s.Kinds.Fork},
		{"  clone", s.Kinds.Clone},
		{"  close", s.Kinds.Close},
		{"  pipe", s.Kinds.Pipe},
		{"  dup", s.Kinds.Dup},
		{"  open", s.Kinds.Open},
		{"  rename", s.Kinds.Rename},
		{"  link", s.Kinds.Link},
		{"  symlink", s.Kinds.Symlink},
		{"  exit", s.Kinds.Exit},
		{"  mount", s.Kinds.Mount},
		{"  unknown", s.Kinds.Unknown},
		{"entries", s.Entries},
		{"records written", s.Records},
		{"entries filtered out", s.Filtered},
		{"pipe edges", s.PipeEdges},
		{"reconstruction skips", s.ReconstructSkip},
		{"empty children", s.EmptyChildren},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-24s %s\n", row.name+":", humanize.Comma(int64(row.value))); err != nil {
			return err
		}
	}
	return nil
}
