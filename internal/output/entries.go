package output

import (
	"context"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/mrzor/etrace-parser/internal/attributes"
	"github.com/mrzor/etrace-parser/internal/pipemap"
	"github.com/mrzor/etrace-parser/internal/record"
)

// Options tune the entry writer.
type Options struct {
	// SplitThreshold is the file path byte count at which an entry is cut
	// into several records; 0 disables splitting.
	SplitThreshold int64
	// Filter drops the entries it does not match. Nil keeps everything.
	Filter *attributes.Filter
}

// Summary reports what WriteEntries did.
type Summary struct {
	Entries  int
	Records  int
	Filtered int
	// Written are the entries that passed the filter, in output order.
	Written []*record.Entry
}

// SortEntries orders entries by (pid, index), keeping the relative order of
// equal keys.
func SortEntries(entries []*record.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Pid != entries[j].Pid {
			return entries[i].Pid < entries[j].Pid
		}
		return entries[i].Index < entries[j].Index
	})
}

// ResolveParent returns the incarnation that forked pid, or record.NoParent.
func ResolveParent(parents map[int64]record.ExecRef, pid int64) record.ExecRef {
	if p, ok := parents[pid]; ok {
		return p
	}
	return record.NoParent
}

// WriteEntries sorts entries and streams them to w as a JSON array.
func WriteEntries(ctx context.Context, w io.Writer, entries []*record.Entry, parents map[int64]record.ExecRef,
	pipes pipemap.PipeMap, opts Options, logger *zap.Logger) (*Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	SortEntries(entries)

	sum := &Summary{Entries: len(entries)}
	aw := NewArrayWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		keep, err := opts.Filter.Match(e)
		if err != nil {
			logger.Warn("dropping entry", zap.Int64("pid", e.Pid), zap.Int("index", e.Index), zap.Error(err))
			keep = false
		}
		if !keep {
			sum.Filtered++
			continue
		}

		e.Parent = ResolveParent(parents, e.Pid)
		for _, rec := range BuildRecords(e, e.Parent, pipes.Partners(e.Ref()), opts.SplitThreshold) {
			if err := aw.Write(rec); err != nil {
				return nil, err
			}
			sum.Records++
		}
		sum.Written = append(sum.Written, e)
	}
	if err := aw.Close(); err != nil {
		return nil, err
	}
	return sum, nil
}
