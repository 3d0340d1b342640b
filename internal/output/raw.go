package output

import (
	"context"
	"io"
	"sort"

	"github.com/mrzor/etrace-parser/internal/record"
)

// WriteRawOps streams ops as a JSON array ordered by time, then pid.
func WriteRawOps(ctx context.Context, w io.Writer, ops []record.Op) (int, error) {
	sorted := make([]record.Op, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Header(), sorted[j].Header()
		if a.T != b.T {
			return a.T < b.T
		}
		return a.P < b.P
	})

	aw := NewArrayWriter(w)
	for _, op := range sorted {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := aw.Write(op); err != nil {
			return 0, err
		}
	}
	if err := aw.Close(); err != nil {
		return 0, err
	}
	return aw.Count(), nil
}
