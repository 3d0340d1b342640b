package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzor/etrace-parser/internal/attributes"
	"github.com/mrzor/etrace-parser/internal/pipemap"
	"github.com/mrzor/etrace-parser/internal/record"
)

func decode(t *testing.T, data []byte) []Record {
	t.Helper()
	var recs []Record
	require.NoError(t, UnmarshalRecords(data, &recs), string(data))
	return recs
}

func TestWriteEntries(t *testing.T) {
	entries := []*record.Entry{
		entry(11, 0, "/bin/cat"),
		entry(10, 1, "/bin/ls"),
		entry(10, 0, "/bin/sh"),
	}
	parents := map[int64]record.ExecRef{11: {Pid: 10, Index: 1}}
	pipes := pipemap.PipeMap{}
	pipes.Add(record.ExecRef{Pid: 11, Index: 0}, record.ExecRef{Pid: 10, Index: 1})

	var buf bytes.Buffer
	sum, err := WriteEntries(context.Background(), &buf, entries, parents, pipes, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Entries)
	assert.Equal(t, 3, sum.Records)
	assert.Zero(t, sum.Filtered)

	recs := decode(t, buf.Bytes())
	require.Len(t, recs, 3)
	assert.Equal(t, []Ref{{10, 0}, {10, 1}, {11, 0}}, []Ref{{recs[0].P, recs[0].X}, {recs[1].P, recs[1].X}, {recs[2].P, recs[2].X}})
	assert.Equal(t, Ref{P: -1, X: 0}, recs[0].R)
	assert.Equal(t, Ref{P: 10, X: 1}, recs[2].R)
	assert.Equal(t, []Ref{{P: 10, X: 1}}, recs[2].I)
}

func TestWriteEntries_Filter(t *testing.T) {
	entries := []*record.Entry{
		entry(10, 0, "/bin/sh"),
		entry(11, 0, "/usr/bin/cc", key("/src/a.c")),
	}
	filter, err := attributes.NewFilter(`len(files) > 0`)
	require.NoError(t, err)

	var buf bytes.Buffer
	sum, err := WriteEntries(context.Background(), &buf, entries, nil, pipemap.PipeMap{}, Options{Filter: filter}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Filtered)
	require.Len(t, sum.Written, 1)
	assert.Equal(t, int64(11), sum.Written[0].Pid)

	recs := decode(t, buf.Bytes())
	require.Len(t, recs, 1)
	assert.Equal(t, "/usr/bin/cc", recs[0].B)
}

func TestWriteEntries_Empty(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteEntries(context.Background(), &buf, nil, nil, pipemap.PipeMap{}, Options{}, nil)
	require.NoError(t, err)
	assert.Empty(t, decode(t, buf.Bytes()))
}

func TestWriteEntries_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	_, err := WriteEntries(ctx, &buf, []*record.Entry{entry(1, 0, "/bin/true")}, nil, pipemap.PipeMap{}, Options{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteRawOps(t *testing.T) {
	ref := record.ExecRef{Pid: 10}
	ops := []record.Op{
		record.NewExitOp(ref, 30, 0, false),
		record.NewExecOp(ref, 10, "/bin/ls", "/", []string{"ls"}, ""),
		record.NewOpenOp(ref, 20, record.FileKey{Path: "/etc/passwd"}, 0, 0, 3),
	}

	var buf bytes.Buffer
	n, err := WriteRawOps(context.Background(), &buf, ops)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "e", got[0]["k"])
	assert.Equal(t, "o", got[1]["k"])
	assert.Equal(t, "/etc/passwd", got[1]["n"])
	assert.Equal(t, "x", got[2]["k"])
	assert.EqualValues(t, 10, got[2]["p"])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestArrayWriter_WriteError(t *testing.T) {
	aw := NewArrayWriter(failingWriter{})
	require.NoError(t, aw.Write(1))
	assert.ErrorIs(t, aw.Close(), assert.AnError)
}
