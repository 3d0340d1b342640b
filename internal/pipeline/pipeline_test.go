package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sys/unix"

	"github.com/mrzor/etrace-parser/internal/config"
	"github.com/mrzor/etrace-parser/internal/output"
)

func l(pid int64, ts int64, body string) string {
	return fmt.Sprintf("0: %d,0,0,%d!%s", pid, ts, body)
}

func execLines(pid, ts int64, prog, cwd string, argv ...string) []string {
	argsize := 0
	for _, a := range argv {
		argsize += len(a) + 1
	}
	lines := []string{
		l(pid, ts, fmt.Sprintf("New_proc|argsize=%d,prognameisize=0,prognamepsize=%d,cwdsize=%d", argsize, len(prog), len(cwd))),
		l(pid, ts, "PP|"+prog),
		l(pid, ts, "PP_end|"),
		l(pid, ts, "CW|"+cwd),
		l(pid, ts, "CW_end|"),
	}
	for i, a := range argv {
		lines = append(lines, l(pid, ts, fmt.Sprintf("A[%d]%s", i, a)))
	}
	return append(lines, l(pid, ts, "End_of_args|"))
}

func traceLog(groups ...[]string) string {
	lines := []string{"tracer header"}
	for _, g := range groups {
		lines = append(lines, g...)
	}
	return strings.Join(lines, "\n") + "\n"
}

type fixture struct {
	fs  afero.Fs
	cfg *config.Config
}

func newFixture(t *testing.T, log string, args ...string) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "trace.log", []byte(log), 0o644))
	cfg, err := config.ParseArgs(append([]string{"etrace-parser", "trace.log", "out.json", "--no-progress"}, args...))
	require.NoError(t, err)
	require.NoError(t, cfg.Load(fs, map[string]string{}))
	return &fixture{fs: fs, cfg: cfg}
}

func (f *fixture) run(t *testing.T) *Pipeline {
	t.Helper()
	p := New(f.cfg, f.fs, nil, nil)
	require.NoError(t, p.Run(context.Background()))
	return p
}

func (f *fixture) records(t *testing.T) []output.Record {
	t.Helper()
	data, err := afero.ReadFile(f.fs, f.cfg.Output)
	require.NoError(t, err)
	var recs []output.Record
	require.NoError(t, output.UnmarshalRecords(data, &recs), string(data))
	return recs
}

func TestRun_SingleExec(t *testing.T) {
	f := newFixture(t, traceLog(
		[]string{
			l(10, 1000, "New_proc|argsize=3,prognameisize=0,prognamepsize=4,cwdsize=1"),
			l(10, 1000, "PP|/bin"),
			l(10, 1000, "PP_end|"),
			l(10, 1000, "CW|/"),
			l(10, 1000, "CW_end|"),
			l(10, 1000, "A[0]ls"),
			l(10, 1000, "End_of_args|"),
		},
	))
	p := f.run(t)

	recs := f.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(10), recs[0].P)
	assert.Equal(t, 0, recs[0].X)
	assert.Equal(t, "/bin", recs[0].B)
	assert.Equal(t, "/", recs[0].W)
	assert.Equal(t, []string{"ls"}, recs[0].V)
	assert.Equal(t, output.Ref{P: -1, X: 0}, recs[0].R)
	assert.Empty(t, recs[0].I)

	assert.Equal(t, uint64(1), p.Stats.Processes)
	assert.Equal(t, uint64(1), p.Stats.Kinds.Exec)
	assert.Equal(t, uint64(1), p.Stats.Records)

	exists, err := afero.Exists(f.fs, "out.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_PipeToParent(t *testing.T) {
	f := newFixture(t, traceLog(
		[]string{
			l(10, 1, "Pipe|fd1=3,fd2=4,flags=0"),
			l(10, 2, fmt.Sprintf("SysClone|flags=%d", unix.CLONE_FILES)),
			l(10, 3, "SchedFork|pid=11"),
		},
		execLines(11, 4, "/bin/echo", "/", "echo", "hi"),
		[]string{
			l(11, 5, "Exit|status=0"),
			l(10, 6, "Exit|status=0"),
		},
	), "-r")
	p := f.run(t)

	recs := f.records(t)
	require.Len(t, recs, 2)
	parent, child := recs[0], recs[1]
	assert.Equal(t, int64(10), parent.P)
	assert.Equal(t, []output.ChildRecord{{P: 11, F: unix.CLONE_FILES}}, parent.C)
	assert.Empty(t, parent.I)

	assert.Equal(t, int64(11), child.P)
	assert.Equal(t, output.Ref{P: 10, X: 0}, child.R)
	assert.Equal(t, []output.Ref{{P: 10, X: 0}}, child.I)
	assert.Equal(t, uint64(1), p.Stats.PipeEdges)
	assert.Equal(t, uint64(2), p.Stats.ProcsAtEnd+p.Stats.ProcsAtExit)

	raw, err := afero.ReadFile(f.fs, config.DefaultRawOutput)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"k":"p"`)
	assert.Contains(t, string(raw), `"k":"e"`)
}

func TestRun_MalformedOpenIsIsolated(t *testing.T) {
	f := newFixture(t, traceLog(
		execLines(20, 1, "/bin/cc", "/w", "cc"),
		execLines(21, 1, "/bin/ld", "/w", "ld"),
		[]string{
			l(20, 2, "Open|fnamesize=99,forigsize=4,flags=0,mode=0,fd=3"),
			l(20, 2, "FN|/a.c"),
			l(20, 2, "FO|/a.c"),
			l(21, 3, "Open|fnamesize=4,forigsize=4,flags=1,mode=0,fd=3"),
			l(21, 3, "FN|/a.o"),
			l(21, 3, "FO|/a.o"),
		},
	), "--no-stat")
	p := f.run(t)

	recs := f.records(t)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(20), recs[0].P)
	assert.Empty(t, recs[0].B, "corrupted process is reduced to a placeholder")
	assert.Empty(t, recs[0].O)

	assert.Equal(t, "/bin/ld", recs[1].B)
	assert.Equal(t, []output.FileRecord{{P: "/a.o", M: 1}}, recs[1].O)
	assert.Equal(t, uint64(1), p.Stats.Corrupted)
}

func TestRun_ForkTargetsArePartitioned(t *testing.T) {
	f := newFixture(t, traceLog(
		execLines(1, 1, "/bin/make", "/", "make"),
		[]string{
			l(1, 2, "SchedFork|pid=2"),
			l(1, 3, "SchedFork|pid=3"),
			l(1, 4, "SchedFork|pid=4"),
		},
		execLines(2, 5, "/bin/cc", "/", "cc"),
		[]string{l(4, 6, "Close|fd=0")},
	))
	p := f.run(t)

	recs := f.records(t)
	var pids []int64
	for _, r := range recs {
		pids = append(pids, r.P)
	}
	assert.Equal(t, []int64{1, 2, 4}, pids)
	assert.Equal(t, []int64{3}, p.EmptyChildren)
	assert.Equal(t, uint64(1), p.Stats.EmptyChildren)
}

func TestRun_FilterAndSplit(t *testing.T) {
	var opens []string
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("/f%d", i)
		opens = append(opens,
			l(2, 10, fmt.Sprintf("Open|fnamesize=3,forigsize=3,flags=0,mode=0,fd=%d", i+3)),
			l(2, 10, "FN|"+name),
			l(2, 10, "FO|"+name),
		)
	}
	f := newFixture(t, traceLog(
		execLines(1, 1, "/bin/sh", "/", "sh"),
		execLines(2, 2, "/bin/cat", "/", "cat"),
		opens,
	), "-f", `binary == "/bin/cat"`, "-s", "6", "--no-stat")
	p := f.run(t)

	recs := f.records(t)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, int64(2), r.P)
		assert.Len(t, r.O, 2)
	}
	assert.Equal(t, uint64(1), p.Stats.Filtered)
	assert.Equal(t, uint64(2), p.Stats.Records)
}

func TestRun_InputUnavailable(t *testing.T) {
	f := newFixture(t, "")
	f.cfg.Input = "missing.log"
	err := New(f.cfg, f.fs, nil, nil).Run(context.Background())
	assert.ErrorIs(t, err, ErrInputUnavailable)
}

func TestRun_BadHeaderIsFatal(t *testing.T) {
	f := newFixture(t, traceLog([]string{"garbage line"}))
	err := New(f.cfg, f.fs, nil, nil).Run(context.Background())
	require.Error(t, err)

	exists, _ := afero.Exists(f.fs, f.cfg.Output)
	assert.False(t, exists)
}

func TestRun_CancelledWritesNothing(t *testing.T) {
	f := newFixture(t, traceLog(execLines(1, 1, "/bin/true", "/", "true")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(f.cfg, f.fs, nil, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	exists, _ := afero.Exists(f.fs, f.cfg.Output)
	assert.False(t, exists)
}

func TestRun_ExportsSpans(t *testing.T) {
	f := newFixture(t, traceLog(
		execLines(1, 1, "/bin/make", "/", "make"),
		[]string{l(1, 2, "SchedFork|pid=2")},
		execLines(2, 3, "/bin/cc", "/", "cc"),
	), "--spans", "--attr", "first=argv[0]")

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	p := New(f.cfg, f.fs, tp.Tracer("test"), nil)
	require.NoError(t, p.Run(context.Background()))

	names := make(map[string]bool)
	for _, s := range recorder.Ended() {
		names[s.Name()] = true
	}
	for _, want := range []string{"etrace-parser.run", "ingest", "reconstruct", "serialize", "trace.log", "make", "cc"} {
		assert.True(t, names[want], "missing span %q", want)
	}
}
