package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mrzor/etrace-parser/internal/attributes"
	"github.com/mrzor/etrace-parser/internal/config"
	"github.com/mrzor/etrace-parser/internal/eventprocessor"
	"github.com/mrzor/etrace-parser/internal/eventstream"
	"github.com/mrzor/etrace-parser/internal/output"
	"github.com/mrzor/etrace-parser/internal/pipemap"
	"github.com/mrzor/etrace-parser/internal/stats"
)

// ErrInputUnavailable is returned when the trace log cannot be opened.
var ErrInputUnavailable = errors.New("input unavailable")

// Pipeline runs one parse.
type Pipeline struct {
	cfg    *config.Config
	fs     afero.Fs
	tracer trace.Tracer
	log    *zap.Logger

	// ProgressOut receives the progress bar when it is a terminal.
	ProgressOut *os.File
	// Now is the wall clock used to place exported spans.
	Now func() time.Time

	Stats stats.Stats
	// EmptyChildren are the fork targets that produced no entry.
	EmptyChildren []int64
}

// New creates a pipeline reading and writing through fs. A nil tracer
// disables pass spans.
func New(cfg *config.Config, fs afero.Fs, tracer trace.Tracer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Pipeline{
		cfg:    cfg,
		fs:     fs,
		tracer: tracer,
		log:    logger,
		Now:    time.Now,
	}
}

type ingested struct {
	collector *eventprocessor.Collector
	base, end int64
}

// Run executes all passes. It returns ctx.Err() when cancelled.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	ctx, span := p.tracer.Start(ctx, "etrace-parser.run", trace.WithAttributes(
		attribute.String("etrace.input", p.cfg.Input),
		attribute.String("etrace.output", p.cfg.Output),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	filter, err := attributes.NewFilter(p.cfg.Tunables.Filter)
	if err != nil {
		return err
	}

	in, err := p.ingest(ctx)
	if err != nil {
		return err
	}

	pipes, err := p.reconstruct(ctx, in.collector)
	if err != nil {
		return err
	}

	summary, err := p.serialize(ctx, in.collector, pipes, filter)
	if err != nil {
		return err
	}

	if p.cfg.Spans {
		if err := p.exportSpans(ctx, in, summary, pipes); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) ingest(ctx context.Context) (*ingested, error) {
	ctx, span := p.tracer.Start(ctx, "ingest")
	defer span.End()

	f, err := p.fs.Open(p.cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // Read-only file
	}()

	var statFs afero.Fs
	if p.cfg.Tunables.StatFiles {
		statFs = p.fs
	}
	proc := eventprocessor.NewProcessor(statFs, p.log)
	collector := eventprocessor.NewCollector(proc, &p.Stats, p.cfg.Raw, p.log)

	var bar *pb.ProgressBar
	if p.cfg.Progress && p.ProgressOut != nil {
		bar, err = eventstream.NewProgress(p.cfg.Input, p.ProgressOut)
		if err != nil {
			p.log.Debug("progress disabled", zap.Error(err))
		}
	}

	ingestor := eventstream.New(collector, eventstream.Options{
		FlushMargin: p.cfg.Tunables.FlushMargin,
		ContJoiner:  p.cfg.Tunables.ContJoiner,
		Progress:    bar,
	}, &p.Stats, p.log)
	if err := ingestor.Run(ctx, f); err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.EmptyChildren = collector.EmptyChildren()
	sort.Slice(p.EmptyChildren, func(i, j int) bool { return p.EmptyChildren[i] < p.EmptyChildren[j] })
	p.Stats.EmptyChildren = uint64(len(p.EmptyChildren))

	span.SetAttributes(
		attribute.Int64("etrace.lines", int64(p.Stats.Lines)),
		attribute.Int64("etrace.processes", int64(p.Stats.Processes)),
		attribute.Int("etrace.entries", len(collector.Entries)),
	)
	p.log.Info("trace log ingested",
		zap.Uint64("lines", p.Stats.Lines),
		zap.Uint64("processes", p.Stats.Processes),
		zap.Int("entries", len(collector.Entries)),
		zap.Uint64("corrupted", p.Stats.Corrupted))

	return &ingested{
		collector: collector,
		base:      ingestor.Clock().Base(),
		end:       ingestor.Clock().Last(),
	}, nil
}

func (p *Pipeline) reconstruct(ctx context.Context, c *eventprocessor.Collector) (pipemap.PipeMap, error) {
	ctx, span := p.tracer.Start(ctx, "reconstruct")
	defer span.End()

	r := pipemap.NewReconstructor(pipemap.Options{SiblingPipes: p.cfg.Tunables.SiblingPipes}, p.log)
	res, err := r.Run(ctx, c.Syscalls)
	if err != nil {
		return nil, err
	}

	p.Stats.PipeEdges = uint64(res.PipeMap.Edges())
	p.Stats.ReconstructSkip = uint64(res.Skipped)
	span.SetAttributes(
		attribute.Int("etrace.syscalls", res.Replayed),
		attribute.Int("etrace.pipe_edges", res.PipeMap.Edges()),
		attribute.Int("etrace.skipped", res.Skipped),
	)
	p.log.Info("pipes reconstructed",
		zap.Int("syscalls", res.Replayed),
		zap.Int("edges", res.PipeMap.Edges()),
		zap.Int("skipped", res.Skipped))
	return res.PipeMap, nil
}

func (p *Pipeline) serialize(ctx context.Context, c *eventprocessor.Collector, pipes pipemap.PipeMap,
	filter *attributes.Filter) (*output.Summary, error) {
	ctx, span := p.tracer.Start(ctx, "serialize")
	defer span.End()

	var summary *output.Summary
	err := p.writeFile(ctx, p.cfg.Output, func(w io.Writer) error {
		var err error
		summary, err = output.WriteEntries(ctx, w, c.Entries, c.Parents, pipes, output.Options{
			SplitThreshold: p.cfg.Tunables.SplitThreshold,
			Filter:         filter,
		}, p.log)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.Stats.Records = uint64(summary.Records)
	p.Stats.Filtered = uint64(summary.Filtered)

	if p.cfg.Raw {
		err := p.writeFile(ctx, p.cfg.RawOutput, func(w io.Writer) error {
			_, err := output.WriteRawOps(ctx, w, c.Ops)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("etrace.records", summary.Records))
	p.log.Info("entries written",
		zap.String("path", p.cfg.Output),
		zap.Int("records", summary.Records),
		zap.Int("filtered", summary.Filtered))
	return summary, nil
}

// writeFile writes path through a temporary file renamed on success.
func (p *Pipeline) writeFile(ctx context.Context, path string, write func(io.Writer) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := p.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = p.fs.Remove(tmp) //nolint:errcheck // Best-effort cleanup
		}
	}()

	err = write(f)
	err = multierr.Append(err, f.Close())
	if err != nil {
		return err
	}
	if err := p.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

func (p *Pipeline) exportSpans(ctx context.Context, in *ingested, summary *output.Summary, pipes pipemap.PipeMap) error {
	evaluator, err := attributes.NewEvaluator(p.cfg.Attributes, p.log)
	if err != nil {
		return err
	}
	anchor := output.Anchor(p.fs, in.base, in.end, p.Now())
	exporter, err := output.NewSpanExporter(p.tracer, evaluator, anchor, p.cfg.TraceID)
	if err != nil {
		return err
	}
	return exporter.Export(ctx, p.cfg.Input, summary.Written, in.collector.Parents, pipes, in.end)
}
