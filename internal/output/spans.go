package output

import (
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrzor/etrace-parser/internal/attributes"
	"github.com/mrzor/etrace-parser/internal/pipemap"
	"github.com/mrzor/etrace-parser/internal/record"
)

// SpanExporter turns exec incarnations into spans under one root span.
type SpanExporter struct {
	tracer    trace.Tracer
	evaluator *attributes.Evaluator
	anchor    time.Time
	traceID   trace.TraceID
	rootAttrs []attribute.KeyValue
}

// NewSpanExporter creates an exporter. traceID may be empty, a 32 character
// hex id, or any string to be hashed into one. anchor is the wall-clock time
// of relative time 0.
func NewSpanExporter(tracer trace.Tracer, evaluator *attributes.Evaluator, anchor time.Time, traceID string) (*SpanExporter, error) {
	id, warnings, err := attributes.TraceIDFromString(traceID)
	if err != nil {
		return nil, fmt.Errorf("invalid trace ID: %w", err)
	}
	return &SpanExporter{
		tracer:    tracer,
		evaluator: evaluator,
		anchor:    anchor,
		traceID:   id,
		rootAttrs: warnings,
	}, nil
}

func (x *SpanExporter) at(rel int64) time.Time {
	return x.anchor.Add(time.Duration(rel))
}

// Export emits one span per entry. Entries start under the span of the
// incarnation that forked them; the others hang off the root span, which
// covers [0, end].
func (x *SpanExporter) Export(ctx context.Context, name string, entries []*record.Entry, parents map[int64]record.ExecRef,
	pipes pipemap.PipeMap, end int64) error {
	rootCtx := ctx
	if x.traceID.IsValid() {
		remote := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    x.traceID,
			SpanID:     attributes.RootSpanID(x.traceID),
			TraceFlags: trace.FlagsSampled,
			Remote:     true,
		})
		rootCtx = trace.ContextWithRemoteSpanContext(ctx, remote)
	}
	rootCtx, root := x.tracer.Start(rootCtx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(x.at(0)),
		trace.WithAttributes(x.rootAttrs...),
	)
	root.SetAttributes(attribute.Int("etrace.entries", len(entries)))

	// parents begin before their children
	ordered := make([]*record.Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	spans := make(map[record.ExecRef]trace.SpanContext, len(ordered))
	for _, e := range ordered {
		if err := ctx.Err(); err != nil {
			root.End(trace.WithTimestamp(x.at(end)))
			return err
		}

		parentCtx := rootCtx
		if sc, ok := spans[ResolveParent(parents, e.Pid)]; ok {
			parentCtx = trace.ContextWithSpanContext(ctx, sc)
		}
		var links []trace.Link
		if e.Index > 0 {
			if prev, ok := spans[record.ExecRef{Pid: e.Pid, Index: e.Index - 1}]; ok {
				links = append(links, trace.Link{SpanContext: prev, Attributes: []attribute.KeyValue{attribute.String("etrace.link", "exec")}})
			}
		}

		_, span := x.tracer.Start(parentCtx, spanName(e),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithTimestamp(x.at(e.Start)),
			trace.WithLinks(links...),
		)
		spans[e.Ref()] = span.SpanContext()

		span.SetAttributes(x.entryAttributes(e, pipes)...)
		if x.evaluator != nil {
			span.SetAttributes(x.evaluator.Evaluate(e)...)
		}
		if e.ExitStatus != 0 {
			span.SetStatus(codes.Error, fmt.Sprintf("exit status %d", e.ExitStatus))
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End(trace.WithTimestamp(x.at(e.Start + e.Elapsed)))
	}

	root.SetStatus(codes.Ok, "")
	root.End(trace.WithTimestamp(x.at(end)))
	return nil
}

func spanName(e *record.Entry) string {
	if e.Binary == "" {
		return "process"
	}
	return path.Base(e.Binary)
}

func (x *SpanExporter) entryAttributes(e *record.Entry, pipes pipemap.PipeMap) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ProcessPID(int(e.Pid)),
		semconv.ProcessExecutablePath(e.Binary),
		semconv.ProcessCommandArgs(e.Argv...),
		attribute.String("process.working_directory", e.Cwd),
		attribute.Int("process.exit_code", e.ExitStatus),
		attribute.Int("etrace.index", e.Index),
		attribute.Int("etrace.files", len(e.Files)),
		attribute.Int("etrace.children", len(e.Children)),
	}
	if e.Interpreter != "" {
		attrs = append(attrs, attribute.String("etrace.interpreter", e.Interpreter))
	}
	if readers := pipes.Partners(e.Ref()); len(readers) > 0 {
		refs := make([]string, len(readers))
		for i, r := range readers {
			refs[i] = fmt.Sprintf("%d:%d", r.Pid, r.Index)
		}
		attrs = append(attrs, attribute.StringSlice("etrace.pipe_readers", refs))
	}
	return attrs
}
