package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/mattheweller/vibesana/internal/log"
)

// traceName is the fixed name every breakdown trace is opened under.
const traceName = "ai-task-breakdown"

// flushTimeout bounds how long a request may wait on trace export.
const flushTimeout = 5 * time.Second

// Recorder records one trace per breakdown attempt. Every method is
// best-effort: failures while talking to the tracing backend are logged
// and swallowed, never surfaced to the caller.
type Recorder struct {
	logger *log.Logger
	tp     trace.TracerProvider
}

// NewRecorder creates a Recorder backed by the process-wide tracer
// provider. Safe to share across concurrent requests.
func NewRecorder(logger *log.Logger) *Recorder {
	return NewRecorderWithProvider(logger, nil)
}

// NewRecorderWithProvider creates a Recorder backed by a specific
// tracer provider. A nil provider resolves to the process-wide one on
// every call, so a Recorder built before InitProvider still picks up
// the installed provider.
func NewRecorderWithProvider(logger *log.Logger, tp trace.TracerProvider) *Recorder {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Recorder{logger: logger, tp: tp}
}

func (r *Recorder) tracerProvider() trace.TracerProvider {
	if r.tp != nil {
		return r.tp
	}
	return GetTracerProvider()
}

// StartBreakdown opens a trace scoped to one breakdown request. The
// returned span is always usable; with tracing disabled or broken it is
// a noop.
func (r *Recorder) StartBreakdown(ctx context.Context, description string) (outCtx context.Context, span trace.Span) {
	outCtx, span = ctx, noop.Span{}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tracing panic swallowed", "operation", "start trace", "panic", rec)
			outCtx, span = ctx, noop.Span{}
		}
	}()

	tracer := r.tracerProvider().Tracer("breakdown")
	outCtx, span = tracer.Start(ctx, traceName)

	span.SetAttributes(
		attribute.String("input.description", description),
		attribute.StringSlice("tags", []string{traceName, "openai"}),
	)

	return outCtx, span
}

// RecordSuccess attaches the outcome and metadata to the span, marks it
// successful, and flushes so the record is sent before the response.
func (r *Recorder) RecordSuccess(ctx context.Context, span trace.Span, taskCount int, source string, duration time.Duration, model string, promptTokens, completionTokens int) {
	defer r.recovered("record success")

	span.SetAttributes(
		attribute.Int("output.task_count", taskCount),
		attribute.String("output.source", source),
		attribute.Int64("metadata.duration_ms", duration.Milliseconds()),
		attribute.String("metadata.model", model),
		attribute.Int("metadata.prompt_tokens", promptTokens),
		attribute.Int("metadata.completion_tokens", completionTokens),
		attribute.StringSlice("result.tags", []string{"success", "task-generation"}),
	)
	span.SetStatus(codes.Ok, "")
	span.End()

	r.flush(ctx)
}

// RecordError attaches the error message to the span, marks it failed,
// and flushes it.
func (r *Recorder) RecordError(ctx context.Context, span trace.Span, message string) {
	defer r.recovered("record error")

	span.SetAttributes(
		attribute.String("output.error", message),
		attribute.StringSlice("result.tags", []string{"error", "function-error"}),
	)
	span.SetStatus(codes.Error, message)
	span.End()

	r.flush(ctx)
}

// flush pushes pending spans to the backend with a bounded wait.
func (r *Recorder) flush(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()

	if err := ForceFlush(flushCtx); err != nil {
		r.logger.Warn("trace flush failed", "error", err.Error())
	}
}

// recovered absorbs panics from the tracing client so observability can
// never take down a request.
func (r *Recorder) recovered(op string) {
	if rec := recover(); rec != nil {
		r.logger.Error("tracing panic swallowed", "operation", op, "panic", rec)
	}
}
