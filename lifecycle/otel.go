package lifecycle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "lifecycle"

// startDispatchSpan begins a span covering one transition dispatch, including
// every hook chain it runs. The caller must end the returned span.
//
//nolint:spancheck // Span is returned to caller for ending
func startDispatchSpan(
	ctx context.Context, family, transition string, from, to State, subjectID string,
) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "lifecycle.dispatch",
		trace.WithAttributes(
			attribute.String("family", family),
			attribute.String("transition", transition),
			attribute.String("from_state", string(from)),
			attribute.String("to_state", string(to)),
			attribute.String("subject_id_hash", hashID(subjectID)),
		),
	)

	logSpanDebug(span, "dispatch span started")

	return ctx, span
}

// startCallbackSpan begins a span for a single before or after callback.
//
//nolint:spancheck // Span is returned to caller for ending
func startCallbackSpan(ctx context.Context, kind Kind, name string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "callback."+name,
		trace.WithAttributes(
			attribute.String("kind", string(kind)),
			attribute.String("callback", name),
		),
	)

	return ctx, span
}

// startOperationSpan begins a span for the core operation at the center of the
// around chain.
//
//nolint:spancheck // Span is returned to caller for ending
func startOperationSpan(ctx context.Context, family, transition string) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)

	ctx, span := tracer.Start(ctx, "operation."+transition,
		trace.WithAttributes(
			attribute.String("family", family),
			attribute.String("transition", transition),
		),
	)

	return ctx, span
}

// finishCallbackSpan records the outcome of a callback on its span. The caller
// still ends the span.
func finishCallbackSpan(span trace.Span, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("duration_ms", float64(duration.Milliseconds())))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// hashID produces a short stable hash of a subject identifier so traces can be
// correlated without recording the raw value.
func hashID(id string) string {
	if id == "" {
		return "unknown"
	}

	hash := sha256.Sum256([]byte(id))

	return hex.EncodeToString(hash[:])[:8]
}

// logSpanDebug prints span context to stderr when LIFECYCLE_DEBUG=1, useful
// when checking trace propagation locally.
func logSpanDebug(span trace.Span, message string) {
	if os.Getenv("LIFECYCLE_DEBUG") != "1" {
		return
	}

	spanCtx := span.SpanContext()
	fmt.Fprintf(os.Stderr, "[lifecycle] %s trace_id=%s span_id=%s\n",
		message, spanCtx.TraceID(), spanCtx.SpanID())
}
