package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys for gateway and workflow spans.
const (
	AttrGatewayOp     = "gateway.op"
	AttrHTTPMethod    = "http.request.method"
	AttrHTTPStatus    = "http.response.status_code"
	AttrURLPath       = "url.path"
	AttrErrorKind     = "error.kind"
	AttrWorkflowID    = "workflow.id"
	AttrDatasetURL    = "dataset.url"
	AttrDatasetFormat = "dataset.format"
	AttrSearchLimit   = "search.limit"
	AttrResultCount   = "search.result_count"
	AttrExitCode      = "execution.exit_code"
	AttrImageCount    = "execution.image_count"
	AttrCacheHit      = "cache.hit"
)

// Span name prefixes.
const (
	SpanPrefixGateway  = "gateway."
	SpanPrefixWorkflow = "workflow."
)

// instrumentationName is used when no tracer is injected.
const instrumentationName = "github.com/photonhq/photon"

// DefaultTracer returns a tracer from the global provider, which is a no-op
// until NewProvider installs a real one.
func DefaultTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartClientSpan starts a client span for an outgoing call.
func StartClientSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = DefaultTracer()
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// StartSpan starts an internal span for a local operation such as a
// workflow step.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = DefaultTracer()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on the span, if any, and ends it.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// TraceID returns the hex trace ID of the span in ctx, or "" when there is
// no valid span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
