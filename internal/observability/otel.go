package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"extframe/pkg/diag"
)

// TracerName identifies framework spans.
const TracerName = "extframe"

// OTelTracer adapts an OpenTelemetry tracer to diag.Tracer.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer uses provider, or the global provider when nil.
func NewOTelTracer(provider trace.TracerProvider) *OTelTracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &OTelTracer{tracer: provider.Tracer(TracerName)}
}

// Start implements diag.Tracer.
func (t *OTelTracer) Start(ctx context.Context, operation string) (context.Context, diag.TraceSpan) {
	ctx, span := t.tracer.Start(ctx, operation)
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// LogSpanExporter is an SDK span exporter that writes each finished span to
// a logger.
type LogSpanExporter struct {
	logger diag.Logger
}

// NewLogSpanExporter exports to logger.
func NewLogSpanExporter(logger diag.Logger) *LogSpanExporter {
	return &LogSpanExporter{logger: diag.LoggerOrNop(logger)}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.logger.Info("span",
			"name", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"status", s.Status().Code.String(),
			"description", s.Status().Description,
			"duration", s.EndTime().Sub(s.StartTime()))
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter.
func (e *LogSpanExporter) Shutdown(context.Context) error { return nil }

// NewLoggingProvider returns an SDK provider that synchronously exports
// spans to logger. Callers must Shutdown the provider.
func NewLoggingProvider(logger diag.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(NewLogSpanExporter(logger)))
}
