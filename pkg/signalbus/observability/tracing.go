package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the signalbus tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("signalbus")

// SpanManager handles trace span lifecycle for registration operations.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
//
// Spans are deliberately scoped to the registration layer: wrapping every
// publish in a span would put allocations on the dispatch hot path.
type SpanManager interface {
	// StartRegisterSpan starts a span covering a host registration pass.
	StartRegisterSpan(ctx context.Context, hostName string) (context.Context, trace.Span)

	// StartBindSpan starts a span covering the binding of one consumer object.
	// The bind span should be a child of the register span.
	StartBindSpan(ctx context.Context, consumerType string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartRegisterSpan starts a span covering a host registration pass.
func (m *otelSpanManager) StartRegisterSpan(ctx context.Context, hostName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "signalbus.register",
		trace.WithAttributes(
			attribute.String("host.name", hostName),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartBindSpan starts a span covering the binding of one consumer object.
func (m *otelSpanManager) StartBindSpan(ctx context.Context, consumerType string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "signalbus.bind."+consumerType,
		trace.WithAttributes(
			attribute.String("consumer.type", consumerType),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
