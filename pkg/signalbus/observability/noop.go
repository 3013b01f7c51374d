package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
// Use when metrics are disabled to avoid overhead.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordPublish does nothing.
func (NoopMetrics) RecordPublish(_ context.Context, _ string, _ int, _ time.Duration) {}

// RecordHandlerError does nothing.
func (NoopMetrics) RecordHandlerError(_ context.Context, _ string) {}

// RecordSubscriptionAdded does nothing.
func (NoopMetrics) RecordSubscriptionAdded(_ context.Context, _ string) {}

// RecordSubscriptionRemoved does nothing.
func (NoopMetrics) RecordSubscriptionRemoved(_ context.Context, _ string) {}

// RecordPruned does nothing.
func (NoopMetrics) RecordPruned(_ context.Context, _ string, _ int) {}

// NoopSpanManager is a SpanManager that does nothing.
// Use when tracing is disabled to avoid overhead.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

// noopSpan is a span that does nothing.
// We use the OTel noop package for a proper no-op span implementation.
var noopSpan = noop.Span{}

// StartRegisterSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartRegisterSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartBindSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartBindSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpanWithError does nothing.
func (NoopSpanManager) EndSpanWithError(_ trace.Span, _ error) {}

// AddSpanEvent does nothing.
func (NoopSpanManager) AddSpanEvent(_ context.Context, _ string, _ ...attribute.KeyValue) {}
