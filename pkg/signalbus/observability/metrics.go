package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records signalbus metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records a publish call with its fan-out size and duration.
	RecordPublish(ctx context.Context, kind string, handlers int, duration time.Duration)

	// RecordHandlerError records a recovered handler panic.
	RecordHandlerError(ctx context.Context, kind string)

	// RecordSubscriptionAdded records a new subscription.
	RecordSubscriptionAdded(ctx context.Context, kind string)

	// RecordSubscriptionRemoved records a disposed or pruned subscription.
	RecordSubscriptionRemoved(ctx context.Context, kind string)

	// RecordPruned records subscriptions removed because their owner expired.
	RecordPruned(ctx context.Context, kind string, count int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes      metric.Int64Counter
	publishLatency metric.Float64Histogram
	handlerErrors  metric.Int64Counter
	activeSubs     metric.Int64UpDownCounter
	prunedSubs     metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("signalbus")

	publishes, err := meter.Int64Counter("signalbus.publishes",
		metric.WithDescription("Number of publish calls"),
	)
	if err != nil {
		return nil, err
	}

	publishLatency, err := meter.Float64Histogram("signalbus.publish.latency_ms",
		metric.WithDescription("Publish fan-out latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("signalbus.handler.errors",
		metric.WithDescription("Number of recovered handler panics"),
	)
	if err != nil {
		return nil, err
	}

	activeSubs, err := meter.Int64UpDownCounter("signalbus.subscriptions.active",
		metric.WithDescription("Number of live subscriptions"),
	)
	if err != nil {
		return nil, err
	}

	prunedSubs, err := meter.Int64Counter("signalbus.subscriptions.pruned",
		metric.WithDescription("Subscriptions removed due to expired owners"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:      publishes,
		publishLatency: publishLatency,
		handlerErrors:  handlerErrors,
		activeSubs:     activeSubs,
		prunedSubs:     prunedSubs,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPublish records a publish call.
func (m *otelMetrics) RecordPublish(ctx context.Context, kind string, handlers int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("event_kind", kind),
	}
	m.publishes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.publishLatency.Record(ctx, float64(duration.Microseconds())/1000.0, metric.WithAttributes(attrs...))
}

// RecordHandlerError records a recovered handler panic.
func (m *otelMetrics) RecordHandlerError(ctx context.Context, kind string) {
	m.handlerErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_kind", kind),
	))
}

// RecordSubscriptionAdded records a new subscription.
func (m *otelMetrics) RecordSubscriptionAdded(ctx context.Context, kind string) {
	m.activeSubs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_kind", kind),
	))
}

// RecordSubscriptionRemoved records a disposed or pruned subscription.
func (m *otelMetrics) RecordSubscriptionRemoved(ctx context.Context, kind string) {
	m.activeSubs.Add(ctx, -1, metric.WithAttributes(
		attribute.String("event_kind", kind),
	))
}

// RecordPruned records owner-expired subscriptions removed during publish.
func (m *otelMetrics) RecordPruned(ctx context.Context, kind string, count int) {
	m.prunedSubs.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("event_kind", kind),
	))
}
