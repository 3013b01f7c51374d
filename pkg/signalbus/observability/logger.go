// Package observability provides production-grade observability features
// for signalbus: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// The bus's default publish path records nothing, keeping it allocation-free.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds signalbus context to a logger.
// Returns a new logger with event_kind and handle_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "main.Ping", handle.ID())
//	enriched.Warn("handler panicked") // includes event_kind, handle_id
func EnrichLogger(logger *slog.Logger, kind, handleID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_kind", kind),
		slog.String("handle_id", handleID),
	)
}

// LogSubscribe logs a new subscription.
func LogSubscribe(logger *slog.Logger, kind, handleID string, priority int) {
	if logger == nil {
		return
	}
	logger.Debug("subscription added",
		slog.String("event_kind", kind),
		slog.String("handle_id", handleID),
		slog.Int("priority", priority),
	)
}

// LogDispose logs a subscription disposal.
func LogDispose(logger *slog.Logger, kind, handleID string) {
	if logger == nil {
		return
	}
	logger.Debug("subscription disposed",
		slog.String("event_kind", kind),
		slog.String("handle_id", handleID),
	)
}

// LogHandlerError logs a recovered handler panic (non-fatal).
func LogHandlerError(logger *slog.Logger, kind, handleID string, recovered any) {
	if logger == nil {
		return
	}
	logger.Error("handler panicked",
		slog.String("event_kind", kind),
		slog.String("handle_id", handleID),
		slog.Any("recovered", recovered),
	)
}

// LogPrune logs removal of expired subscriptions during a publish.
func LogPrune(logger *slog.Logger, kind string, removed int) {
	if logger == nil {
		return
	}
	logger.Debug("pruned expired subscriptions",
		slog.String("event_kind", kind),
		slog.Int("removed", removed),
	)
}

// LogDiscovery logs descriptor discovery for a consumer type.
func LogDiscovery(logger *slog.Logger, consumerType string, descriptors int) {
	if logger == nil {
		return
	}
	logger.Debug("listener discovery completed",
		slog.String("consumer_type", consumerType),
		slog.Int("descriptors", descriptors),
	)
}

// LogConfigWarning logs a non-fatal listener configuration problem, such as
// a marked method with the wrong parameter arity.
func LogConfigWarning(logger *slog.Logger, consumerType, method, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("listener configuration warning",
		slog.String("consumer_type", consumerType),
		slog.String("method", method),
		slog.String("reason", reason),
	)
}

// LogRegistration logs a host registration pass.
func LogRegistration(logger *slog.Logger, listeners, handles int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("host listeners registered",
		slog.Int("listeners", listeners),
		slog.Int("handles", handles),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogUnregistration logs a host unregistration pass.
func LogUnregistration(logger *slog.Logger, handles int) {
	if logger == nil {
		return
	}
	logger.Info("host listeners unregistered",
		slog.Int("handles", handles),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
