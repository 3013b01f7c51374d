package signalbus

import (
	"log/slog"

	"github.com/randalmurphal/signalbus/pkg/signalbus/observability"
)

// BusOption configures a Bus at construction time.
type BusOption func(*busConfig)

type busConfig struct {
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	onError func(error)
}

// WithLogger sets the structured logger for subscription lifecycle events
// and reported handler failures. Default: no logging.
func WithLogger(logger *slog.Logger) BusOption {
	return func(cfg *busConfig) {
		cfg.logger = logger
	}
}

// WithMetrics sets the metrics recorder for bus operations.
// Default: none. Recording metrics adds attribute allocations to the
// publish path, so leave unset where the zero-allocation guarantee matters.
func WithMetrics(recorder observability.MetricsRecorder) BusOption {
	return func(cfg *busConfig) {
		if recorder != nil {
			cfg.metrics = recorder
		}
	}
}

// WithOnError sets a callback invoked with every reported (non-propagated)
// failure: *HandlerError and *DisposalError values. The callback runs on
// the publishing goroutine and must not panic.
func WithOnError(fn func(error)) BusOption {
	return func(cfg *busConfig) {
		cfg.onError = fn
	}
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

type subscribeConfig struct {
	priority int
	owner    Owner
}

// WithPriority sets the subscription priority. Higher priorities are
// invoked first; equal priorities fire in subscription order. Default: 0.
func WithPriority(p int) SubscribeOption {
	return func(cfg *subscribeConfig) {
		cfg.priority = p
	}
}

// WithOwner scopes the subscription to an owner's lifetime. Once the owner
// reports Alive() == false the subscription is never invoked again and is
// pruned by the next publish to its kind.
func WithOwner(owner Owner) SubscribeOption {
	return func(cfg *subscribeConfig) {
		cfg.owner = owner
	}
}
