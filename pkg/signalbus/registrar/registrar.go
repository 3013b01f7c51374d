// Package registrar batches listener registration for host entities.
//
// A Host is an external object (an actor, a plugin, a scene entity) that
// carries attachments, some of which declare handler methods via the listen
// package's marker convention. The Registrar walks the attachments on
// activation, binds every listen.Listener among them to the bus with the
// host as subscription owner, and releases everything on deactivation.
// Because the host is the owner, subscriptions also expire automatically if
// the host dies without a deactivation call.
package registrar

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/signalbus/pkg/signalbus"
	"github.com/randalmurphal/signalbus/pkg/signalbus/listen"
	"github.com/randalmurphal/signalbus/pkg/signalbus/observability"
)

// Host is an external entity whose attachments may declare listeners.
// Alive gates the lifetime of every subscription the Registrar creates for
// it (see signalbus.Owner).
type Host interface {
	signalbus.Owner

	// Name identifies the host in logs and trace spans.
	Name() string

	// Attachments returns the candidate listener objects attached to the
	// host. Attachments not implementing listen.Listener are ignored.
	Attachments() []any
}

// Config controls how the Registrar reacts to lifecycle hooks.
type Config struct {
	// RegisterOnActivate makes OnActivate perform a registration pass.
	RegisterOnActivate bool

	// UnregisterOnDeactivate makes OnDeactivate release all handles.
	UnregisterOnDeactivate bool
}

// DefaultConfig enables both automatic lifecycle reactions.
func DefaultConfig() Config {
	return Config{
		RegisterOnActivate:     true,
		UnregisterOnDeactivate: true,
	}
}

// Registrar aggregates the subscriptions of one host's listeners.
// Safe for concurrent use; registration passes are serialized.
type Registrar struct {
	host   Host
	bus    *signalbus.Bus
	cfg    Config
	logger *slog.Logger
	spans  observability.SpanManager

	mu     sync.Mutex
	binder *listen.Binder
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithConfig replaces the default lifecycle configuration.
func WithConfig(cfg Config) Option {
	return func(r *Registrar) {
		r.cfg = cfg
	}
}

// WithLogger sets the logger. Default: the bus's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) {
		r.logger = logger
	}
}

// WithSpanManager enables tracing of registration passes.
// Default: no tracing.
func WithSpanManager(spans observability.SpanManager) Option {
	return func(r *Registrar) {
		if spans != nil {
			r.spans = spans
		}
	}
}

// New creates a Registrar for host on bus.
func New(host Host, bus *signalbus.Bus, opts ...Option) *Registrar {
	r := &Registrar{
		host:  host,
		bus:   bus,
		cfg:   DefaultConfig(),
		spans: observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil && bus != nil {
		r.logger = bus.Logger()
	}
	r.binder = listen.NewBinder(listen.WithLogger(r.logger))
	return r
}

// OnActivate is the lifecycle hook for the host becoming active.
// Performs a registration pass when RegisterOnActivate is set.
func (r *Registrar) OnActivate() {
	if r.cfg.RegisterOnActivate {
		r.RegisterAll()
	}
}

// OnDeactivate is the lifecycle hook for the host becoming inactive.
// Releases all handles when UnregisterOnDeactivate is set.
func (r *Registrar) OnDeactivate() {
	if r.cfg.UnregisterOnDeactivate {
		r.UnregisterAll()
	}
}

// RegisterAll binds every listener-tagged attachment of the host. It first
// unregisters any previous pass, so repeated calls never double-deliver.
func (r *Registrar) RegisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.spans.StartRegisterSpan(context.Background(), r.host.Name())
	defer r.spans.EndSpanWithError(span, nil)

	r.binder.Unbind()

	done := observability.TimedOperation()
	listeners := 0
	handles := 0

	for _, attachment := range r.host.Attachments() {
		if _, ok := attachment.(listen.Listener); !ok {
			continue
		}
		listeners++
		bindCtx, bindSpan := r.spans.StartBindSpan(ctx, reflect.TypeOf(attachment).String())
		bound := r.binder.Bind(attachment, r.bus, r.host)
		handles += len(bound)
		r.spans.AddSpanEvent(bindCtx, "listener bound",
			attribute.Int("handles", len(bound)),
		)
		r.spans.EndSpanWithError(bindSpan, nil)
	}

	observability.LogRegistration(r.logger, listeners, handles, done())
}

// UnregisterAll disposes every handle from the last registration pass and
// clears the accumulation. Safe to call when nothing is registered.
func (r *Registrar) UnregisterAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.binder.HandleCount()
	r.binder.Unbind()
	if n > 0 {
		observability.LogUnregistration(r.logger, n)
	}
}

// HandleCount returns the number of live handles from the last
// registration pass.
func (r *Registrar) HandleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.binder.HandleCount()
}
