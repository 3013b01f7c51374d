package listen

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/randalmurphal/signalbus/pkg/signalbus"
	"github.com/randalmurphal/signalbus/pkg/signalbus/observability"
)

// Binder discovers a consumer object's handler methods and subscribes them
// to a bus, tracking the resulting handles so they can all be released with
// one Unbind call.
//
// A Binder owns only the handles it created; it never touches other
// subscriptions on the bus. Safe for concurrent use.
type Binder struct {
	logger  *slog.Logger
	onError func(error)

	mu      sync.Mutex
	handles []*signalbus.Handle
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithLogger sets the logger for configuration warnings and disposal
// reports. Default: the bound bus's logger.
func WithLogger(logger *slog.Logger) BinderOption {
	return func(b *Binder) {
		b.logger = logger
	}
}

// WithOnError sets a callback for reported (non-propagated) failures,
// currently *signalbus.DisposalError values from Unbind.
func WithOnError(fn func(error)) BinderOption {
	return func(b *Binder) {
		b.onError = fn
	}
}

// NewBinder creates an empty Binder.
func NewBinder(opts ...BinderOption) *Binder {
	b := &Binder{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bind discovers instance's handler methods and subscribes each to bus,
// scoped to owner (which may be nil for subscriptions that live until
// disposed). Returns the handles created by this call; the Binder also
// retains them for Unbind.
//
// A descriptor that fails to bind is skipped with a logged warning; the
// remaining descriptors are still bound. Binding the same instance again
// after Unbind yields a fresh, independently disposable set of handles.
func (b *Binder) Bind(instance any, bus *signalbus.Bus, owner signalbus.Owner) []*signalbus.Handle {
	if instance == nil || bus == nil {
		return nil
	}
	logger := b.logger
	if logger == nil {
		logger = bus.Logger()
	}

	descriptors := Discover(instance, logger)
	if len(descriptors) == 0 {
		return nil
	}

	rv := reflect.ValueOf(instance)
	rt := rv.Type()
	bound := make([]*signalbus.Handle, 0, len(descriptors))

	for _, d := range descriptors {
		// Bind-time validation: the descriptor must still describe this
		// method set. Guards hand-built or mismatched descriptors.
		if d.Index >= rt.NumMethod() || rt.Method(d.Index).Name != d.Name {
			observability.LogConfigWarning(logger, rt.String(), d.Name,
				"descriptor does not match consumer method set")
			continue
		}

		method := rv.Method(d.Index)
		fn := func(evt any) {
			method.Call([]reflect.Value{reflect.ValueOf(evt)})
		}

		handle, err := signalbus.SubscribeKind(bus, d.Kind, fn,
			signalbus.WithPriority(d.Priority),
			signalbus.WithOwner(owner),
		)
		if err != nil {
			observability.LogConfigWarning(logger, rt.String(), d.Name, err.Error())
			continue
		}
		bound = append(bound, handle)
	}

	b.mu.Lock()
	b.handles = append(b.handles, bound...)
	b.mu.Unlock()

	return bound
}

// Unbind disposes every handle this Binder created and clears its
// accumulation. A panicking disposal is reported and does not block
// disposing the rest.
func (b *Binder) Unbind() {
	b.mu.Lock()
	handles := b.handles
	b.handles = nil
	b.mu.Unlock()

	for _, h := range handles {
		b.dispose(h)
	}
}

// HandleCount returns the number of handles currently tracked.
func (b *Binder) HandleCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

// dispose releases one handle, converting a panic into a reported
// DisposalError.
func (b *Binder) dispose(h *signalbus.Handle) {
	defer func() {
		if r := recover(); r != nil {
			err := &signalbus.DisposalError{Handle: h.ID(), Recovered: r}
			if b.onError != nil {
				b.onError(err)
			}
			if b.logger != nil {
				b.logger.Error("handle disposal panicked",
					slog.String("handle_id", h.ID()),
					slog.Any("recovered", r),
				)
			}
		}
	}()
	h.Dispose()
}
