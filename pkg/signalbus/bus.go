package signalbus

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/signalbus/pkg/signalbus/observability"
)

// Bus is a type-keyed event registry. It maps each event kind (the static
// Go type of a published value) to a priority-ordered subscriber list,
// created lazily on first subscription.
//
// All methods are safe for concurrent use. The structural lock guards only
// the kind-to-list map; each list synchronizes itself (see subscriberList),
// so publish never holds a lock while running handlers.
//
// The zero value is not usable; create instances with New or use Default.
type Bus struct {
	mu    sync.RWMutex
	lists map[reflect.Type]*subscriberList
	cfg   busConfig
}

// New creates an independent Bus. Isolated instances carry their own
// registry and locks, which keeps tests free of shared global state.
func New(opts ...BusOption) *Bus {
	cfg := busConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus{
		lists: make(map[reflect.Type]*subscriberList),
		cfg:   cfg,
	}
}

var (
	defaultMu  sync.Mutex
	defaultBus *Bus
)

// Default returns the process-wide bus, creating it on first use.
func Default() *Bus {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultBus == nil {
		defaultBus = New()
	}
	return defaultBus
}

// Reset clears and discards the process-wide bus. The next Default call
// creates a fresh one. Intended for test teardown.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultBus != nil {
		defaultBus.Clear()
	}
	defaultBus = nil
}

// Subscribe registers fn for events of type T on the given bus.
//
// Returns ErrNilHandler when fn is nil. The returned handle's Dispose
// removes the subscription idempotently.
func Subscribe[T any](bus *Bus, fn func(T), opts ...SubscribeOption) (*Handle, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return bus.attach(reflect.TypeFor[T](), fn, false, opts)
}

// SubscribeKind registers an untyped handler for the event kind given as a
// reflect.Type. This is the binding surface for the listen package, where
// event kinds are only known at runtime; application code should prefer
// the typed Subscribe.
//
// Publishing to a kind that has at least one untyped handler boxes the
// event once per publish call; typed subscriptions keep the publish path
// allocation-free.
func SubscribeKind(bus *Bus, kind reflect.Type, fn func(any), opts ...SubscribeOption) (*Handle, error) {
	if fn == nil || kind == nil {
		return nil, ErrNilHandler
	}
	return bus.attach(kind, fn, true, opts)
}

// attach creates the handle and inserts it into the per-kind list.
func (b *Bus) attach(kind reflect.Type, fn any, dynamic bool, opts []SubscribeOption) (*Handle, error) {
	cfg := subscribeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Handle{
		id:       uuid.NewString(),
		kindName: kind.String(),
		priority: cfg.priority,
		owner:    cfg.owner,
		fn:       fn,
		dynamic:  dynamic,
	}

	b.listFor(kind).add(h)

	observability.LogSubscribe(b.cfg.logger, h.kindName, h.id, h.priority)
	if b.cfg.metrics != nil {
		b.cfg.metrics.RecordSubscriptionAdded(context.Background(), h.kindName)
	}
	return h, nil
}

// listFor returns the subscriber list for kind, creating it lazily.
func (b *Bus) listFor(kind reflect.Type) *subscriberList {
	b.mu.RLock()
	l := b.lists[kind]
	b.mu.RUnlock()
	if l != nil {
		return l
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if l = b.lists[kind]; l == nil {
		l = newSubscriberList(kind, b)
		b.lists[kind] = l
	}
	return l
}

// Publish dispatches evt to every live subscription for type T, in
// non-increasing priority order (stable on ties).
//
// Publishing to a kind with no subscribers is a no-op. With only typed
// subscriptions and no metrics recorder configured, Publish performs no
// heap allocation.
//
// Handlers run synchronously on the calling goroutine against a snapshot
// of the subscriber list: subscriptions added by a handler (or another
// goroutine) during this call become visible to the next publish. A
// panicking handler is recovered and reported; remaining handlers still
// run. Entries whose owner has expired are skipped and pruned in the same
// pass, without a separate sweep.
func Publish[T any](bus *Bus, evt T) {
	if bus == nil {
		return
	}
	bus.mu.RLock()
	l := bus.lists[reflect.TypeFor[T]()]
	bus.mu.RUnlock()
	if l == nil {
		return
	}

	entries := l.snapshot()
	if len(entries) == 0 {
		return
	}

	var start time.Time
	if bus.cfg.metrics != nil {
		start = time.Now()
	}

	var boxed any
	haveBoxed := false
	invoked := 0
	sawDead := false

	for _, h := range entries {
		if h.expired() {
			// Mark owner-expired entries disposed so stale snapshots held by
			// concurrent publishes skip them as well.
			h.disposed.Store(true)
			sawDead = true
			continue
		}
		switch fn := h.fn.(type) {
		case func(T):
			invokeTyped(bus, h, fn, evt)
			invoked++
		case func(any):
			if !haveBoxed {
				boxed = evt
				haveBoxed = true
			}
			invokeDynamic(bus, h, fn, boxed)
			invoked++
		}
	}

	if sawDead {
		if n := l.compact(); n > 0 {
			bus.notePruned(l.kind.String(), n)
		}
	}
	if bus.cfg.metrics != nil {
		bus.cfg.metrics.RecordPublish(context.Background(), l.kind.String(), invoked, time.Since(start))
	}
}

// invokeTyped calls a typed handler with panic recovery.
func invokeTyped[T any](b *Bus, h *Handle, fn func(T), evt T) {
	defer b.recoverInvoke(h)
	fn(evt)
}

// invokeDynamic calls an untyped handler with panic recovery.
func invokeDynamic(b *Bus, h *Handle, fn func(any), evt any) {
	defer b.recoverInvoke(h)
	fn(evt)
}

// recoverInvoke converts a handler panic into a reported HandlerError.
func (b *Bus) recoverInvoke(h *Handle) {
	r := recover()
	if r == nil {
		return
	}
	b.report(&HandlerError{Kind: h.kindName, Handle: h.id, Recovered: r})
	observability.LogHandlerError(b.cfg.logger, h.kindName, h.id, r)
	if b.cfg.metrics != nil {
		b.cfg.metrics.RecordHandlerError(context.Background(), h.kindName)
	}
}

// report delivers a non-propagated failure to the configured callback.
func (b *Bus) report(err error) {
	if b.cfg.onError != nil {
		b.cfg.onError(err)
	}
}

// noteRemoved records one subscription leaving the bus, whatever the
// cause: explicit Dispose, owner expiry, or Clear. Keeps the active
// subscriptions gauge balanced against RecordSubscriptionAdded.
func (b *Bus) noteRemoved(kind, id string) {
	observability.LogDispose(b.cfg.logger, kind, id)
	if b.cfg.metrics != nil {
		b.cfg.metrics.RecordSubscriptionRemoved(context.Background(), kind)
	}
}

// notePruned records owner-expired subscriptions removed during publish.
func (b *Bus) notePruned(kind string, n int) {
	observability.LogPrune(b.cfg.logger, kind, n)
	if b.cfg.metrics != nil {
		ctx := context.Background()
		b.cfg.metrics.RecordPruned(ctx, kind, n)
		for i := 0; i < n; i++ {
			b.cfg.metrics.RecordSubscriptionRemoved(ctx, kind)
		}
	}
}

// Clear atomically discards all subscriber lists. Handles issued before
// Clear deliver nothing afterwards; their Dispose remains a safe no-op.
func (b *Bus) Clear() {
	b.mu.Lock()
	old := b.lists
	b.lists = make(map[reflect.Type]*subscriberList)
	b.mu.Unlock()

	for _, l := range old {
		// Mark entries disposed before dropping so each removal is
		// accounted exactly once, even if a handle is disposed later.
		for _, h := range l.snapshot() {
			if !h.disposed.Swap(true) {
				b.noteRemoved(h.kindName, h.id)
			}
		}
		l.drop()
	}
}

// SubscriberCount returns the number of entries currently registered for
// type T, including expired entries not yet pruned. Useful for monitoring
// and tests.
func SubscriberCount[T any](bus *Bus) int {
	bus.mu.RLock()
	l := bus.lists[reflect.TypeFor[T]()]
	bus.mu.RUnlock()
	if l == nil {
		return 0
	}
	return l.len()
}

// Logger returns the bus's configured logger, which may be nil. The listen
// and registrar layers default to it so warnings land in one place.
func (b *Bus) Logger() *slog.Logger {
	return b.cfg.logger
}
