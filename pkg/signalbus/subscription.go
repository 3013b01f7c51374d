package signalbus

import (
	"sync/atomic"
)

// Owner is the liveness capability for owner-scoped subscriptions.
//
// A subscription created with WithOwner is valid only while its owner
// reports Alive() == true. Once the owner expires, the subscription is
// skipped and pruned by the next publish to its event kind; no explicit
// Dispose call is required. Alive must be safe for concurrent use.
//
// The registrar package provides a generational Arena for hosts that manage
// object lifetimes explicitly.
type Owner interface {
	Alive() bool
}

// Handle is a disposable token representing one live subscription.
//
// A Handle is single-use: once disposed (explicitly, by Bus.Clear, or by
// owner expiry) it is never re-activated.
type Handle struct {
	id       string
	kindName string
	priority int
	owner    Owner

	// fn is func(T) for typed subscriptions or func(any) for subscriptions
	// created through SubscribeKind. It is immutable after creation; the
	// disposed flag is what a concurrent publish checks before invoking,
	// so a disposed handler is never called mid-iteration.
	fn      any
	dynamic bool

	disposed atomic.Bool
	list     *subscriberList
}

// ID returns the unique subscription identifier.
func (h *Handle) ID() string {
	return h.id
}

// Kind returns the name of the event kind this handle is subscribed to.
func (h *Handle) Kind() string {
	return h.kindName
}

// Priority returns the subscription priority. Higher runs first.
func (h *Handle) Priority() int {
	return h.priority
}

// Alive reports whether the subscription can still receive events:
// not disposed, and either unowned or with a live owner.
func (h *Handle) Alive() bool {
	if h.disposed.Load() {
		return false
	}
	if h.owner != nil && !h.owner.Alive() {
		return false
	}
	return true
}

// Dispose removes the subscription from its list. It is idempotent and
// side-effect-free on repeat calls, and remains safe after Bus.Clear has
// discarded the list.
//
// The disposed flag is set before the structural removal so that a publish
// iterating a snapshot that still contains this entry skips it.
func (h *Handle) Dispose() {
	if h.disposed.Swap(true) {
		return
	}
	if h.list != nil {
		h.list.remove(h)
		h.list.noteDisposed(h)
	}
}

// expired reports whether the handle should be pruned: disposed, or owned
// by an owner that is no longer alive.
func (h *Handle) expired() bool {
	if h.disposed.Load() {
		return true
	}
	return h.owner != nil && !h.owner.Alive()
}
