package signalbus

import (
	"reflect"
	"sync"
)

// subscriberList holds the subscriptions for one event kind.
//
// The entry slice is copy-on-write: every structural mutation (add, remove,
// compact) builds a fresh slice under the list mutex and installs it.
// Publish takes the mutex only to load the current slice header, then
// iterates that snapshot lock-free. Consequences:
//
//   - Subscriptions added during an in-flight publish are invisible to it
//     but visible to subsequent publishes (snapshot semantics).
//   - Handlers may subscribe or dispose re-entrantly without deadlocking.
//   - Concurrent publish and subscribe/dispose on the same kind from
//     different goroutines are race-free.
//
// Entries stay sorted non-increasing by priority; ties keep insertion
// order. New entries are appended and bubbled into position, so the common
// case of equal or lower priority is O(1).
type subscriberList struct {
	kind reflect.Type
	bus  *Bus

	mu      sync.Mutex
	entries []*Handle
}

func newSubscriberList(kind reflect.Type, bus *Bus) *subscriberList {
	return &subscriberList{kind: kind, bus: bus}
}

// add inserts the handle at its priority position.
func (l *subscriberList) add(h *Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.entries)
	next := make([]*Handle, n+1)
	copy(next, l.entries)

	i := n
	for i > 0 && next[i-1].priority < h.priority {
		next[i] = next[i-1]
		i--
	}
	next[i] = h

	l.entries = next
	h.list = l
}

// snapshot returns the current entry slice for lock-free iteration.
func (l *subscriberList) snapshot() []*Handle {
	l.mu.Lock()
	s := l.entries
	l.mu.Unlock()
	return s
}

// remove deletes the handle by identity. No-op when the handle is not
// present, which makes Dispose safe after Clear or double removal.
func (l *subscriberList) remove(h *Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.entries {
		if e == h {
			next := make([]*Handle, 0, len(l.entries)-1)
			next = append(next, l.entries[:i]...)
			next = append(next, l.entries[i+1:]...)
			l.entries = next
			return
		}
	}
}

// compact drops every expired entry. Called by publish after an iteration
// pass observed at least one dead entry. Returns the number removed.
//
// Removed entries are marked disposed so a later Dispose call on them is
// a no-op and the removal is accounted exactly once.
func (l *subscriberList) compact() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	next := make([]*Handle, 0, len(l.entries))
	for _, e := range l.entries {
		if e.expired() {
			e.disposed.Store(true)
			removed++
			continue
		}
		next = append(next, e)
	}
	if removed == 0 {
		return 0
	}
	l.entries = next
	return removed
}

// noteDisposed forwards one removal to the owning bus's accounting.
// No-op for lists detached from a bus.
func (l *subscriberList) noteDisposed(h *Handle) {
	if l.bus != nil {
		l.bus.noteRemoved(h.kindName, h.id)
	}
}

// drop empties the list. Used by Clear; outstanding handles keep their
// list pointer but remove becomes a no-op on the emptied slice.
func (l *subscriberList) drop() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// len returns the current number of entries, live or not.
func (l *subscriberList) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
