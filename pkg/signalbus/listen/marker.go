// Package listen discovers event handler methods on consumer objects and
// binds them into a signalbus.Bus, so consumers declare handlers instead of
// writing subscribe/unsubscribe boilerplate.
//
// # Marker convention
//
// A handler method is any exported method whose name is "On" followed by an
// upper-case letter and that takes exactly one value parameter:
//
//	type ScoreKeeper struct{ total int }
//
//	func (k *ScoreKeeper) OnGoalScored(e GoalScored) { k.total += e.Points }
//
// The parameter type is the event kind the method is subscribed to. Marked
// methods that take zero or multiple parameters, take a pointer parameter,
// or return values are excluded with a logged configuration warning;
// discovery of the remaining methods continues.
//
// # Priority
//
// A consumer type may implement Prioritized to assign per-method
// priorities; methods not present in the map default to 0.
//
// # Caching
//
// Descriptors are built once per concrete consumer type and cached for the
// process lifetime. The cache mirrors static type structure, so it is
// append-only and never invalidated. Concurrent first-time discovery of the
// same type is resolved first-writer-wins; descriptors are pure data, so
// the race is benign.
package listen

// Listener tags a value as eligible for automatic handler discovery by the
// registrar package. Attachments of a host that do not implement Listener
// are ignored during registration.
//
// The method body is conventionally empty:
//
//	func (k *ScoreKeeper) EventListener() {}
type Listener interface {
	EventListener()
}

// Prioritized lets a consumer type assign priorities to its handler
// methods, keyed by method name. Higher priorities run first; methods
// absent from the map default to 0.
//
// Priorities describe static type structure and must not vary between
// instances of the same type: descriptors are cached per type, so only the
// first discovered instance's priorities take effect.
type Prioritized interface {
	ListenerPriorities() map[string]int
}
