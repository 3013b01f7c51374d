// Package signalbus provides an in-process, type-keyed publish/subscribe
// dispatcher.
//
// Events are dispatched by their static Go type: publishing a value of type
// T invokes every handler subscribed for T, synchronously, in the caller's
// goroutine. There are no internal goroutines, channels, or queues.
//
// Design goals:
//   - Allocation-free publish for typed subscriptions (see Publish)
//   - Deterministic ordering: non-increasing priority, stable on ties
//   - Automatic expiry of subscriptions whose Owner is no longer alive
//   - Safe structural mutation from concurrent callers and from handlers
//     running inside a publish (copy-on-write subscriber lists)
//
// Basic usage:
//
//	type Ping struct{ Seq int }
//
//	bus := signalbus.New()
//	handle, _ := signalbus.Subscribe(bus, func(p Ping) {
//	    fmt.Println("ping", p.Seq)
//	}, signalbus.WithPriority(10))
//	defer handle.Dispose()
//
//	signalbus.Publish(bus, Ping{Seq: 1})
//
// A process-wide bus is available through Default. Handlers that need to
// outlive their owning object should not pass an Owner; handlers tied to a
// host object pass it with WithOwner and are pruned automatically once the
// owner reports it is no longer alive.
//
// The subpackages build on this core: listen discovers handler methods on
// consumer objects by naming convention, and registrar ties discovered
// handlers to a host's activate/deactivate lifecycle.
package signalbus
