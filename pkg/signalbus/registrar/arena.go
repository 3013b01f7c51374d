package registrar

import (
	"sync"
)

// Arena issues generational liveness references for hosts that manage
// object lifetimes explicitly rather than relying on garbage collection.
//
// A Ref is live while its slot still carries the generation it was
// allocated with; Release bumps the generation, invalidating every
// outstanding Ref to that slot at once. Slots are recycled, so an Arena's
// backing storage grows with peak concurrent liveness, not total
// allocations.
//
// Ref implements signalbus.Owner, so it can scope subscriptions directly:
//
//	ref := arena.Allocate()
//	signalbus.Subscribe(bus, onPing, signalbus.WithOwner(ref))
//	// ...
//	arena.Release(ref) // subscriptions pruned by the next publish
type Arena struct {
	mu   sync.Mutex
	gens []uint64
	free []int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Ref is a weak, generation-checked reference into an Arena.
// The zero Ref is not alive.
type Ref struct {
	arena *Arena
	index int
	gen   uint64
}

// Allocate reserves a slot and returns a live Ref to it.
func (a *Arena) Allocate() Ref {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		return Ref{arena: a, index: idx, gen: a.gens[idx]}
	}

	a.gens = append(a.gens, 1)
	return Ref{arena: a, index: len(a.gens) - 1, gen: 1}
}

// Release invalidates ref and every copy of it, then recycles the slot.
// Releasing a stale ref is a no-op.
func (a *Arena) Release(ref Ref) {
	if ref.arena != a {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if ref.index >= len(a.gens) || a.gens[ref.index] != ref.gen {
		return
	}
	a.gens[ref.index]++
	a.free = append(a.free, ref.index)
}

// Alive reports whether the slot still carries this Ref's generation.
// Implements signalbus.Owner.
func (r Ref) Alive() bool {
	if r.arena == nil {
		return false
	}
	r.arena.mu.Lock()
	defer r.arena.mu.Unlock()
	return r.index < len(r.arena.gens) && r.arena.gens[r.index] == r.gen
}
