package signalbus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/signalbus/pkg/signalbus"
)

func TestHandleMetadata(t *testing.T) {
	bus := signalbus.New()

	handle, err := signalbus.Subscribe(bus, func(Ping) {},
		signalbus.WithPriority(7))
	require.NoError(t, err)

	assert.NotEmpty(t, handle.ID())
	assert.Equal(t, 7, handle.Priority())
	assert.Contains(t, handle.Kind(), "Ping")
	assert.True(t, handle.Alive())

	other, err := signalbus.Subscribe(bus, func(Ping) {})
	require.NoError(t, err)
	assert.NotEqual(t, handle.ID(), other.ID())
	assert.Zero(t, other.Priority())
}

// TestHandleAliveness covers the three liveness states: unowned, owned with
// a live owner, and owned with a dead owner.
func TestHandleAliveness(t *testing.T) {
	bus := signalbus.New()
	owner := newFakeOwner()

	unowned, err := signalbus.Subscribe(bus, func(Ping) {})
	require.NoError(t, err)
	owned, err := signalbus.Subscribe(bus, func(Ping) {},
		signalbus.WithOwner(owner))
	require.NoError(t, err)

	assert.True(t, unowned.Alive())
	assert.True(t, owned.Alive())

	owner.kill()
	assert.True(t, unowned.Alive(), "unowned handles do not expire")
	assert.False(t, owned.Alive())

	// Once a publish observes the expiry the handle is permanently dead,
	// even if the owner object is later reused.
	signalbus.Publish(bus, Ping{})
	owner.alive.Store(true)
	assert.False(t, owned.Alive())
}

func TestHandleDisposeBeforePublish(t *testing.T) {
	bus := signalbus.New()

	calls := 0
	handle, err := signalbus.Subscribe(bus, func(Ping) { calls++ })
	require.NoError(t, err)

	handle.Dispose()

	signalbus.Publish(bus, Ping{})
	signalbus.Publish(bus, Ping{})
	assert.Zero(t, calls)
	assert.Zero(t, signalbus.SubscriberCount[Ping](bus))
}
