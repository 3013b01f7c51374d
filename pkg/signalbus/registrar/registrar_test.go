package registrar_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/signalbus/pkg/signalbus"
	"github.com/randalmurphal/signalbus/pkg/signalbus/observability"
	"github.com/randalmurphal/signalbus/pkg/signalbus/registrar"
)

type damageTaken struct{ Amount int }
type healed struct{ Amount int }

// healthTracker is a listener-tagged attachment.
type healthTracker struct {
	hp int
}

func (h *healthTracker) EventListener() {}

func (h *healthTracker) OnDamageTaken(e damageTaken) { h.hp -= e.Amount }

func (h *healthTracker) OnHealed(e healed) { h.hp += e.Amount }

// untaggedTracker declares handler methods but is not listener-tagged, so
// the registrar must skip it.
type untaggedTracker struct {
	calls int
}

func (u *untaggedTracker) OnDamageTaken(e damageTaken) { u.calls++ }

// fakeHost is a Host with switchable liveness and fixed attachments.
type fakeHost struct {
	name        string
	alive       atomic.Bool
	attachments []any
}

func newFakeHost(name string, attachments ...any) *fakeHost {
	h := &fakeHost{name: name, attachments: attachments}
	h.alive.Store(true)
	return h
}

func (h *fakeHost) Alive() bool        { return h.alive.Load() }
func (h *fakeHost) Name() string       { return h.name }
func (h *fakeHost) Attachments() []any { return h.attachments }

func TestRegisterAllFiltersByListenerTag(t *testing.T) {
	bus := signalbus.New()
	tracker := &healthTracker{hp: 100}
	untagged := &untaggedTracker{}
	host := newFakeHost("unit-1", tracker, untagged, "not a listener")

	r := registrar.New(host, bus)
	r.RegisterAll()
	assert.Equal(t, 2, r.HandleCount())

	signalbus.Publish(bus, damageTaken{Amount: 30})
	signalbus.Publish(bus, healed{Amount: 10})

	assert.Equal(t, 80, tracker.hp)
	assert.Zero(t, untagged.calls, "untagged attachments must not be bound")
}

// TestRegisterAllIsIdempotent verifies repeated registration passes never
// double-deliver.
func TestRegisterAllIsIdempotent(t *testing.T) {
	bus := signalbus.New()
	tracker := &healthTracker{hp: 100}
	host := newFakeHost("unit-1", tracker)

	r := registrar.New(host, bus)
	r.RegisterAll()
	r.RegisterAll()
	r.RegisterAll()
	assert.Equal(t, 2, r.HandleCount())

	signalbus.Publish(bus, damageTaken{Amount: 5})
	assert.Equal(t, 95, tracker.hp)
}

func TestUnregisterAll(t *testing.T) {
	bus := signalbus.New()
	tracker := &healthTracker{hp: 100}
	host := newFakeHost("unit-1", tracker)

	r := registrar.New(host, bus)
	r.RegisterAll()
	r.UnregisterAll()
	assert.Zero(t, r.HandleCount())

	signalbus.Publish(bus, damageTaken{Amount: 30})
	assert.Equal(t, 100, tracker.hp)

	// Safe when nothing is registered.
	assert.NotPanics(t, r.UnregisterAll)
}

func TestLifecycleHooksFollowConfig(t *testing.T) {
	tests := []struct {
		name            string
		cfg             registrar.Config
		afterActivate   int
		afterDeactivate int
	}{
		{
			name:            "defaults register and unregister",
			cfg:             registrar.DefaultConfig(),
			afterActivate:   2,
			afterDeactivate: 0,
		},
		{
			name: "manual registration only",
			cfg: registrar.Config{
				RegisterOnActivate:     false,
				UnregisterOnDeactivate: true,
			},
			afterActivate:   0,
			afterDeactivate: 0,
		},
		{
			name: "sticky subscriptions",
			cfg: registrar.Config{
				RegisterOnActivate:     true,
				UnregisterOnDeactivate: false,
			},
			afterActivate:   2,
			afterDeactivate: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := signalbus.New()
			host := newFakeHost("unit-1", &healthTracker{hp: 100})
			r := registrar.New(host, bus, registrar.WithConfig(tt.cfg))

			r.OnActivate()
			assert.Equal(t, tt.afterActivate, r.HandleCount())

			r.OnDeactivate()
			assert.Equal(t, tt.afterDeactivate, r.HandleCount())
		})
	}
}

// TestRegisterAllEmitsSpans verifies a registration pass produces a
// register span with one child bind span per bound attachment.
func TestRegisterAllEmitsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	bus := signalbus.New()
	host := newFakeHost("unit-1", &healthTracker{hp: 100})
	r := registrar.New(host, bus,
		registrar.WithSpanManager(observability.NewSpanManager()))
	r.RegisterAll()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	var registerSpan, bindSpan *tracetest.SpanStub
	for i := range spans {
		switch {
		case spans[i].Name == "signalbus.register":
			registerSpan = &spans[i]
		case strings.HasPrefix(spans[i].Name, "signalbus.bind."):
			bindSpan = &spans[i]
		}
	}
	require.NotNil(t, registerSpan)
	require.NotNil(t, bindSpan)

	assert.Contains(t, bindSpan.Name, "healthTracker")
	assert.True(t, bindSpan.Parent.IsValid(), "bind span must be a child of the register span")

	found := false
	for _, event := range bindSpan.Events {
		if event.Name == "listener bound" {
			found = true
		}
	}
	assert.True(t, found, "bind span should carry the listener bound event")
}

// TestHostDeathExpiresSubscriptions verifies the safety net: when a host
// dies without deactivating, its subscriptions expire on the next publish.
func TestHostDeathExpiresSubscriptions(t *testing.T) {
	bus := signalbus.New()
	tracker := &healthTracker{hp: 100}
	host := newFakeHost("unit-1", tracker)

	r := registrar.New(host, bus)
	r.RegisterAll()

	host.alive.Store(false)
	signalbus.Publish(bus, damageTaken{Amount: 30})

	assert.Equal(t, 100, tracker.hp)
	assert.Zero(t, signalbus.SubscriberCount[damageTaken](bus))
}
