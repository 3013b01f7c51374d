package listen

import (
	"log/slog"
	"reflect"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/randalmurphal/signalbus/pkg/signalbus/observability"
)

// Descriptor is the cached metadata for one discovered handler method.
// Immutable after construction.
type Descriptor struct {
	// Name is the method name, e.g. "OnGoalScored".
	Name string

	// Index is the method's index in the consumer type's method set.
	Index int

	// Kind is the event kind: the type of the method's sole parameter.
	Kind reflect.Type

	// Priority is the subscription priority for this handler.
	Priority int
}

// cache maps consumer reflect.Type to []Descriptor. LoadOrStore gives the
// required first-writer-wins semantics when two goroutines race to discover
// the same type.
var cache sync.Map

// Discover returns the handler descriptors for instance's concrete type,
// building and caching them on first encounter. Subsequent calls for the
// same type return the cached slice without re-scanning, so per-activation
// registration pays no scanning cost.
//
// Configuration warnings for invalid marked methods are logged only during
// the initial scan.
func Discover(instance any, logger *slog.Logger) []Descriptor {
	t := reflect.TypeOf(instance)
	if t == nil {
		return nil
	}
	if v, ok := cache.Load(t); ok {
		return v.([]Descriptor)
	}

	descriptors := scan(t, priorities(instance), logger)
	actual, _ := cache.LoadOrStore(t, descriptors)
	return actual.([]Descriptor)
}

// priorities extracts the per-method priority map, if the consumer
// declares one.
func priorities(instance any) map[string]int {
	if p, ok := instance.(Prioritized); ok {
		return p.ListenerPriorities()
	}
	return nil
}

// scan walks the method set of t and builds descriptors for every valid
// marked method, in method-set order.
func scan(t reflect.Type, prio map[string]int, logger *slog.Logger) []Descriptor {
	var descriptors []Descriptor
	typeName := t.String()

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !marked(m.Name) {
			continue
		}

		// NumIn counts the receiver.
		if m.Type.NumIn() != 2 {
			observability.LogConfigWarning(logger, typeName, m.Name,
				"handler method must take exactly one parameter")
			continue
		}
		if m.Type.NumOut() != 0 {
			observability.LogConfigWarning(logger, typeName, m.Name,
				"handler method must not return values")
			continue
		}
		param := m.Type.In(1)
		if param.Kind() == reflect.Pointer || param.Kind() == reflect.UnsafePointer {
			observability.LogConfigWarning(logger, typeName, m.Name,
				"handler parameter must not be a pointer")
			continue
		}

		descriptors = append(descriptors, Descriptor{
			Name:     m.Name,
			Index:    i,
			Kind:     param,
			Priority: prio[m.Name],
		})
	}

	observability.LogDiscovery(logger, typeName, len(descriptors))
	return descriptors
}

// marked reports whether a method name follows the On<Event> convention.
// "Once" or "Online" do not qualify: the character after "On" must be
// upper case.
func marked(name string) bool {
	if len(name) <= 2 || name[0] != 'O' || name[1] != 'n' {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[2:])
	return unicode.IsUpper(r)
}
