package signalbus

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listEvent struct{}

var listKind = reflect.TypeOf(listEvent{})

func newTestHandle(id string, priority int) *Handle {
	return &Handle{
		id:       id,
		kindName: listKind.String(),
		priority: priority,
		fn:       func(listEvent) {},
	}
}

func ids(entries []*Handle) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.id
	}
	return out
}

// TestListAddOrdering verifies priority-descending placement with stable
// insertion order on ties.
func TestListAddOrdering(t *testing.T) {
	tests := []struct {
		name string
		add  []struct {
			id       string
			priority int
		}
		want []string
	}{
		{
			name: "descending input stays put",
			add: []struct {
				id       string
				priority int
			}{{"a", 10}, {"b", 5}, {"c", 0}},
			want: []string{"a", "b", "c"},
		},
		{
			name: "ascending input is reordered",
			add: []struct {
				id       string
				priority int
			}{{"a", 0}, {"b", 5}, {"c", 10}},
			want: []string{"c", "b", "a"},
		},
		{
			name: "ties keep insertion order",
			add: []struct {
				id       string
				priority int
			}{{"a", 0}, {"b", 0}, {"c", 5}, {"d", 0}},
			want: []string{"c", "a", "b", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newSubscriberList(listKind, nil)
			for _, e := range tt.add {
				l.add(newTestHandle(e.id, e.priority))
			}
			assert.Equal(t, tt.want, ids(l.snapshot()))
		})
	}
}

// TestListAddIsCopyOnWrite verifies a snapshot taken before a mutation is
// unaffected by it.
func TestListAddIsCopyOnWrite(t *testing.T) {
	l := newSubscriberList(listKind, nil)
	l.add(newTestHandle("a", 0))

	before := l.snapshot()
	l.add(newTestHandle("b", 10))

	assert.Equal(t, []string{"a"}, ids(before))
	assert.Equal(t, []string{"b", "a"}, ids(l.snapshot()))
}

func TestListRemove(t *testing.T) {
	l := newSubscriberList(listKind, nil)
	a := newTestHandle("a", 0)
	b := newTestHandle("b", 0)
	l.add(a)
	l.add(b)

	l.remove(a)
	assert.Equal(t, []string{"b"}, ids(l.snapshot()))

	// Removing an absent handle is a no-op.
	l.remove(a)
	assert.Equal(t, []string{"b"}, ids(l.snapshot()))

	// A handle from another list is not present either.
	l.remove(newTestHandle("c", 0))
	assert.Equal(t, []string{"b"}, ids(l.snapshot()))
}

func TestListCompact(t *testing.T) {
	l := newSubscriberList(listKind, nil)
	a := newTestHandle("a", 2)
	b := newTestHandle("b", 1)
	c := newTestHandle("c", 0)
	l.add(a)
	l.add(b)
	l.add(c)

	require.Zero(t, l.compact(), "nothing expired yet")

	b.disposed.Store(true)
	c.disposed.Store(true)
	assert.Equal(t, 2, l.compact())
	assert.Equal(t, []string{"a"}, ids(l.snapshot()))
}

func TestListDrop(t *testing.T) {
	l := newSubscriberList(listKind, nil)
	a := newTestHandle("a", 0)
	l.add(a)

	l.drop()
	assert.Zero(t, l.len())

	// Dispose after drop must not panic or resurrect anything.
	a.Dispose()
	assert.Zero(t, l.len())
}
