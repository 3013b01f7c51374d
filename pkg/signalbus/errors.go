package signalbus

import (
	"errors"
	"fmt"
)

// ErrNilHandler is returned by Subscribe when the handler function is nil.
// It is the only error the bus surfaces to callers; handler and disposal
// failures are reported through the bus's error reporter instead.
var ErrNilHandler = errors.New("signalbus: nil handler")

// HandlerError describes a panic recovered from a subscribed handler during
// publish. It is reported, never returned: one failing handler must not
// abort the remaining fan-out.
type HandlerError struct {
	Kind      string // event kind, e.g. "main.Ping"
	Handle    string // ID of the failing subscription
	Recovered any    // value recovered from the panic
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("signalbus: handler %s for %s panicked: %v", e.Handle, e.Kind, e.Recovered)
}

// DisposalError describes a panic recovered while disposing a handle during
// bulk unbind. Reported, never returned, so one failing disposal does not
// block releasing the rest.
type DisposalError struct {
	Handle    string
	Recovered any
}

// Error implements the error interface.
func (e *DisposalError) Error() string {
	return fmt.Sprintf("signalbus: disposing handle %s panicked: %v", e.Handle, e.Recovered)
}
