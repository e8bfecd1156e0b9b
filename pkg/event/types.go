package event

import "fmt"

// Kind identifies an event type. Kinds are small non-negative integers
// enumerated by the application.
type Kind int

// Event is a dispatched event. Each application event kind is a distinct
// Go type carrying its own payload and reporting its Kind.
type Event interface {
	Kind() Kind
}

// Signal is an event without payload.
type Signal Kind

// Kind implements Event.
func (s Signal) Kind() Kind { return Kind(s) }

// String implements fmt.Stringer.
func (s Signal) String() string {
	return fmt.Sprintf("signal(%d)", int(s))
}

// Handler handles a dispatched event.
type Handler interface {
	HandleEvent(Event)
}

// HandleEventFunc is the func form of Handler.
type HandleEventFunc func(Event)

// HandleEvent implements Handler.
func (f HandleEventFunc) HandleEvent(ev Event) {
	f(ev)
}

// Raiser queues events without dispatching them.
type Raiser interface {
	Raise(Event)
}

// Drainer dispatches queued events until none is left.
type Drainer interface {
	Drain()
}

// RaiseDrainer combines Raiser and Drainer.
type RaiseDrainer interface {
	Raiser
	Drainer
}
