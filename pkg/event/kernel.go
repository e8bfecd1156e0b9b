package event

import "errors"

// ErrReentrantDrain is the panic value when Drain is called while a drain
// is already running, e.g. a handler calling Send.
var ErrReentrantDrain = errors.New("event: drain called from inside a handler")

// Kernel dispatches events to handlers registered per kind.
type Kernel struct {
	handlers []Handler
	queue    eventList
	deferred eventList
	draining bool
}

type eventList struct {
	head *eventItem
	tail *eventItem
	size int
}

type eventItem struct {
	ev   Event
	next *eventItem
}

func (l *eventList) push(ev Event) {
	item := &eventItem{ev: ev}
	if l.head == nil {
		l.head = item
	} else {
		l.tail.next = item
	}
	l.tail = item
	l.size++
}

func (l *eventList) pop() (Event, bool) {
	item := l.head
	if item == nil {
		return nil, false
	}
	if l.head = item.next; l.head == nil {
		l.tail = nil
	}
	l.size--
	return item.ev, true
}

// splice moves all items out of src into a fresh list.
func (l *eventList) splice(src *eventList) {
	*l, *src = *src, eventList{}
}

// New creates a Kernel.
func New() *Kernel {
	return &Kernel{}
}

// On registers the handler for kind, replacing any previous one.
// A nil handler unregisters.
func (k *Kernel) On(kind Kind, h Handler) {
	if kind < 0 {
		panic("event: negative kind")
	}
	for int(kind) >= len(k.handlers) {
		k.handlers = append(k.handlers, nil)
	}
	k.handlers[kind] = h
}

// OnFunc registers a handler func for kind.
func (k *Kernel) OnFunc(kind Kind, fn func(Event)) {
	if fn == nil {
		k.On(kind, nil)
		return
	}
	k.On(kind, HandleEventFunc(fn))
}

// Raise appends ev to the queue without dispatching.
func (k *Kernel) Raise(ev Event) {
	k.queue.push(ev)
}

// Send raises ev and drains the queue. It is used for externally
// originated events and must not be called from a handler.
func (k *Kernel) Send(ev Event) {
	k.Raise(ev)
	k.Drain()
}

// Drain dispatches queued events in FIFO order until the queue is empty,
// including events raised by handlers during this drain.
func (k *Kernel) Drain() {
	if k.draining {
		panic(ErrReentrantDrain)
	}
	k.draining = true
	defer func() { k.draining = false }()
	for {
		ev, ok := k.queue.pop()
		if !ok {
			return
		}
		if h := k.handler(ev.Kind()); h != nil {
			h.HandleEvent(ev)
		}
	}
}

// Defer holds ev back until the next Recall.
func (k *Kernel) Defer(ev Event) {
	k.deferred.push(ev)
}

// Recall raises all deferred events in their original order, after
// anything already queued. It does not drain.
func (k *Kernel) Recall() {
	var lst eventList
	lst.splice(&k.deferred)
	for {
		ev, ok := lst.pop()
		if !ok {
			return
		}
		k.Raise(ev)
	}
}

// Pending returns the number of queued events.
func (k *Kernel) Pending() int {
	return k.queue.size
}

// Deferred returns the number of deferred events.
func (k *Kernel) Deferred() int {
	return k.deferred.size
}

// Draining reports whether a drain is in progress.
func (k *Kernel) Draining() bool {
	return k.draining
}

func (k *Kernel) handler(kind Kind) Handler {
	if kind < 0 || int(kind) >= len(k.handlers) {
		return nil
	}
	return k.handlers[kind]
}
