// Package timer provides tick-driven one-shot and periodic timeout events
// keyed by event kind, with generation-based cancellation.
package timer

import (
	"fmt"
	"time"

	"github.com/robotalks/microctl/pkg/event"
)

// DefaultQuantum is the tick resolution.
const DefaultQuantum = 25 * time.Millisecond

// Ref is the generation of a timer slot. It is bumped on every Start and
// Stop and wraps at 16 bits.
type Ref uint16

// Timeout is the event raised when a timer expires.
type Timeout struct {
	K   event.Kind
	Ref Ref
}

// Kind implements event.Event.
func (t Timeout) Kind() event.Kind { return t.K }

// String implements fmt.Stringer.
func (t Timeout) String() string {
	return fmt.Sprintf("timeout(%d, ref=%d)", int(t.K), t.Ref)
}

type slot struct {
	remaining time.Duration
	period    time.Duration
	ref       Ref
}

// Service holds at most one timer per event kind.
// It is not safe for concurrent use; Tick must run on the goroutine
// owning the event kernel.
type Service struct {
	Quantum time.Duration

	events event.RaiseDrainer
	slots  []*slot
}

// New creates a Service raising timeouts into events.
func New(events event.RaiseDrainer) *Service {
	return &Service{Quantum: DefaultQuantum, events: events}
}

func (s *Service) slot(kind event.Kind) *slot {
	if kind < 0 || int(kind) >= len(s.slots) {
		return nil
	}
	return s.slots[kind]
}

func (s *Service) replace(kind event.Kind, remaining, period time.Duration) Ref {
	if kind < 0 {
		panic("timer: negative kind")
	}
	for int(kind) >= len(s.slots) {
		s.slots = append(s.slots, nil)
	}
	var ref Ref
	if t := s.slots[kind]; t != nil {
		ref = t.ref + 1
	}
	s.slots[kind] = &slot{remaining: remaining, period: period, ref: ref}
	return ref
}

// Start (re)arms the timer of kind and returns its new generation.
// A periodic timer re-arms with the same duration after each expiry.
// A non-positive duration leaves the timer inactive.
func (s *Service) Start(kind event.Kind, d time.Duration, periodic bool) Ref {
	if d < 0 {
		d = 0
	}
	var period time.Duration
	if periodic {
		period = d
	}
	return s.replace(kind, d, period)
}

// Stop disarms the timer of kind. Expiries already computed under the
// previous generation become invalid.
func (s *Service) Stop(kind event.Kind) {
	s.replace(kind, 0, 0)
}

// IsValid reports whether ref is the current generation of kind.
func (s *Service) IsValid(kind event.Kind, ref Ref) bool {
	t := s.slot(kind)
	return t != nil && t.ref == ref
}

// Active reports whether the timer of kind is armed.
func (s *Service) Active(kind event.Kind) bool {
	t := s.slot(kind)
	return t != nil && t.remaining > 0
}

// Tick advances all armed timers by one quantum. Expired timers are
// delivered in kind order; the kernel is drained after each delivery, so
// a handler may stop or restart a timer expiring in the same tick before
// it is delivered.
func (s *Service) Tick() {
	quantum := s.Quantum
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	var expired []Timeout
	for kind, t := range s.slots {
		if t == nil || t.remaining <= 0 {
			continue
		}
		if t.remaining -= quantum; t.remaining < 0 {
			t.remaining = 0
		}
		if t.remaining == 0 {
			expired = append(expired, Timeout{K: event.Kind(kind), Ref: t.ref})
			t.remaining = t.period
		}
	}
	for _, to := range expired {
		if s.IsValid(to.K, to.Ref) {
			s.events.Raise(to)
			s.events.Drain()
		}
	}
}
