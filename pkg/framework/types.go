package framework

import (
	"context"

	"github.com/robotalks/microctl/pkg/event"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// LoopControl exposes the thread-safe part of the loop to background
// runners.
type LoopControl interface {
	// Post enqueues an event to be sent on the loop goroutine.
	Post(event.Event)
	// Do enqueues fn to be run on the loop goroutine.
	Do(fn func())
	// TriggerNext delivers posted work without waiting for the next tick.
	TriggerNext()
}
