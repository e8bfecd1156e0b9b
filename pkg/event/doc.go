// Package event provides the run-to-completion event kernel.
//
// Events enter through Send (or Raise from inside a handler) and are
// dispatched from a single FIFO queue, one handler at a time. Handlers may
// Raise or Defer further events, but must not Drain; doing so panics.
//
// A Kernel is not safe for concurrent use. Callers on other goroutines
// must marshal their events onto the goroutine owning the kernel
// (see framework.Loop.Post).
package event
