package framework

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/microctl/pkg/event"
)

const (
	evPosted event.Kind = iota
	evChained
	evTimeout
)

type loopTestEnv struct {
	loop   *Loop
	lock   sync.Mutex
	events []event.Kind
	doneCh chan struct{}
}

func newLoopTestEnv() *loopTestEnv {
	env := &loopTestEnv{loop: NewLoop(), doneCh: make(chan struct{})}
	env.loop.Timers.Quantum = time.Millisecond
	return env
}

func (e *loopTestEnv) record(ev event.Event) {
	e.lock.Lock()
	e.events = append(e.events, ev.Kind())
	e.lock.Unlock()
}

func (e *loopTestEnv) recorded() []event.Kind {
	e.lock.Lock()
	defer e.lock.Unlock()
	return append([]event.Kind(nil), e.events...)
}

func (e *loopTestEnv) run(t *testing.T, runners ...Runnable) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.loop.AddRunnable(runners...)
	errCh := make(chan error, 1)
	go func() { errCh <- e.loop.Run(ctx) }()
	select {
	case <-e.doneCh:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
	cancel()
	return <-errCh
}

func TestLoopPostFromRunner(t *testing.T) {
	env := newLoopTestEnv()
	env.loop.Events.OnFunc(evPosted, func(ev event.Event) {
		env.record(ev)
		env.loop.Events.Raise(event.Signal(evChained))
	})
	env.loop.Events.OnFunc(evChained, func(ev event.Event) {
		env.record(ev)
		close(env.doneCh)
	})
	poster := RunFunc(func(ctx context.Context) error {
		LoopCtlFrom(ctx).Post(event.Signal(evPosted))
		<-ctx.Done()
		return ctx.Err()
	})
	require.Equal(t, context.Canceled, env.run(t, poster))
	require.Equal(t, []event.Kind{evPosted, evChained}, env.recorded())
}

func TestLoopDoAndTimers(t *testing.T) {
	env := newLoopTestEnv()
	env.loop.Events.OnFunc(evTimeout, func(ev event.Event) {
		env.record(ev)
		close(env.doneCh)
	})
	env.loop.Do(func() {
		require.False(t, env.loop.Events.Draining())
		env.loop.Timers.Start(evTimeout, 5*time.Millisecond, false)
	})
	require.Equal(t, context.Canceled, env.run(t))
	require.Equal(t, []event.Kind{evTimeout}, env.recorded())
}

func TestLoopStopsOnRunnerFailure(t *testing.T) {
	loop := NewLoop()
	failure := errors.New("link lost")
	loop.AddRunnable(RunFunc(func(ctx context.Context) error {
		return failure
	}))
	require.Equal(t, failure, loop.Run(context.Background()))
}

func TestRunnerAggregatesErrors(t *testing.T) {
	first, second := errors.New("first"), errors.New("second")
	r := NewRunner().Go(
		RunFunc(func(ctx context.Context) error { return first }),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return second
		}),
		NamedRun("quiet", RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})),
	)
	err := r.Wait()
	errs, ok := err.(Errors)
	require.True(t, ok)
	require.Len(t, errs, 2)
	require.Contains(t, errs, first)
	require.Contains(t, errs, second)
	require.Contains(t, err.Error(), "multiple errors:")
}

func TestErrorsAggregate(t *testing.T) {
	var errs Errors
	require.Nil(t, errs.Add(nil).Aggregate())
	single := errors.New("single")
	errs.Add(single)
	require.Equal(t, single, errs.Aggregate())
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopCh := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunWithContextCancel(ctx, func() { close(stopCh) }, func() error {
			<-stopCh
			return nil
		})
	}()
	cancel()
	require.Equal(t, context.Canceled, <-errCh)

	failure := errors.New("fail")
	require.Equal(t, failure, RunWithContextCancel(context.Background(), nil, func() error {
		return failure
	}))
}

type countCloser struct{ count int }

func (c *countCloser) Close() error {
	c.count++
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	closer := &countCloser{}
	require.NoError(t, RunWithContextCloser(context.Background(), closer, func() error { return nil }))
	require.Equal(t, 1, closer.count)
}

func TestLoopTicksAtTimerQuantum(t *testing.T) {
	env := newLoopTestEnv()
	env.loop.Events.OnFunc(evTimeout, func(ev event.Event) {
		env.record(ev)
		close(env.doneCh)
	})
	start := time.Now()
	env.loop.Do(func() {
		env.loop.Timers.Start(evTimeout, 100*time.Millisecond, false)
	})
	require.Equal(t, context.Canceled, env.run(t))
	require.Equal(t, []event.Kind{evTimeout}, env.recorded())
	require.True(t, time.Since(start) >= 100*time.Millisecond)
}
