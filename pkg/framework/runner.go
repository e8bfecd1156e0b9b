package framework

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Wait after a second stop signal.
var ErrForcedExit = errors.New("forced exit")

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner runs multiple Runnables as a group: once any of them returns,
// the others are canceled.
type Runner struct {
	Context context.Context

	cancel  context.CancelFunc
	count   int
	wg      sync.WaitGroup
	lock    sync.Mutex
	errs    Errors
	exitCh  chan struct{}
	exitOne sync.Once
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner derived from ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	r := &Runner{exitCh: make(chan struct{})}
	r.Context, r.cancel = context.WithCancel(ctx)
	return r
}

// HandleSignals cancels the group on CtrlC or SIGTERM. A second signal
// makes Wait return immediately.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		r.exitOne.Do(func() { close(r.exitCh) })
	}()
	return r
}

// Done is closed when the group is canceled.
func (r *Runner) Done() <-chan struct{} {
	return r.Context.Done()
}

// Cancel stops all runners.
func (r *Runner) Cancel() {
	r.cancel()
}

// Go spawns Runnables in the group.
func (r *Runner) Go(runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := strconv.Itoa(r.count)
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.count++
		r.wg.Add(1)
		go func(runner Runnable, name string) {
			defer r.wg.Done()
			glog.V(4).Infof("Runner[%s] started", name)
			err := runner.Run(r.Context)
			if err != nil && err != context.Canceled {
				glog.Errorf("Runner[%s] failed: %v", name, err)
			} else {
				glog.V(4).Infof("Runner[%s] stopped", name)
			}
			if err != context.Canceled {
				r.lock.Lock()
				r.errs.Add(err)
				r.lock.Unlock()
			}
			r.cancel()
		}(runner, name)
	}
	return r
}

// Wait waits until all Runnables stop and aggregates their errors.
func (r *Runner) Wait() error {
	doneCh := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(doneCh)
	}()
	select {
	case <-r.exitCh:
		return ErrForcedExit
	case <-doneCh:
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.errs.Aggregate()
}

// RunWithContextCancel runs fn which doesn't accept a context.
// onCancel is called only when the context is canceled, and is expected
// to make fn return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// RunWithContextCloser ensures closer.Close is called either on cancel or
// when fn returns.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var once sync.Once
	closeFn := func() { once.Do(func() { closer.Close() }) }
	defer closeFn()
	return RunWithContextCancel(ctx, closeFn, fn)
}
