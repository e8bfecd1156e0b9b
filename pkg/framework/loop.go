package framework

import (
	"context"
	"sync"
	"time"

	"github.com/robotalks/microctl/pkg/event"
	"github.com/robotalks/microctl/pkg/state"
	"github.com/robotalks/microctl/pkg/timer"
)

// Loop is the single goroutine owning the event kernel, the timers and
// the state machine. Background runners reach it through Post and Do.
type Loop struct {
	Events *event.Kernel
	Timers *timer.Service
	States *state.Machine

	runners []Runnable

	posted postList
	lock   sync.Mutex

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type postList struct {
	head *postItem
	tail *postItem
}

type postItem struct {
	ev   event.Event
	fn   func()
	next *postItem
}

func (l *postList) append(item *postItem) {
	if l.head == nil {
		l.head = item
	} else {
		l.tail.next = item
	}
	l.tail = item
}

func (l *postList) splice(src *postList) {
	*l, *src = *src, postList{}
}

var (
	loopCtxKey = &Loop{}
)

// LoopCtlFrom gets LoopControl from the context passed to runners.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop with fresh kernels.
func NewLoop() *Loop {
	events := event.New()
	timers := timer.New(events)
	return &Loop{
		Events:   events,
		Timers:   timers,
		States:   state.New(events),
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddRunnable adds background runners started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. It returns when ctx is done or any runner
// stops, after all runners stopped.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, LoopControl(l)))
	runner.Go(l.runners...)

	// Timers counts ticks in its own quantum.
	interval := l.Timers.Quantum
	if interval <= 0 {
		interval = timer.DefaultQuantum
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.deliverPosted()
	for {
		select {
		case <-runner.Done():
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case <-ticker.C:
			l.deliverPosted()
			l.Timers.Tick()
		case <-l.wakeUpCh:
			l.deliverPosted()
		}
	}
}

// Post implements LoopControl.
func (l *Loop) Post(ev event.Event) {
	l.enqueue(&postItem{ev: ev})
}

// Do implements LoopControl.
func (l *Loop) Do(fn func()) {
	l.enqueue(&postItem{fn: fn})
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (l *Loop) enqueue(item *postItem) {
	l.lock.Lock()
	l.posted.append(item)
	l.lock.Unlock()
	l.TriggerNext()
}

func (l *Loop) deliverPosted() {
	var items postList
	l.lock.Lock()
	items.splice(&l.posted)
	l.lock.Unlock()
	for item := items.head; item != nil; item = item.next {
		if item.ev != nil {
			l.Events.Raise(item.ev)
		}
		if item.fn != nil {
			item.fn()
		}
		l.Events.Drain()
	}
}
