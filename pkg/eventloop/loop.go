// Package eventloop is a single-threaded task queue with cancellable timers.
//
// Every posted task and timer callback runs on the goroutine that drives the
// loop, one at a time, so state touched only from callbacks needs no locking.
// A Loop runs either against the wall clock (New + Run) or against a virtual
// clock that only moves when Advance is called (NewVirtual), which makes timer
// behaviour deterministic in tests and simulations.
package eventloop

import (
	"container/heap"
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Timer is a pending callback. Stop cancels it.
type Timer struct {
	loop  *Loop
	due   time.Time
	seq   uint64
	fn    func()
	index int // position in the heap, -1 once fired or stopped
}

// Stop cancels the timer. It reports whether the call prevented the callback
// from running.
func (t *Timer) Stop() bool {
	if t == nil || t.loop == nil {
		return false
	}
	l := t.loop
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&l.timers, t.index)
	return true
}

// Loop is the task queue.
type Loop struct {
	mu      sync.Mutex
	virtual bool
	now     time.Time // virtual clock only
	seq     uint64
	timers  timerHeap
	tasks   []func()
	wake    chan struct{}
	logger  *slog.Logger
	running bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger routes recovered panics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New returns a loop driven by the wall clock. Call Run to drive it.
func New(opts ...Option) *Loop {
	l := &Loop{wake: make(chan struct{}, 1), logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewVirtual returns a loop whose clock starts at start and moves only
// through Advance.
func NewVirtual(start time.Time, opts ...Option) *Loop {
	l := New(opts...)
	l.virtual = true
	l.now = start
	return l
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Time {
	if !l.virtual {
		return time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// AfterFunc schedules fn to run on the loop after d. Non-positive durations
// schedule fn for the next turn of the loop, never synchronously.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	l.mu.Lock()
	if d < 0 {
		d = 0
	}
	now := l.now
	if !l.virtual {
		now = time.Now()
	}
	l.seq++
	t := &Timer{loop: l, due: now.Add(d), seq: l.seq, fn: fn}
	heap.Push(&l.timers, t)
	l.mu.Unlock()
	l.signal()
	return t
}

// Post queues fn to run on the loop. Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.signal()
}

// Pending reports the number of queued tasks and timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) + len(l.timers)
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// takeTasks removes and returns all queued tasks.
func (l *Loop) takeTasks() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks := l.tasks
	l.tasks = nil
	return tasks
}

// popDue removes the earliest timer due at or before limit.
func (l *Loop) popDue(limit time.Time) *Timer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.timers) == 0 || l.timers[0].due.After(limit) {
		return nil
	}
	t := heap.Pop(&l.timers).(*Timer)
	if l.virtual && t.due.After(l.now) {
		l.now = t.due
	}
	return t
}

// Advance moves the virtual clock forward by d, running queued tasks and every
// timer that comes due on the way, in due order. It returns the number of
// callbacks run. Timers scheduled by callbacks also run if they fall due
// before the new time.
func (l *Loop) Advance(d time.Duration) int {
	if !l.virtual {
		panic("eventloop: Advance on a wall-clock loop")
	}
	l.mu.Lock()
	target := l.now.Add(d)
	l.mu.Unlock()

	ran := 0
	for {
		for _, task := range l.takeTasks() {
			task()
			ran++
		}
		t := l.popDue(target)
		if t == nil {
			break
		}
		t.fn()
		ran++
	}
	l.mu.Lock()
	l.now = target
	l.mu.Unlock()
	return ran
}

// RunPending runs queued tasks and timers already due without moving a
// virtual clock.
func (l *Loop) RunPending() int {
	if l.virtual {
		return l.Advance(0)
	}
	ran := 0
	for {
		tasks := l.takeTasks()
		for _, task := range tasks {
			l.safeRun(task)
		}
		ran += len(tasks)
		t := l.popDue(time.Now())
		if t == nil && len(tasks) == 0 {
			return ran
		}
		if t != nil {
			l.safeRun(t.fn)
			ran++
		}
	}
}

// Run drives a wall-clock loop until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if l.virtual {
		panic("eventloop: Run on a virtual loop")
	}
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		l.RunPending()

		wait := time.Hour
		l.mu.Lock()
		if len(l.timers) > 0 {
			wait = time.Until(l.timers[0].due)
		}
		l.mu.Unlock()
		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}
	}
}

// Running reports whether Run is driving the loop.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("eventloop: task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
