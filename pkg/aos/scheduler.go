package aos

import "time"

// Timer is a cancellable deferred call.
type Timer interface {
	Stop() bool
}

// Clock supplies time and deferred execution. Callbacks must be delivered on
// the same goroutine that calls into the engine.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Throttle runs fn at most once per limit. The first call runs immediately;
// later calls inside the window replace a single deferred run scheduled for
// the window boundary, so the last call of a burst is never lost.
type Throttle struct {
	clock   Clock
	limit   time.Duration
	fn      func()
	lastRan time.Time
	ran     bool
	pending Timer
	runs    int
}

// NewThrottle limits fn to one run per limit on clock. A non-positive limit
// runs fn on every call.
func NewThrottle(clock Clock, limit time.Duration, fn func()) *Throttle {
	return &Throttle{clock: clock, limit: limit, fn: fn}
}

// Call requests a run.
func (t *Throttle) Call() {
	if t.limit <= 0 {
		t.run()
		return
	}
	if !t.ran {
		t.run()
		return
	}
	if t.pending != nil {
		t.pending.Stop()
	}
	delay := t.limit - t.clock.Now().Sub(t.lastRan)
	if delay < 0 {
		delay = 0
	}
	t.pending = t.clock.AfterFunc(delay, func() {
		t.pending = nil
		if t.clock.Now().Sub(t.lastRan) >= t.limit {
			t.run()
		}
	})
}

func (t *Throttle) run() {
	t.fn()
	t.ran = true
	t.lastRan = t.clock.Now()
	t.runs++
}

// Runs reports how many times fn has executed.
func (t *Throttle) Runs() int { return t.runs }

// Pending reports whether a deferred run is scheduled.
func (t *Throttle) Pending() bool { return t.pending != nil }

// Debounce runs fn once the calls have stopped for wait.
type Debounce struct {
	clock   Clock
	wait    time.Duration
	fn      func()
	pending Timer
	runs    int
}

// NewDebounce delays fn until clock has seen no call for wait.
func NewDebounce(clock Clock, wait time.Duration, fn func()) *Debounce {
	return &Debounce{clock: clock, wait: wait, fn: fn}
}

// Call restarts the quiet period.
func (d *Debounce) Call() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	if d.wait <= 0 {
		d.run()
		return
	}
	d.pending = d.clock.AfterFunc(d.wait, func() {
		d.pending = nil
		d.run()
	})
}

func (d *Debounce) run() {
	d.fn()
	d.runs++
}

// Runs reports how many times fn has executed.
func (d *Debounce) Runs() int { return d.runs }

// Pending reports whether a run is scheduled.
func (d *Debounce) Pending() bool { return d.pending != nil }
