package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/eventloop"
)

// FrameFunc receives the session whenever a frame step runs.
type FrameFunc func(name string, s *Session) error

// ErrFrameMismatch marks a frame that differs from its reference image.
// A FrameFunc wrapping it records a failure instead of aborting the replay.
var ErrFrameMismatch = errors.New("frame differs from reference")

// Result summarizes a replay.
type Result struct {
	Name     string
	Timeline []Event
	Failures []string
	Stats    aos.Stats
	Elapsed  time.Duration
	// Errors holds page script and AOS init errors.
	Errors error
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// Runner replays scenarios.
type Runner struct {
	logger   *slog.Logger
	autoInit bool
	frame    FrameFunc
	start    time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithFrames routes frame steps to fn. Without it frame steps only log.
func WithFrames(fn FrameFunc) RunnerOption {
	return func(r *Runner) { r.frame = fn }
}

// WithAutoInit controls whether pages without an AOS.init call get one.
func WithAutoInit(on bool) RunnerOption {
	return func(r *Runner) { r.autoInit = on }
}

// NewRunner returns a runner whose virtual clocks start at a fixed instant.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:   slog.Default(),
		autoInit: true,
		start:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run opens the scenario's page on a fresh virtual loop and replays its
// steps. The error is non-nil only when the replay could not proceed.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	src, err := sc.Source(ctx)
	if err != nil {
		return nil, err
	}
	loop := eventloop.NewVirtual(r.start, eventloop.WithLogger(r.logger))
	s := NewSession(loop, sc.Viewport.Width, sc.Viewport.Height,
		WithSessionLogger(r.logger), WithSettings(sc.AOS, r.autoInit))
	if err := s.Open(src); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	res := &Result{Name: sc.Name, Errors: s.Errors()}
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.step = i + 1
		failures, err := r.apply(s, st)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d (%s): %w", sc.Name, i+1, st.Kind(), err)
		}
		for _, f := range failures {
			res.Failures = append(res.Failures, fmt.Sprintf("step %d: %s", i+1, f))
		}
		loop.Advance(0)
	}

	res.Timeline = s.Timeline()
	res.Elapsed = s.Elapsed()
	if eng := s.Engine(); eng != nil {
		res.Stats = eng.Stats()
	}
	r.logger.Info("scenario finished",
		"name", sc.Name, "steps", len(sc.Steps), "transitions", len(res.Timeline),
		"failures", len(res.Failures), "elapsed", res.Elapsed)
	return res, nil
}

func (r *Runner) apply(s *Session, st Step) ([]string, error) {
	switch {
	case st.Scroll != nil:
		s.Window.ScrollTo(*st.Scroll)
	case st.ScrollBy != nil:
		s.Window.ScrollBy(*st.ScrollBy)
	case st.Wait != 0:
		s.Loop.Advance(time.Duration(st.Wait))
	case st.Resize != nil:
		s.Window.Resize(st.Resize.Width, st.Resize.Height)
	case st.Ready:
		s.Window.Ready()
	case st.Refresh:
		if eng := s.Engine(); eng != nil {
			eng.Refresh()
		}
	case st.Script != "":
		if _, err := s.Script().Run(st.Script); err != nil {
			return nil, err
		}
	case st.Frame != "":
		if r.frame == nil {
			r.logger.Debug("scenario: frame skipped", "name", st.Frame)
			return nil, nil
		}
		return r.emit(st.Frame, s, nil)
	case len(st.Expect) > 0:
		return expect(s, st.Expect)
	case st.Sweep != nil:
		return r.sweep(s, *st.Sweep)
	}
	return nil, nil
}

// emit hands a frame to the FrameFunc, appending reference mismatches to
// failures.
func (r *Runner) emit(name string, s *Session, failures []string) ([]string, error) {
	err := r.frame(name, s)
	if errors.Is(err, ErrFrameMismatch) {
		return append(failures, err.Error()), nil
	}
	return failures, err
}

func (r *Runner) sweep(s *Session, sw Sweep) ([]string, error) {
	stride := sw.Stride
	if stride == 0 {
		stride = DefaultStride
	}
	target := s.Window.MaxScroll()
	if sw.To != nil {
		target = *sw.To
	}
	if target < s.Window.ScrollY() {
		stride = -stride
	}
	var failures []string
	for n := 1; ; n++ {
		from := s.Window.ScrollY()
		next := from + stride
		if (stride > 0 && next > target) || (stride < 0 && next < target) {
			next = target
		}
		if s.Window.ScrollTo(next) == from {
			return failures, nil
		}
		s.Loop.Advance(aos.ScrollThrottle)
		if sw.Frames && r.frame != nil {
			var err error
			if failures, err = r.emit(fmt.Sprintf("step%02d-%03d", s.step, n), s, failures); err != nil {
				return nil, err
			}
		}
	}
}

func expect(s *Session, want map[string]string) ([]string, error) {
	selectors := make([]string, 0, len(want))
	for sel := range want {
		selectors = append(selectors, sel)
	}
	sort.Strings(selectors)

	var failures []string
	for _, sel := range selectors {
		got, err := s.State(sel)
		if err != nil {
			return nil, err
		}
		if got != want[sel] {
			failures = append(failures, fmt.Sprintf("%s is %s, want %s (scrollY %.0f)", sel, got, want[sel], s.Window.ScrollY()))
		}
	}
	return failures, nil
}
