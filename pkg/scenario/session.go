package scenario

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/browser"
	"scrollreveal/pkg/eventloop"
	"scrollreveal/pkg/js"
)

// Event is one entry of a session timeline.
type Event struct {
	// At is the loop time since the page was opened.
	At         time.Duration
	Step       int
	Transition aos.Transition
}

// Session is one page open in a window, with its scripts executed and the
// AOS engine attached. It is driven from the loop's goroutine.
type Session struct {
	Loop   *eventloop.Loop
	Window *browser.Window

	logger   *slog.Logger
	settings aos.Settings
	autoInit bool

	script   *js.Engine
	opened   time.Time
	step     int
	timeline []Event
	errs     []error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger for the window, scripts and engine.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithSettings sets the settings used when no page script calls AOS.init.
// Passing autoInit false leaves such pages without an engine.
func WithSettings(settings aos.Settings, autoInit bool) SessionOption {
	return func(s *Session) {
		s.settings = settings
		s.autoInit = autoInit
	}
}

// NewSession creates a window of the given size on loop.
func NewSession(loop *eventloop.Loop, width, height float64, opts ...SessionOption) *Session {
	s := &Session{
		Loop:     loop,
		logger:   slog.Default(),
		settings: aos.DefaultSettings(),
		autoInit: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Window = browser.New(loop, width, height, browser.WithLogger(s.logger))
	return s
}

// Open loads src, runs its scripts and initializes AOS. Script failures do
// not fail the open; they are logged and kept in Errors, as a browser would.
func (s *Session) Open(src string) error {
	if err := s.Window.Load(src); err != nil {
		return err
	}
	s.opened = s.Loop.Now()
	s.timeline = nil
	s.errs = nil
	s.step = 0
	s.script = js.New(s.Window,
		js.WithLogger(s.logger),
		js.WithAOSOptions(aos.WithLogger(s.logger), aos.WithObserver(s.record)),
	)
	if err := s.script.Execute(); err != nil {
		s.logger.Warn("scenario: page script failed", "error", err)
		s.errs = append(s.errs, err)
	}
	if s.script.AOS() == nil && s.autoInit {
		if err := s.script.InitAOS(s.settings); err != nil {
			s.logger.Warn("scenario: AOS init reported errors", "error", err)
			s.errs = append(s.errs, err)
		}
	}
	s.Loop.RunPending()
	return nil
}

// Reload reopens the last page from its source.
func (s *Session) Reload(src string) error {
	if err := s.Open(src); err != nil {
		return fmt.Errorf("scenario: reload: %w", err)
	}
	return nil
}

func (s *Session) record(t aos.Transition) {
	s.timeline = append(s.timeline, Event{At: t.At.Sub(s.opened), Step: s.step, Transition: t})
}

// Engine returns the page's AOS engine, or nil if none was initialized.
func (s *Session) Engine() *aos.Engine {
	if s.script == nil {
		return nil
	}
	return s.script.AOS()
}

// Script returns the page's JavaScript runtime.
func (s *Session) Script() *js.Engine { return s.script }

// Timeline returns the transitions seen since Open.
func (s *Session) Timeline() []Event { return append([]Event(nil), s.timeline...) }

// Errors returns the script and init errors of the last Open.
func (s *Session) Errors() error { return errors.Join(s.errs...) }

// Elapsed is the loop time since Open.
func (s *Session) Elapsed() time.Duration { return s.Loop.Now().Sub(s.opened) }

// State reports how the engine sees the first element matching selector:
// "active", "idle", "retired", or "untracked".
func (s *Session) State(selector string) (string, error) {
	n, err := s.Window.QuerySelector(selector)
	if err != nil {
		return "", err
	}
	if n == nil {
		return "", fmt.Errorf("scenario: no element matches %q", selector)
	}
	eng := s.Engine()
	if eng == nil {
		return "untracked", nil
	}
	rec, retired, ok := eng.Lookup(n)
	switch {
	case !ok:
		return "untracked", nil
	case retired:
		return "retired", nil
	default:
		return rec.State.String(), nil
	}
}
