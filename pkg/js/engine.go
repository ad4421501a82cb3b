// Package js runs page scripts with goja against a browser window, exposing
// a small DOM, the window scroll API and the AOS object.
package js

import (
	"fmt"
	"log/slog"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/browser"

	"github.com/dop251/goja"
)

// Engine executes JavaScript against a window's document. It must be used
// from the goroutine that drives the window's loop.
type Engine struct {
	vm     *goja.Runtime
	win    *browser.Window
	logger *slog.Logger

	aos     *aos.Engine
	aosOpts []aos.Option

	timers    map[int64]aos.Timer
	nextTimer int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used by console and for script failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithAOSOptions passes options to the engine created by AOS.init.
func WithAOSOptions(opts ...aos.Option) Option {
	return func(e *Engine) { e.aosOpts = append(e.aosOpts, opts...) }
}

// New creates a runtime bound to win with document, window, console and AOS
// globals installed.
func New(win *browser.Window, opts ...Option) *Engine {
	e := &Engine{
		vm:     goja.New(),
		win:    win,
		logger: slog.Default(),
		timers: make(map[int64]aos.Timer),
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.aosOpts) == 0 {
		e.aosOpts = []aos.Option{aos.WithLogger(e.logger)}
	}

	c := &consoleAPI{logger: e.logger}
	c.register(e.vm)

	ctx := newDOMContext(e.vm, win)
	registerDocument(ctx, e.addEventListener)
	e.registerAOS()
	e.vm.Set("setTimeout", e.setTimeout)
	e.vm.Set("clearTimeout", e.clearTimeout)
	e.vm.Set("window", e.vm.NewDynamicObject(&windowAccessor{e: e, expandos: make(map[string]goja.Value)}))
	return e
}

// Execute runs the document's scripts in order and stops at the first error.
func (e *Engine) Execute() error {
	for i, script := range e.win.Document().Scripts {
		if _, err := e.vm.RunString(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}

// Run evaluates one script.
func (e *Engine) Run(src string) (goja.Value, error) {
	return e.vm.RunString(src)
}

// AOS returns the engine created by AOS.init, or nil before the first call.
func (e *Engine) AOS() *aos.Engine { return e.aos }
