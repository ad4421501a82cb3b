// Package browser hosts a parsed page: it owns the document, its layout, the
// scroll position and the window event listeners, and it implements the
// aos.Host contract on top of an event loop.
//
// A Window is not safe for concurrent use. Drive it from the goroutine that
// runs its loop, posting work from elsewhere with Loop.Post.
package browser

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/css"
	"scrollreveal/pkg/eventloop"
	"scrollreveal/pkg/html"
	"scrollreveal/pkg/layout"
)

// Window event names.
const (
	EventScroll           = "scroll"
	EventResize           = "resize"
	EventDOMContentLoaded = "DOMContentLoaded"
	EventLoad             = "load"
)

var _ aos.Host = (*Window)(nil)

// Option configures a Window.
type Option func(*Window)

// WithLogger sets the logger used for event tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Window) { w.logger = logger }
}

// Window is a viewport over one document.
type Window struct {
	loop   *eventloop.Loop
	logger *slog.Logger

	source string
	doc    *html.Document
	tree   *layout.Tree
	dirty  bool

	width   float64
	height  float64
	scrollY float64

	listeners map[string][]func()
	dispatch  map[string]int
}

// New returns an empty window of the given viewport size.
func New(loop *eventloop.Loop, width, height float64, opts ...Option) *Window {
	w := &Window{
		loop:      loop,
		logger:    slog.Default(),
		width:     width,
		height:    height,
		listeners: make(map[string][]func()),
		dispatch:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.doc = html.NewDocument()
	w.Relayout()
	return w
}

// Load replaces the page with src. Listeners are dropped and the scroll
// position resets to the top; no events are dispatched.
func (w *Window) Load(src string) error {
	doc, err := html.Parse(src)
	if err != nil {
		return fmt.Errorf("browser: parse page: %w", err)
	}
	w.source = src
	w.doc = doc
	w.scrollY = 0
	clear(w.listeners)
	clear(w.dispatch)
	w.Relayout()
	w.logger.Debug("browser: loaded page",
		"bytes", len(src), "height", w.DocumentHeight(), "scripts", len(doc.Scripts))
	return nil
}

// Reload parses the last loaded source again.
func (w *Window) Reload() error { return w.Load(w.source) }

// Relayout recomputes the box tree, for example after a script changed the
// document. The scroll position is clamped to the new document height.
func (w *Window) Relayout() {
	w.tree = layout.NewLayoutEngine(w.width, w.height).Layout(w.doc)
	w.dirty = false
	w.scrollY = w.clamp(w.scrollY)
}

// Invalidate marks the layout stale. The next geometry query lays the page
// out again.
func (w *Window) Invalidate() { w.dirty = true }

func (w *Window) current() *layout.Tree {
	if w.dirty {
		w.Relayout()
	}
	return w.tree
}

func (w *Window) Loop() *eventloop.Loop      { return w.loop }
func (w *Window) Document() *html.Document   { return w.doc }
func (w *Window) Layout() *layout.Tree       { return w.current() }
func (w *Window) InnerWidth() float64        { return w.width }
func (w *Window) InnerHeight() float64       { return w.height }
func (w *Window) ScrollY() float64           { return w.scrollY }
func (w *Window) DocumentHeight() float64    { return w.current().Height }
func (w *Window) Now() time.Time             { return w.loop.Now() }
func (w *Window) Listeners(event string) int { return len(w.listeners[event]) }

// Dispatched reports how many times event has been dispatched since Load.
func (w *Window) Dispatched(event string) int { return w.dispatch[event] }

// MaxScroll is the largest reachable scroll offset.
func (w *Window) MaxScroll() float64 {
	return math.Max(0, w.current().Height-w.height)
}

func (w *Window) clamp(y float64) float64 {
	return math.Min(math.Max(y, 0), w.MaxScroll())
}

// ScrollTo moves the viewport and dispatches scroll when the position
// changed. It reports the new offset.
func (w *Window) ScrollTo(y float64) float64 {
	y = w.clamp(y)
	if y == w.scrollY {
		return y
	}
	w.scrollY = y
	w.DispatchEvent(EventScroll)
	return y
}

// ScrollBy scrolls relative to the current position.
func (w *Window) ScrollBy(dy float64) float64 { return w.ScrollTo(w.scrollY + dy) }

// Resize changes the viewport size, lays the page out again and dispatches
// resize.
func (w *Window) Resize(width, height float64) {
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	w.Relayout()
	w.DispatchEvent(EventResize)
}

// Ready dispatches the document lifecycle events in browser order.
func (w *Window) Ready() {
	w.DispatchEvent(EventDOMContentLoaded)
	w.DispatchEvent(EventLoad)
}

// AddEventListener subscribes fn to event.
func (w *Window) AddEventListener(event string, fn func()) {
	w.listeners[event] = append(w.listeners[event], fn)
}

// DispatchEvent runs the listeners of event synchronously in subscription
// order. Listeners added during dispatch run from the next dispatch on.
func (w *Window) DispatchEvent(event string) {
	w.dispatch[event]++
	fns := w.listeners[event]
	w.logger.Debug("browser: dispatch", "event", event, "listeners", len(fns), "scrollY", w.scrollY)
	for _, fn := range fns {
		fn()
	}
}

// AfterFunc schedules fn on the window's loop.
func (w *Window) AfterFunc(d time.Duration, fn func()) aos.Timer {
	return w.loop.AfterFunc(d, fn)
}

// BoundingTop is the top of n's border box relative to the viewport. Nodes
// without a box report 0, as getBoundingClientRect does.
func (w *Window) BoundingTop(n *html.Node) float64 {
	b, ok := w.current().BoxFor(n)
	if !ok {
		return 0
	}
	return b.Y - w.scrollY
}

// OffsetHeight is the height of n's border box, 0 without a box.
func (w *Window) OffsetHeight(n *html.Node) float64 {
	b, ok := w.current().BoxFor(n)
	if !ok {
		return 0
	}
	return b.Height
}

// BoundingRect is the viewport-relative border box of n.
func (w *Window) BoundingRect(n *html.Node) (x, y, width, height float64) {
	b, ok := w.current().BoxFor(n)
	if !ok {
		return 0, 0, 0, 0
	}
	return b.X, b.Y - w.scrollY, b.Width, b.Height
}

func (w *Window) QuerySelectorAll(selector string) ([]*html.Node, error) {
	return css.QuerySelectorAll(w.doc.Root, selector)
}

func (w *Window) QuerySelector(selector string) (*html.Node, error) {
	return css.QuerySelector(w.doc.Root, selector)
}
