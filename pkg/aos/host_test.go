package aos

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"scrollreveal/pkg/css"
	"scrollreveal/pkg/eventloop"
	"scrollreveal/pkg/html"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeHost places elements at fixed document positions instead of running
// layout, so tests can state the geometry they need directly.
type fakeHost struct {
	loop        *eventloop.Loop
	doc         *html.Document
	scrollY     float64
	innerHeight float64
	tops        map[*html.Node]float64
	heights     map[*html.Node]float64
	listeners   map[string][]func()
}

func newFakeHost(t *testing.T, src string) *fakeHost {
	t.Helper()
	doc, err := html.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return &fakeHost{
		loop:        eventloop.NewVirtual(epoch),
		doc:         doc,
		innerHeight: 1000,
		tops:        make(map[*html.Node]float64),
		heights:     make(map[*html.Node]float64),
		listeners:   make(map[string][]func()),
	}
}

func (h *fakeHost) ScrollY() float64                  { return h.scrollY }
func (h *fakeHost) InnerHeight() float64              { return h.innerHeight }
func (h *fakeHost) BoundingTop(n *html.Node) float64  { return h.tops[n] - h.scrollY }
func (h *fakeHost) OffsetHeight(n *html.Node) float64 { return h.heights[n] }
func (h *fakeHost) Now() time.Time                    { return h.loop.Now() }

func (h *fakeHost) AfterFunc(d time.Duration, fn func()) Timer {
	return h.loop.AfterFunc(d, fn)
}

func (h *fakeHost) QuerySelectorAll(sel string) ([]*html.Node, error) {
	return css.QuerySelectorAll(h.doc.Root, sel)
}

func (h *fakeHost) QuerySelector(sel string) (*html.Node, error) {
	return css.QuerySelector(h.doc.Root, sel)
}

func (h *fakeHost) AddEventListener(event string, fn func()) {
	h.listeners[event] = append(h.listeners[event], fn)
}

func (h *fakeHost) dispatch(event string) {
	for _, fn := range h.listeners[event] {
		fn()
	}
}

// scrollTo dispatches a scroll and lets any deferred pass run.
func (h *fakeHost) scrollTo(t *testing.T, y float64) {
	t.Helper()
	h.scrollY = y
	h.dispatch("scroll")
	h.loop.Advance(ScrollThrottle)
}

func (h *fakeHost) byID(t *testing.T, id string) *html.Node {
	t.Helper()
	n, err := css.QuerySelector(h.doc.Root, "#"+id)
	if err != nil || n == nil {
		t.Fatalf("no element #%s (%v)", id, err)
	}
	return n
}

func (h *fakeHost) place(t *testing.T, id string, top, height float64) *html.Node {
	t.Helper()
	n := h.byID(t, id)
	h.tops[n] = top
	h.heights[n] = height
	return n
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
