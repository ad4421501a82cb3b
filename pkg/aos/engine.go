package aos

import (
	"errors"
	"fmt"
	"log/slog"

	"scrollreveal/pkg/html"
)

// Host is the page the engine runs against. All methods, and every listener
// and timer callback the host delivers, run on one goroutine.
type Host interface {
	Geometry
	Clock
	QuerySelectorAll(selector string) ([]*html.Node, error)
	QuerySelector(selector string) (*html.Node, error)
	AddEventListener(event string, fn func())
}

// Observer is told about every state change, after the Styler has applied it.
// Observers must not call back into the engine.
type Observer func(Transition)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithStyler replaces ClassStyler.
func WithStyler(s Styler) Option {
	return func(e *Engine) { e.styler = s }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// Engine owns the element registry and reacts to host events.
type Engine struct {
	host      Host
	styler    Styler
	logger    *slog.Logger
	observers []Observer

	settings Settings
	records  []*Record
	index    map[*html.Node]int
	retired  []*Record

	scroll *Throttle
	resize *Debounce
	passes int
}

// New returns an engine bound to host. Nothing happens until Init.
func New(host Host, opts ...Option) *Engine {
	e := &Engine{
		host:   host,
		styler: ClassStyler{},
		logger: slog.Default(),
		index:  make(map[*html.Node]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init registers every element carrying data-aos, applies its timing,
// captures snapshots, subscribes to scroll, resize and the start event, and
// runs one evaluation pass.
//
// Elements whose anchor cannot be resolved are skipped; their *AnchorError
// values are joined into the returned error after the rest of the page has
// been set up. Init is not idempotent: calling it again re-reads the
// attributes of every element and subscribes a second set of listeners.
func (e *Engine) Init(settings Settings) error {
	e.settings = settings.normalize()

	nodes, err := e.host.QuerySelectorAll(Selector)
	if err != nil {
		return fmt.Errorf("aos: query %s: %w", Selector, err)
	}

	var errs []error
	for _, n := range nodes {
		if e.isRetired(n) {
			continue
		}
		cfg, ok := ReadElementConfig(n, e.settings)
		if !ok {
			continue
		}
		anchor := n
		if cfg.Anchor != "" {
			a, err := e.host.QuerySelector(cfg.Anchor)
			if err != nil || a == nil {
				aerr := &AnchorError{Node: n, Selector: cfg.Anchor, Err: err}
				e.logger.Warn("aos: skipping element", "error", aerr)
				errs = append(errs, aerr)
				continue
			}
			anchor = a
		}
		r := &Record{
			Node:           n,
			Animation:      cfg.Animation,
			Anchor:         anchor,
			AnchorSelector: cfg.Anchor,
			Placement:      cfg.Placement,
			Timing:         cfg.Timing,
			Once:           cfg.Once,
			Mirror:         cfg.Mirror,
		}
		e.styler.ApplyTiming(n, r.Timing)
		e.register(r)
	}
	e.logger.Debug("aos: init", "elements", len(e.records), "skipped", len(errs))

	e.capture()

	e.scroll = NewThrottle(e.host, ScrollThrottle, e.evaluate)
	e.resize = NewDebounce(e.host, ResizeDebounce, e.Refresh)
	e.host.AddEventListener("scroll", e.scroll.Call)
	e.host.AddEventListener("resize", e.resize.Call)
	started := false
	e.host.AddEventListener(e.settings.StartEvent, func() {
		if started {
			return
		}
		started = true
		e.Refresh()
	})

	e.evaluate()
	return errors.Join(errs...)
}

// Refresh recaptures every live snapshot and runs one evaluation pass.
func (e *Engine) Refresh() {
	e.capture()
	e.evaluate()
}

// isRetired reports whether once has already retired n. Retired elements
// keep data-aos, so a later Init must not register them again.
func (e *Engine) isRetired(n *html.Node) bool {
	for _, r := range e.retired {
		if r.Node == n {
			return true
		}
	}
	return false
}

func (e *Engine) register(r *Record) {
	if i, ok := e.index[r.Node]; ok {
		r.State = e.records[i].State
		e.records[i] = r
		return
	}
	e.index[r.Node] = len(e.records)
	e.records = append(e.records, r)
}

func (e *Engine) capture() {
	for _, r := range e.records {
		s := Capture(e.host, r.Node, r.Anchor)
		r.Snapshot = &s
	}
}

// evaluate runs the state machine over the live registry in order.
func (e *Engine) evaluate() {
	e.passes++
	scrollY := e.host.ScrollY()
	live := e.records[:0]
	retiredAny := false
	for _, r := range e.records {
		if r.Snapshot == nil {
			live = append(live, r)
			continue
		}
		next, retire := r.step(IsInZone(*r.Snapshot, scrollY))
		if next != r.State {
			prev := r.State
			r.State = next
			e.styler.SetActive(r.Node, next == Active)
			e.logger.Debug("aos: transition",
				"tag", r.Node.TagName, "animation", r.Animation,
				"from", prev, "to", next, "scrollY", scrollY, "retired", retire)
			e.notify(Transition{
				Node:    r.Node,
				From:    prev,
				To:      next,
				Retired: retire,
				ScrollY: scrollY,
				At:      e.host.Now(),
			})
		}
		if retire {
			e.retired = append(e.retired, r)
			retiredAny = true
			continue
		}
		live = append(live, r)
	}
	for i := len(live); i < len(e.records); i++ {
		e.records[i] = nil
	}
	e.records = live
	if retiredAny {
		e.reindex()
	}
}

func (e *Engine) reindex() {
	clear(e.index)
	for i, r := range e.records {
		e.index[r.Node] = i
	}
}

func (e *Engine) notify(t Transition) {
	for _, o := range e.observers {
		o(t)
	}
}

// Settings returns the settings passed to Init, with defaults filled in.
func (e *Engine) Settings() Settings { return e.settings }

// Records returns copies of the live records in registry order.
func (e *Engine) Records() []Record {
	out := make([]Record, len(e.records))
	for i, r := range e.records {
		out[i] = *r
	}
	return out
}

// Retired returns copies of the records retired by once, in retirement order.
func (e *Engine) Retired() []Record {
	out := make([]Record, len(e.retired))
	for i, r := range e.retired {
		out[i] = *r
	}
	return out
}

// Lookup finds the record for n, live or retired.
func (e *Engine) Lookup(n *html.Node) (rec Record, retired bool, ok bool) {
	if i, found := e.index[n]; found {
		return *e.records[i], false, true
	}
	for _, r := range e.retired {
		if r.Node == n {
			return *r, true, true
		}
	}
	return Record{}, false, false
}

// Passes reports how many evaluation passes have run.
func (e *Engine) Passes() int { return e.passes }

// Stats summarises the registry.
type Stats struct {
	Live    int
	Active  int
	Retired int
	Passes  int
	Scrolls int // throttled scroll passes
	Resizes int // debounced refreshes
}

func (e *Engine) Stats() Stats {
	s := Stats{Live: len(e.records), Retired: len(e.retired), Passes: e.passes}
	for _, r := range e.records {
		if r.State == Active {
			s.Active++
		}
	}
	if e.scroll != nil {
		s.Scrolls = e.scroll.Runs()
	}
	if e.resize != nil {
		s.Resizes = e.resize.Runs()
	}
	return s
}
