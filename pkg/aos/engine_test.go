package aos

import (
	"errors"
	"testing"
	"time"

	"scrollreveal/pkg/html"
)

// Viewport 1000px, band 200px: an anchor at document y=1500, 100px tall, is
// in zone for scrollY in (800, 1700).
const page = `
	<div id="a" data-aos="fade"></div>
	<div id="b" data-aos="fade" data-aos-mirror></div>
	<div id="c" data-aos="fade" data-aos-once data-aos-mirror></div>
	<p id="plain"></p>`

func newEngine(t *testing.T, h *fakeHost, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(h, opts...)
}

func placeAll(t *testing.T, h *fakeHost) {
	t.Helper()
	for _, id := range []string{"a", "b", "c"} {
		h.place(t, id, 1500, 100)
	}
}

func stateOf(t *testing.T, e *Engine, n *html.Node) State {
	t.Helper()
	r, _, ok := e.Lookup(n)
	if !ok {
		t.Fatalf("no record for <%s>", n.TagName)
	}
	return r.State
}

func TestInit_ActiveAtRegistration(t *testing.T) {
	h := newFakeHost(t, `<div id="hero" data-aos="fade-up"></div>`)
	hero := h.place(t, "hero", 300, 400)

	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	r, retired, ok := e.Lookup(hero)
	if !ok || retired {
		t.Fatalf("expected a live record, ok=%v retired=%v", ok, retired)
	}
	if r.State != Active || !hero.HasClass(ActiveClass) {
		t.Errorf("expected active with class, got %v (class=%q)", r.State, hero.Classes())
	}
	if got := e.Stats(); got.Live != 1 || got.Retired != 0 || got.Passes != 1 {
		t.Errorf("unexpected stats %+v", got)
	}
	if d, _ := hero.StyleProperty("transition-duration"); d != "400ms" {
		t.Errorf("expected timing to be applied, got %q", d)
	}
}

func TestInit_RegistersOnlyMarkedElementsInOrder(t *testing.T) {
	h := newFakeHost(t, page)
	placeAll(t, h)
	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	recs := e.Records()
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, id := range []string{"a", "b", "c"} {
		if recs[i].Node != h.byID(t, id) {
			t.Errorf("record %d is not #%s", i, id)
		}
		if recs[i].Snapshot == nil || recs[i].Snapshot.AnchorTop != 1500 {
			t.Errorf("record %d has no snapshot", i)
		}
		if recs[i].State != Idle {
			t.Errorf("record %d should start idle", i)
		}
	}
}

func TestScroll_MirrorAndOnce(t *testing.T) {
	h := newFakeHost(t, page)
	placeAll(t, h)
	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	a, b, c := h.byID(t, "a"), h.byID(t, "b"), h.byID(t, "c")

	h.scrollTo(t, 900)
	for _, n := range []*html.Node{a, b, c} {
		if !n.HasClass(ActiveClass) {
			t.Errorf("#%s should be active after entering", n.Attributes["id"])
		}
	}
	if _, retired, _ := e.Lookup(c); !retired {
		t.Error("once element should retire on activation")
	}
	if got := len(e.Records()); got != 2 {
		t.Errorf("expected 2 live records, got %d", got)
	}

	h.scrollTo(t, 3000)
	if !a.HasClass(ActiveClass) {
		t.Error("non-mirror element must stay active after leaving")
	}
	if b.HasClass(ActiveClass) || stateOf(t, e, b) != Idle {
		t.Error("mirror element should revert to idle after leaving")
	}
	if !c.HasClass(ActiveClass) {
		t.Error("once wins over mirror")
	}

	h.scrollTo(t, 1000)
	if !b.HasClass(ActiveClass) || stateOf(t, e, b) != Active {
		t.Error("mirror element should reactivate on re-entry")
	}
}

func TestRefresh_OnceIsTerminal(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade" data-aos-once></div>`)
	x := h.place(t, "x", 300, 100)
	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	if !x.HasClass(ActiveClass) {
		t.Fatal("expected activation at init")
	}

	h.tops[x] = 50000
	h.scrollY = 0
	for i := 0; i < 3; i++ {
		e.Refresh()
	}
	if !x.HasClass(ActiveClass) {
		t.Error("retired element lost its marker")
	}
	r, retired, _ := e.Lookup(x)
	if !retired || r.Snapshot.AnchorTop != 300 {
		t.Errorf("retired record should keep its last snapshot, got %+v", r.Snapshot)
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	h := newFakeHost(t, page)
	placeAll(t, h)
	h.place(t, "b", 100, 50)
	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	states := func() []State {
		var out []State
		for _, r := range e.Records() {
			out = append(out, r.State)
		}
		return out
	}
	e.Refresh()
	first := states()
	e.Refresh()
	second := states()
	if len(first) != len(second) {
		t.Fatalf("registry changed size: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d: %v then %v", i, first[i], second[i])
		}
	}
}

func TestScroll_ReusesSnapshots(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade"></div>`)
	x := h.place(t, "x", 1500, 100)
	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	// layout moves without a refresh: scroll passes still use the old geometry
	h.tops[x] = 300
	h.scrollTo(t, 0)
	if x.HasClass(ActiveClass) {
		t.Error("scroll pass must not recapture geometry")
	}
	e.Refresh()
	if !x.HasClass(ActiveClass) {
		t.Error("refresh should pick up the new geometry")
	}
}

func TestScroll_Throttled(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade"></div>`)
	h.place(t, "x", 1500, 100)
	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	initial := e.Passes()

	for i := 0; i < 10; i++ {
		h.scrollY = float64(i * 100)
		h.dispatch("scroll")
		h.loop.Advance(time.Millisecond)
	}
	h.loop.Advance(time.Second)
	if got := e.Passes() - initial; got != 2 {
		t.Errorf("expected 2 scroll passes, got %d", got)
	}
	// the deferred pass saw the final offset
	if !h.byID(t, "x").HasClass(ActiveClass) {
		t.Error("final scroll position was not evaluated")
	}
	if s := e.Stats(); s.Scrolls != 2 {
		t.Errorf("expected Scrolls=2, got %+v", s)
	}
}

func TestResize_DebouncedRefresh(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade"></div>`)
	x := h.place(t, "x", 1500, 100)
	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	h.tops[x] = 300
	for i := 0; i < 10; i++ {
		h.innerHeight = 1000 - float64(i)
		h.dispatch("resize")
		h.loop.Advance(5 * time.Millisecond)
	}
	if x.HasClass(ActiveClass) {
		t.Fatal("refresh ran during the resize burst")
	}
	h.loop.Advance(50 * time.Millisecond)
	if !x.HasClass(ActiveClass) {
		t.Error("expected a refresh after the burst")
	}
	r, _, _ := e.Lookup(x)
	if r.Snapshot.ViewportHeight != 991 {
		t.Errorf("snapshot should hold the final viewport height, got %v", r.Snapshot.ViewportHeight)
	}
	if s := e.Stats(); s.Resizes != 1 {
		t.Errorf("expected one debounced refresh, got %+v", s)
	}
}

func TestStartEvent_OneShotRefresh(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade"></div>`)
	x := h.place(t, "x", 5000, 100)
	e := newEngine(t, h)
	s := DefaultSettings()
	s.StartEvent = "load"
	if err := e.Init(s); err != nil {
		t.Fatal(err)
	}

	h.dispatch("DOMContentLoaded")
	passes := e.Passes()
	if passes != 1 {
		t.Errorf("default start event should not be subscribed, passes=%d", passes)
	}

	h.tops[x] = 200
	h.dispatch("load")
	if !x.HasClass(ActiveClass) {
		t.Error("start event should refresh")
	}
	h.dispatch("load")
	if e.Passes() != 2 {
		t.Errorf("start event should fire once, passes=%d", e.Passes())
	}
}

func TestAnchor(t *testing.T) {
	h := newFakeHost(t, `
		<div id="trigger"></div>
		<div id="follower" data-aos="fade" data-aos-anchor="#trigger"></div>`)
	h.place(t, "trigger", 300, 100)
	follower := h.place(t, "follower", 9000, 100)

	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	if !follower.HasClass(ActiveClass) {
		t.Error("follower should activate from its anchor's geometry")
	}
	r, _, _ := e.Lookup(follower)
	if r.Anchor != h.byID(t, "trigger") || r.Snapshot.ElementTop != 9000 {
		t.Errorf("unexpected record %+v", r)
	}
}

func TestAnchor_NotFound(t *testing.T) {
	h := newFakeHost(t, `
		<div id="ok" data-aos="fade"></div>
		<div id="missing" data-aos="fade" data-aos-anchor="#nope"></div>
		<div id="broken" data-aos="fade" data-aos-anchor="[unterminated"></div>`)
	ok := h.place(t, "ok", 300, 100)

	e := newEngine(t, h)
	err := e.Init(DefaultSettings())
	if !errors.Is(err, ErrAnchorNotFound) {
		t.Fatalf("expected ErrAnchorNotFound, got %v", err)
	}
	var aerr *AnchorError
	if !errors.As(err, &aerr) || aerr.Selector != "#nope" {
		t.Errorf("expected first AnchorError for #nope, got %v", aerr)
	}
	if got := len(e.Records()); got != 1 {
		t.Errorf("only the resolvable element should register, got %d", got)
	}
	if !ok.HasClass(ActiveClass) {
		t.Error("the rest of the page should still be evaluated")
	}
	if _, _, found := e.Lookup(h.byID(t, "missing")); found {
		t.Error("element with missing anchor must not register")
	}
}

func TestInit_NotIdempotent(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade"></div>`)
	h.place(t, "x", 5000, 100)
	e := newEngine(t, h)
	_ = e.Init(DefaultSettings())
	_ = e.Init(DefaultSettings())

	if got := len(e.Records()); got != 1 {
		t.Errorf("re-init should replace records by identity, got %d", got)
	}
	if got := len(h.listeners["scroll"]); got != 2 {
		t.Errorf("expected duplicated scroll listeners, got %d", got)
	}
}

func TestInit_AgainAfterOnceRetirement(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade" data-aos-once></div><div id="late" data-aos="fade"></div>`)
	x := h.place(t, "x", 300, 100)
	late := h.place(t, "late", 5000, 100)
	e := newEngine(t, h)
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	if _, retired, _ := e.Lookup(x); !retired {
		t.Fatal("expected #x to retire at init")
	}

	// out of zone before the second init
	h.tops[x] = 50000
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	r, retired, ok := e.Lookup(x)
	if !ok || !retired || r.State != Active {
		t.Errorf("#x should stay retired and active, got ok=%v retired=%v state=%v", ok, retired, r.State)
	}
	if got := len(e.Retired()); got != 1 {
		t.Errorf("retired list has %d entries, want 1", got)
	}
	if got := e.Records(); len(got) != 1 || got[0].Node != late {
		t.Errorf("live records = %+v, want only #late", got)
	}
	if !x.HasClass(ActiveClass) {
		t.Error("retired element lost its marker")
	}
}

func TestInit_TimingReadableFromStyle(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade" data-aos-delay="50" data-aos-easing="linear" style="height: 100px"></div>`)
	x := h.place(t, "x", 5000, 100)
	if err := newEngine(t, h).Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	for prop, want := range map[string]string{
		"height":                     "100px",
		"transition-property":        "all",
		"transition-duration":        "400ms",
		"transition-timing-function": "linear",
		"transition-delay":           "50ms",
	} {
		if got, ok := x.StyleProperty(prop); !ok || got != want {
			t.Errorf("%s = %q (%v), want %q", prop, got, ok, want)
		}
	}
}

func TestObserver(t *testing.T) {
	h := newFakeHost(t, page)
	placeAll(t, h)
	var seen []Transition
	e := newEngine(t, h, WithObserver(func(tr Transition) { seen = append(seen, tr) }))
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	h.scrollTo(t, 900)
	h.scrollTo(t, 3000)

	// a, b, c activate; b reverts
	if len(seen) != 4 {
		t.Fatalf("expected 4 transitions, got %d", len(seen))
	}
	if !seen[2].Retired || seen[2].Node != h.byID(t, "c") {
		t.Errorf("third transition should retire #c, got %+v", seen[2])
	}
	if seen[3].From != Active || seen[3].To != Idle || seen[3].ScrollY != 3000 {
		t.Errorf("unexpected mirror transition %+v", seen[3])
	}
}

type recordingStyler struct {
	timings map[*html.Node]Timing
	active  map[*html.Node]bool
}

func (s *recordingStyler) ApplyTiming(n *html.Node, t Timing) { s.timings[n] = t }
func (s *recordingStyler) SetActive(n *html.Node, on bool)    { s.active[n] = on }

func TestWithStyler(t *testing.T) {
	h := newFakeHost(t, `<div id="x" data-aos="fade" data-aos-delay="75"></div>`)
	x := h.place(t, "x", 300, 100)
	st := &recordingStyler{timings: map[*html.Node]Timing{}, active: map[*html.Node]bool{}}
	e := newEngine(t, h, WithStyler(st))
	if err := e.Init(DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	if st.timings[x].Delay != 75*time.Millisecond || !st.active[x] {
		t.Errorf("custom styler not used: %+v %+v", st.timings, st.active)
	}
	if x.HasClass(ActiveClass) {
		t.Error("default styler should not run")
	}
}
