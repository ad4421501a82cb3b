package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"scrollreveal/pkg/eventloop"
	"scrollreveal/pkg/scenario"
)

// #x sits at document y=1508; with an 800x600 viewport it is in the zone for
// 1028 < scrollY < 1488.
const page = `
	<div style="height: 1500px"></div>
	<div id="x" data-aos="fade-up" style="height: 100px"></div>
	<div style="height: 1000px"></div>`

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestModel(t *testing.T) (*model, *fakeClock) {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: start}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := scenario.NewSession(eventloop.NewVirtual(start), 800, 600, scenario.WithSessionLogger(logger))
	if err := sess.Open(page); err != nil {
		t.Fatal(err)
	}
	return newModel("test", sess, clock.now), clock
}

func TestModel_KeysScroll(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(tea.KeyPressMsg{Code: 'j'})
	m.Update(tea.KeyPressMsg{Code: 'j'})
	if got := m.sess.Window.ScrollY(); got != 2*lineStep {
		t.Fatalf("scrollY = %v", got)
	}
	m.Update(tea.KeyPressMsg{Code: 'k'})
	if got := m.sess.Window.ScrollY(); got != lineStep {
		t.Fatalf("scrollY = %v", got)
	}
	m.Update(tea.KeyPressMsg{Code: 'G'})
	if got := m.sess.Window.ScrollY(); got != m.sess.Window.MaxScroll() {
		t.Fatalf("scrollY = %v", got)
	}
	m.Update(tea.KeyPressMsg{Code: 'g'})
	if got := m.sess.Window.ScrollY(); got != 0 {
		t.Fatalf("scrollY = %v", got)
	}
}

func TestModel_TicksAdvanceTheLoop(t *testing.T) {
	m, clock := newTestModel(t)
	// the first scroll runs at once, the second is held by the throttle
	m.sess.Window.ScrollTo(1100)
	m.sess.Window.ScrollTo(2000)
	if got := m.rows()[0].state; got != "active" {
		t.Fatalf("state = %q", got)
	}
	clock.t = clock.t.Add(25 * time.Millisecond)
	_, cmd := m.Update(tickMsg(clock.t))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.sess.Engine().Passes() < 3 {
		t.Errorf("expected the held scroll pass to run, passes = %d", m.sess.Engine().Passes())
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q'})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit")
	}
}

func TestModel_Render(t *testing.T) {
	m, _ := newTestModel(t)
	m.sess.Window.ScrollTo(1100)
	out := m.render()
	for _, want := range []string{"scrollY 1100 / 2016", "div#x [fade-up]", "active", "408", "idle -> active"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}
