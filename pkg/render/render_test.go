package render

import (
	"bytes"
	"image/png"
	"io"
	"log/slog"
	"testing"
	"time"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/browser"
	"scrollreveal/pkg/eventloop"
)

// #x occupies document y 168..268. In a 200x200 viewport the band is 40px,
// so at scrollY 0 it is visible but idle, and any scroll past 8 activates it.
const page = `
	<div style="height: 160px"></div>
	<div id="x" data-aos="fade" style="height: 100px; background-color: red"></div>
	<div style="height: 400px"></div>`

func setup(t *testing.T) (*browser.Window, *aos.Engine) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loop := eventloop.NewVirtual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	win := browser.New(loop, 200, 200, browser.WithLogger(logger))
	if err := win.Load(page); err != nil {
		t.Fatal(err)
	}
	eng := aos.New(win, aos.WithLogger(logger))
	if err := eng.Init(aos.DefaultSettings()); err != nil {
		t.Fatal(err)
	}
	return win, eng
}

func pixel(t *testing.T, r *Renderer, x, y int) [3]int {
	t.Helper()
	cr, cg, cb, _ := r.Image().At(x, y).RGBA()
	return [3]int{int(cr >> 8), int(cg >> 8), int(cb >> 8)}
}

func near(got, want [3]int) bool {
	for i := range got {
		if d := got[i] - want[i]; d < -3 || d > 3 {
			return false
		}
	}
	return true
}

func TestRender_IdleElementsFade(t *testing.T) {
	win, eng := setup(t)
	r := NewRenderer(200, 200, Options{})

	r.Render(win, eng)
	if got := pixel(t, r, 100, 190); !near(got, [3]int{255, 191, 191}) {
		t.Errorf("idle pixel = %v, want washed-out red", got)
	}
	if got := pixel(t, r, 100, 100); !near(got, [3]int{255, 255, 255}) {
		t.Errorf("spacer pixel = %v, want white", got)
	}

	win.ScrollTo(20)
	r.Render(win, eng)
	if got := pixel(t, r, 100, 190); !near(got, [3]int{255, 0, 0}) {
		t.Errorf("active pixel = %v, want red", got)
	}
}

func TestRender_WithoutEngine(t *testing.T) {
	win, _ := setup(t)
	r := NewRenderer(200, 200, Options{})
	r.Render(win, nil)
	if got := pixel(t, r, 100, 190); !near(got, [3]int{255, 0, 0}) {
		t.Errorf("pixel = %v, want red", got)
	}
}

func TestRender_Band(t *testing.T) {
	win, eng := setup(t)
	plain := NewRenderer(200, 200, Options{})
	plain.Render(win, eng)
	banded := NewRenderer(200, 200, Options{ShowBand: true})
	banded.Render(win, eng)

	if got := pixel(t, plain, 100, 10); !near(got, [3]int{255, 255, 255}) {
		t.Errorf("plain pixel = %v", got)
	}
	if got := pixel(t, banded, 100, 10); near(got, [3]int{255, 255, 255}) {
		t.Error("expected the band tint above the trigger line")
	}
	if got := pixel(t, banded, 100, 100); !near(got, [3]int{255, 255, 255}) {
		t.Errorf("pixel inside the zone = %v, want untinted", got)
	}
}

func TestRender_EncodePNG(t *testing.T) {
	win, eng := setup(t)
	r := NewRenderer(200, 200, Options{Outline: true, HUD: true})
	r.Render(win, eng)
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
		t.Errorf("bounds = %v", b)
	}
}

func TestHUDLabel(t *testing.T) {
	win, eng := setup(t)
	win.ScrollTo(20)
	if got := hudLabel(win, eng); got != "scrollY 20  active 1/1  retired 0" {
		t.Errorf("label = %q", got)
	}
	if got := hudLabel(win, nil); got != "scrollY 20" {
		t.Errorf("label = %q", got)
	}
}
