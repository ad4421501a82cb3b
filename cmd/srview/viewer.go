package main

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/render"
	"scrollreveal/pkg/scenario"
)

// lineStep is how far one arrow key press scrolls.
const lineStep = 40

// viewer connects the fyne surface to a session. Methods without a fyne
// prefix run on the session's loop; UI updates go through fyne.Do.
type viewer struct {
	sess    *scenario.Session
	band    bool
	status  *widget.Label
	logger  *slog.Logger
	surface *surface
	src     string
}

func newViewer(sess *scenario.Session, band bool, status *widget.Label, logger *slog.Logger) *viewer {
	v := &viewer{sess: sess, band: band, status: status, logger: logger}
	v.surface = newSurface(
		func(dy float32) { sess.Loop.Post(func() { v.scrollBy(-float64(dy)) }) },
		func(size fyne.Size) {
			sess.Loop.Post(func() { v.resize(float64(size.Width), float64(size.Height)) })
		},
	)
	return v
}

func (v *viewer) open(src string) {
	v.src = src
	if err := v.sess.Open(src); err != nil {
		v.setStatus("Error: " + err.Error())
		return
	}
	if err := v.sess.Errors(); err != nil {
		v.logger.Warn("srview: page errors", "error", err)
	}
	v.sess.Window.Ready()
	v.repaint()
	v.repaintAfter(aos.ScrollThrottle)
}

func (v *viewer) scrollBy(dy float64) {
	v.sess.Window.ScrollBy(dy)
	v.repaint()
	v.repaintAfter(aos.ScrollThrottle)
}

func (v *viewer) scrollTo(y float64) {
	v.sess.Window.ScrollTo(y)
	v.repaint()
	v.repaintAfter(aos.ScrollThrottle)
}

func (v *viewer) resize(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	v.sess.Window.Resize(w, h)
	v.repaint()
	v.repaintAfter(aos.ResizeDebounce)
}

// repaintAfter paints again once a throttled or debounced pass has had the
// chance to run.
func (v *viewer) repaintAfter(d time.Duration) {
	v.sess.Loop.AfterFunc(d+time.Millisecond, v.repaint)
}

func (v *viewer) repaint() {
	win := v.sess.Window
	r := render.NewRenderer(int(win.InnerWidth()), int(win.InnerHeight()), render.Options{
		ShowBand: v.band,
		Outline:  true,
	})
	eng := v.sess.Engine()
	r.Render(win, eng)
	img := r.Image()

	text := fmt.Sprintf("scrollY %.0f / %.0f", win.ScrollY(), win.MaxScroll())
	if eng != nil {
		st := eng.Stats()
		text += fmt.Sprintf("   active %d of %d   retired %d   passes %d", st.Active, st.Live, st.Retired, st.Passes)
	}
	fyne.Do(func() {
		v.surface.setImage(img)
		v.status.SetText(text)
	})
}

func (v *viewer) setStatus(text string) {
	fyne.Do(func() { v.status.SetText(text) })
}

// typedKey runs on the fyne goroutine.
func (v *viewer) typedKey(ev *fyne.KeyEvent) {
	loop := v.sess.Loop
	switch ev.Name {
	case fyne.KeyDown:
		loop.Post(func() { v.scrollBy(lineStep) })
	case fyne.KeyUp:
		loop.Post(func() { v.scrollBy(-lineStep) })
	case fyne.KeyPageDown, fyne.KeySpace:
		loop.Post(func() { v.scrollBy(v.sess.Window.InnerHeight() * 0.9) })
	case fyne.KeyPageUp:
		loop.Post(func() { v.scrollBy(-v.sess.Window.InnerHeight() * 0.9) })
	case fyne.KeyHome:
		loop.Post(func() { v.scrollTo(0) })
	case fyne.KeyEnd:
		loop.Post(func() { v.scrollTo(v.sess.Window.MaxScroll()) })
	case fyne.KeyR:
		loop.Post(func() {
			if eng := v.sess.Engine(); eng != nil {
				eng.Refresh()
			}
			v.repaint()
		})
	case fyne.KeyF5:
		loop.Post(func() { v.open(v.src) })
	}
}

// surface shows the latest frame and reports wheel and size changes.
type surface struct {
	widget.BaseWidget
	image    *canvas.Image
	onScroll func(dy float32)
	onResize func(size fyne.Size)
}

func newSurface(onScroll func(float32), onResize func(fyne.Size)) *surface {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	img.FillMode = canvas.ImageFillStretch
	s := &surface{image: img, onScroll: onScroll, onResize: onResize}
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.image)
}

// Scrolled implements fyne.Scrollable.
func (s *surface) Scrolled(ev *fyne.ScrollEvent) {
	s.onScroll(ev.Scrolled.DY)
}

func (s *surface) Resize(size fyne.Size) {
	if size == s.Size() {
		return
	}
	s.BaseWidget.Resize(size)
	s.onResize(size)
}

func (s *surface) setImage(img image.Image) {
	s.image.Image = img
	s.image.Refresh()
}

func (s *surface) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}
