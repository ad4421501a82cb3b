// Package render rasterises the visible part of a window to an image, with
// each data-aos element drawn according to its engine state: active elements
// at full strength, idle ones washed out toward the page background.
package render

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/browser"
	"scrollreveal/pkg/css"
	"scrollreveal/pkg/html"
	"scrollreveal/pkg/layout"
)

// IdleFade is how far idle elements are blended toward white.
const IdleFade = 0.75

var (
	pageBackground = colorful.Color{R: 1, G: 1, B: 1}
	activeOutline  = mustHex("#2e7d32")
	idleOutline    = mustHex("#9e9e9e")
	retiredOutline = mustHex("#1565c0")
	bandColor      = mustHex("#d81b60")
	textDefault    = colorful.Color{}
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Options controls the overlays drawn on top of the page.
type Options struct {
	// ShowBand draws the trigger band edges.
	ShowBand bool
	// Outline draws a state-colored frame around every data-aos element.
	Outline bool
	// HUD prints the scroll position and engine counters in the corner.
	HUD bool
}

// Renderer paints a viewport-sized frame.
type Renderer struct {
	context *gg.Context
	opts    Options
}

// NewRenderer returns a renderer for a width x height viewport.
func NewRenderer(width, height int, opts Options) *Renderer {
	return &Renderer{context: gg.NewContext(width, height), opts: opts}
}

// Render draws the window's current viewport. eng may be nil, in which case
// every element is drawn as active.
func (r *Renderer) Render(win *browser.Window, eng *aos.Engine) {
	dc := r.context
	dc.SetColor(pageBackground)
	dc.Clear()

	tree := win.Layout()
	scrollY := win.ScrollY()
	viewH := float64(dc.Height())

	dc.Push()
	dc.Translate(0, -scrollY)
	for _, box := range tree.Boxes() {
		if box.Bottom() < scrollY || box.Y > scrollY+viewH {
			continue
		}
		fade := r.fadeFor(box, eng)
		r.drawBackground(box, fade)
		r.drawBorder(box, fade)
		r.drawText(tree, box, fade)
	}
	if r.opts.Outline {
		for _, box := range tree.Boxes() {
			if box.Node.HasAttribute(aos.AttrAnimation) {
				r.drawOutline(box, eng)
			}
		}
	}
	dc.Pop()

	if r.opts.ShowBand {
		r.drawBand(win.InnerHeight())
	}
	if r.opts.HUD {
		r.drawHUD(win, eng)
	}
}

// fadeFor returns the blend toward the background for box: IdleFade when
// the box or any ancestor is a tracked element that is not active.
func (r *Renderer) fadeFor(box *layout.Box, eng *aos.Engine) float64 {
	if eng == nil {
		return 0
	}
	for n := box.Node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode || !n.HasAttribute(aos.AttrAnimation) {
			continue
		}
		rec, _, ok := eng.Lookup(n)
		if ok && rec.State == aos.Idle {
			return IdleFade
		}
	}
	return 0
}

func (r *Renderer) setColor(c colorful.Color, fade, opacity float64) {
	c = c.BlendRgb(pageBackground, fade)
	r.context.SetRGBA(c.R, c.G, c.B, opacity)
}

func styleColor(style *css.Style, property string) (colorful.Color, bool) {
	raw, ok := style.Get(property)
	if !ok {
		return colorful.Color{}, false
	}
	c, ok := css.ParseColor(raw)
	if !ok {
		return colorful.Color{}, false
	}
	return c.Colorful(), true
}

func (r *Renderer) drawBackground(box *layout.Box, fade float64) {
	c, ok := styleColor(box.Style, "background-color")
	if !ok || box.Width <= 0 || box.Height <= 0 {
		return
	}
	r.setColor(c, fade, box.Style.GetOpacity())
	r.context.DrawRectangle(box.X, box.Y, box.Width, box.Height)
	r.context.Fill()
}

// drawBorder paints each side as a trapezoid so corners miter.
func (r *Renderer) drawBorder(box *layout.Box, fade float64) {
	b := box.Border
	if b.Top <= 0 && b.Right <= 0 && b.Bottom <= 0 && b.Left <= 0 {
		return
	}
	c, ok := styleColor(box.Style, "border-color")
	if !ok {
		if c, ok = styleColor(box.Style, "color"); !ok {
			c = textDefault
		}
	}
	r.setColor(c, fade, box.Style.GetOpacity())

	outerL, outerT := box.X, box.Y
	outerR, outerB := box.X+box.Width, box.Bottom()
	innerL, innerT := outerL+b.Left, outerT+b.Top
	innerR, innerB := outerR-b.Right, outerB-b.Bottom

	sides := []struct {
		width float64
		pts   [4][2]float64
	}{
		{b.Top, [4][2]float64{{outerL, outerT}, {outerR, outerT}, {innerR, innerT}, {innerL, innerT}}},
		{b.Right, [4][2]float64{{outerR, outerT}, {outerR, outerB}, {innerR, innerB}, {innerR, innerT}}},
		{b.Bottom, [4][2]float64{{outerL, outerB}, {outerR, outerB}, {innerR, innerB}, {innerL, innerB}}},
		{b.Left, [4][2]float64{{outerL, outerT}, {outerL, outerB}, {innerL, innerB}, {innerL, innerT}}},
	}
	for _, s := range sides {
		if s.width <= 0 {
			continue
		}
		r.context.MoveTo(s.pts[0][0], s.pts[0][1])
		for _, p := range s.pts[1:] {
			r.context.LineTo(p[0], p[1])
		}
		r.context.ClosePath()
		r.context.Fill()
	}
}

// drawText paints the inline text directly inside a block box, wrapped to
// its content width with gg's built-in face.
func (r *Renderer) drawText(tree *layout.Tree, box *layout.Box, fade float64) {
	if box.Lines == 0 || box.Node.Type != html.ElementNode {
		return
	}
	if b, ok := tree.BoxFor(box.Node); ok && b != box {
		return
	}
	var words []string
	for _, c := range box.Node.Children {
		if c.Type == html.ElementNode {
			if cb, ok := tree.BoxFor(c); !ok || cb.Style.GetDisplay() != css.DisplayInline {
				continue
			}
		}
		words = append(words, strings.Fields(c.TextContent())...)
	}
	if len(words) == 0 {
		return
	}
	c, ok := styleColor(box.Style, "color")
	if !ok {
		c = textDefault
	}
	r.setColor(c, fade, box.Style.GetOpacity())

	lineHeight := box.Style.GetLineHeight()
	y := box.Y + box.Border.Top + box.Padding.Top
	for _, line := range r.context.WordWrap(strings.Join(words, " "), box.ContentWidth()) {
		r.context.DrawStringAnchored(line, box.ContentX(), y+lineHeight/2, 0, 0.35)
		y += lineHeight
	}
}

func (r *Renderer) drawOutline(box *layout.Box, eng *aos.Engine) {
	c := activeOutline
	if eng != nil {
		rec, retired, ok := eng.Lookup(box.Node)
		switch {
		case !ok:
			return
		case retired:
			c = retiredOutline
		case rec.State == aos.Idle:
			c = idleOutline
		}
	}
	r.context.SetColor(c)
	r.context.SetLineWidth(2)
	r.context.SetDash(6, 4)
	r.context.DrawRectangle(box.X+1, box.Y+1, box.Width-2, box.Height-2)
	r.context.Stroke()
	r.context.SetDash()
}

// drawBand marks the lines an anchor must cross to enter the trigger zone.
func (r *Renderer) drawBand(viewportHeight float64) {
	band := aos.TriggerBand * viewportHeight
	w := float64(r.context.Width())
	r.context.SetRGBA(bandColor.R, bandColor.G, bandColor.B, 0.08)
	r.context.DrawRectangle(0, 0, w, band)
	r.context.DrawRectangle(0, viewportHeight-band, w, band)
	r.context.Fill()

	r.context.SetColor(bandColor)
	r.context.SetLineWidth(1)
	r.context.SetDash(4, 4)
	r.context.DrawLine(0, band, w, band)
	r.context.DrawLine(0, viewportHeight-band, w, viewportHeight-band)
	r.context.Stroke()
	r.context.SetDash()
}

func (r *Renderer) drawHUD(win *browser.Window, eng *aos.Engine) {
	label := hudLabel(win, eng)
	w, h := r.context.MeasureString(label)
	r.context.SetRGBA(0, 0, 0, 0.6)
	r.context.DrawRectangle(4, 4, w+8, h+8)
	r.context.Fill()
	r.context.SetRGB(1, 1, 1)
	r.context.DrawStringAnchored(label, 8, 8+h/2, 0, 0.35)
}

func hudLabel(win *browser.Window, eng *aos.Engine) string {
	label := fmt.Sprintf("scrollY %.0f", win.ScrollY())
	if eng != nil {
		st := eng.Stats()
		label += fmt.Sprintf("  active %d/%d  retired %d", st.Active, st.Live, st.Retired)
	}
	return label
}

// Image returns the last rendered frame.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

// EncodePNG writes the last frame to w.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}
