package layout

import (
	"scrollreveal/pkg/css"
	"scrollreveal/pkg/html"
)

// Box is the laid-out border box of one element, in document coordinates
// (origin at the top-left of the page, independent of scrolling).
type Box struct {
	Node     *html.Node
	Style    *css.Style
	X        float64
	Y        float64
	Width    float64 // border-box width
	Height   float64 // border-box height
	Margin   css.BoxEdge
	Padding  css.BoxEdge
	Border   css.BoxEdge
	Lines    int // wrapped text lines directly inside this box
	Children []*Box
	Parent   *Box
}

// Bottom is the bottom edge of the border box.
func (b *Box) Bottom() float64 { return b.Y + b.Height }

// ContentX is the left edge of the content box.
func (b *Box) ContentX() float64 { return b.X + b.Border.Left + b.Padding.Left }

// ContentY is the top edge of the content box.
func (b *Box) ContentY() float64 { return b.Y + b.Border.Top + b.Padding.Top }

// ContentWidth is the width available to children.
func (b *Box) ContentWidth() float64 {
	w := b.Width - b.Border.Left - b.Border.Right - b.Padding.Left - b.Padding.Right
	if w < 0 {
		return 0
	}
	return w
}

// Tree is the result of one layout pass.
type Tree struct {
	Roots  []*Box
	Height float64 // total document height
	Width  float64
	byNode map[*html.Node]*Box
}

// BoxFor returns the box generated for an element. Elements that are not
// rendered (display:none or inside such an element) have no box.
func (t *Tree) BoxFor(n *html.Node) (*Box, bool) {
	if t == nil {
		return nil, false
	}
	b, ok := t.byNode[n]
	return b, ok
}

// Boxes returns every box in document order.
func (t *Tree) Boxes() []*Box {
	var out []*Box
	var visit func(b *Box)
	visit = func(b *Box) {
		out = append(out, b)
		for _, c := range b.Children {
			visit(c)
		}
	}
	for _, r := range t.Roots {
		visit(r)
	}
	return out
}
