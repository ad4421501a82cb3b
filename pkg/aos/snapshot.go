package aos

import "scrollreveal/pkg/html"

// Geometry is the part of the host that reports layout.
type Geometry interface {
	// ScrollY is the current vertical scroll offset.
	ScrollY() float64
	// InnerHeight is the viewport height.
	InnerHeight() float64
	// BoundingTop is the top of n's border box relative to the viewport.
	BoundingTop(n *html.Node) float64
	// OffsetHeight is the rendered height of n's border box.
	OffsetHeight(n *html.Node) float64
}

// Snapshot is the document-absolute geometry of an element and its anchor at
// capture time. It holds no scroll-dependent values and is stale after any
// layout change.
type Snapshot struct {
	AnchorTop      float64
	AnchorHeight   float64
	ElementTop     float64
	ElementHeight  float64
	ViewportHeight float64
}

// Capture measures element and anchor. A nil anchor means the element itself.
func Capture(g Geometry, element, anchor *html.Node) Snapshot {
	if anchor == nil {
		anchor = element
	}
	scrollY := g.ScrollY()
	return Snapshot{
		AnchorTop:      g.BoundingTop(anchor) + scrollY,
		AnchorHeight:   g.OffsetHeight(anchor),
		ElementTop:     g.BoundingTop(element) + scrollY,
		ElementHeight:  g.OffsetHeight(element),
		ViewportHeight: g.InnerHeight(),
	}
}
