package aos

import (
	"fmt"

	"scrollreveal/pkg/html"
)

// ActiveClass marks an element whose anchor has entered the trigger zone.
const ActiveClass = "aos-animate"

// Styler applies the engine's decisions to the document.
type Styler interface {
	// ApplyTiming is called once per element at registration.
	ApplyTiming(n *html.Node, t Timing)
	// SetActive adds or removes the active marker.
	SetActive(n *html.Node, active bool)
}

// ClassStyler toggles ActiveClass and writes CSS transition properties into
// the inline style attribute.
type ClassStyler struct{}

func (ClassStyler) ApplyTiming(n *html.Node, t Timing) {
	n.SetStyleProperty("transition-property", "all")
	n.SetStyleProperty("transition-duration", fmt.Sprintf("%dms", t.Duration.Milliseconds()))
	n.SetStyleProperty("transition-timing-function", t.Easing)
	n.SetStyleProperty("transition-delay", fmt.Sprintf("%dms", t.Delay.Milliseconds()))
}

func (ClassStyler) SetActive(n *html.Node, active bool) {
	if active {
		n.AddClass(ActiveClass)
	} else {
		n.RemoveClass(ActiveClass)
	}
}
