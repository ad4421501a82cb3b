// Package aos decides when elements marked with data-aos should carry their
// "active" marker while the page scrolls.
//
// An Engine captures a document-absolute position snapshot for every marked
// element, then re-evaluates the elements against a fixed trigger band on
// each (throttled) scroll notification and recaptures the snapshots on each
// (debounced) resize. The visual side is left to a Styler.
package aos

import "time"

const (
	// ScrollThrottle is the minimum spacing between scroll-driven passes.
	ScrollThrottle = 20 * time.Millisecond
	// ResizeDebounce is the quiet period required before a resize refresh.
	ResizeDebounce = 50 * time.Millisecond

	// DefaultStartEvent is the one-shot event that triggers a refresh.
	DefaultStartEvent = "DOMContentLoaded"
)

// Placement names which element edge meets which viewport edge. It is kept on
// every record but the trigger geometry does not consult it.
type Placement string

const (
	TopBottom    Placement = "top-bottom"
	TopTop       Placement = "top-top"
	BottomBottom Placement = "bottom-bottom"
	BottomTop    Placement = "bottom-top"
)

// ParsePlacement validates s.
func ParsePlacement(s string) (Placement, bool) {
	switch p := Placement(s); p {
	case TopBottom, TopTop, BottomBottom, BottomTop:
		return p, true
	}
	return "", false
}

// Settings are the page-wide defaults passed to Init. Per-element attributes
// override Delay, Duration, Easing, Once, Mirror and AnchorPlacement.
type Settings struct {
	// Offset is accepted for compatibility; the trigger band is fixed.
	Offset          int       `yaml:"offset" env:"OFFSET"`
	Delay           int       `yaml:"delay" env:"DELAY"`
	Duration        int       `yaml:"duration" env:"DURATION"`
	Easing          string    `yaml:"easing" env:"EASING"`
	Once            bool      `yaml:"once" env:"ONCE"`
	Mirror          bool      `yaml:"mirror" env:"MIRROR"`
	AnchorPlacement Placement `yaml:"anchorPlacement" env:"ANCHOR_PLACEMENT"`
	StartEvent      string    `yaml:"startEvent" env:"START_EVENT"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Offset:          120,
		Delay:           0,
		Duration:        400,
		Easing:          "ease",
		AnchorPlacement: TopBottom,
		StartEvent:      DefaultStartEvent,
	}
}

// normalize fills the fields whose zero value is never meaningful.
func (s Settings) normalize() Settings {
	if s.StartEvent == "" {
		s.StartEvent = DefaultStartEvent
	}
	if _, ok := ParsePlacement(string(s.AnchorPlacement)); !ok {
		s.AnchorPlacement = TopBottom
	}
	if s.Easing == "" {
		s.Easing = "ease"
	}
	return s
}
