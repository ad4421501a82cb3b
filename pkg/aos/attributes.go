package aos

import (
	"strconv"
	"strings"
	"time"

	"scrollreveal/pkg/html"
)

// Element attributes read at registration.
const (
	AttrAnimation = "data-aos"
	AttrAnchor    = "data-aos-anchor"
	AttrPlacement = "data-aos-anchor-placement"
	AttrDelay     = "data-aos-delay"
	AttrDuration  = "data-aos-duration"
	AttrEasing    = "data-aos-easing"
	AttrOnce      = "data-aos-once"
	AttrMirror    = "data-aos-mirror"
)

// Selector matches every element the engine registers.
const Selector = "[" + AttrAnimation + "]"

// Timing is handed to the Styler once per element and has no effect on
// triggering.
type Timing struct {
	Delay    time.Duration
	Duration time.Duration
	Easing   string
}

// ElementConfig is the resolved configuration of one marked element.
type ElementConfig struct {
	Animation string
	Anchor    string // selector, empty for the element itself
	Placement Placement
	Timing    Timing
	Once      bool
	Mirror    bool
}

// ReadElementConfig reads n's data-aos attributes over the page settings. It
// reports false when n carries no data-aos attribute.
func ReadElementConfig(n *html.Node, s Settings) (ElementConfig, bool) {
	if !n.HasAttribute(AttrAnimation) {
		return ElementConfig{}, false
	}
	s = s.normalize()

	cfg := ElementConfig{
		Animation: attr(n, AttrAnimation),
		Anchor:    strings.TrimSpace(attr(n, AttrAnchor)),
		Placement: s.AnchorPlacement,
		Timing: Timing{
			Delay:    millis(parseLenientInt(attr(n, AttrDelay), s.Delay)),
			Duration: millis(parseLenientInt(attr(n, AttrDuration), s.Duration)),
			Easing:   s.Easing,
		},
		Once:   s.Once || n.HasAttribute(AttrOnce),
		Mirror: s.Mirror || n.HasAttribute(AttrMirror),
	}
	if p, ok := ParsePlacement(strings.TrimSpace(attr(n, AttrPlacement))); ok {
		cfg.Placement = p
	}
	if e := strings.TrimSpace(attr(n, AttrEasing)); e != "" {
		cfg.Timing.Easing = e
	}
	return cfg, true
}

func attr(n *html.Node, name string) string {
	v, _ := n.GetAttribute(name)
	return v
}

func millis(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }

// parseLenientInt reads the leading base-10 integer of s ("250ms" is 250) and
// falls back to def when s is empty or has no leading digits.
func parseLenientInt(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return def
	}
	return v
}
