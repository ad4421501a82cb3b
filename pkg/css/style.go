package css

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"scrollreveal/pkg/html"
)

type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// ParseLength parses an absolute length ("100px", "100", "1.5em" at 16px/em).
// Percentages and keywords are not lengths here.
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(strings.ToLower(val))
	scale := 1.0
	switch {
	case strings.HasSuffix(val, "px"):
		val = strings.TrimSuffix(val, "px")
	case strings.HasSuffix(val, "rem"):
		val, scale = strings.TrimSuffix(val, "rem"), defaultFontSize
	case strings.HasSuffix(val, "em"):
		val, scale = strings.TrimSuffix(val, "em"), defaultFontSize
	case strings.HasSuffix(val, "vh"), strings.HasSuffix(val, "%"):
		return 0, false
	}
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num * scale, true
}

// ParseViewportLength resolves "50vh" against a viewport height.
func ParseViewportLength(val string, viewportHeight float64) (float64, bool) {
	val = strings.TrimSpace(strings.ToLower(val))
	if !strings.HasSuffix(val, "vh") {
		return ParseLength(val)
	}
	num, err := strconv.ParseFloat(strings.TrimSuffix(val, "vh"), 64)
	if err != nil {
		return 0, false
	}
	return num * viewportHeight / 100, true
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

func (s *Style) GetMargin() BoxEdge      { return s.edge("margin-%s") }
func (s *Style) GetPadding() BoxEdge     { return s.edge("padding-%s") }
func (s *Style) GetBorderWidth() BoxEdge { return s.edge("border-%s-width") }

func (s *Style) edge(pattern string) BoxEdge {
	side := func(name string) float64 {
		v, _ := s.GetLength(strings.Replace(pattern, "%s", name, 1))
		return v
	}
	return BoxEdge{Top: side("top"), Right: side("right"), Bottom: side("bottom"), Left: side("left")}
}

type DisplayType string

const (
	DisplayBlock       DisplayType = "block"
	DisplayInline      DisplayType = "inline"
	DisplayInlineBlock DisplayType = "inline-block"
	DisplayNone        DisplayType = "none"
)

// GetDisplay returns the display value (default: block)
func (s *Style) GetDisplay() DisplayType {
	if display, ok := s.Get("display"); ok {
		switch strings.TrimSpace(display) {
		case "inline":
			return DisplayInline
		case "inline-block":
			return DisplayInlineBlock
		case "none":
			return DisplayNone
		}
	}
	return DisplayBlock
}

const defaultFontSize = 16.0

// GetFontSize returns the font-size in pixels (default: 16px)
func (s *Style) GetFontSize() float64 {
	if size, ok := s.GetLength("font-size"); ok && size > 0 {
		return size
	}
	return defaultFontSize
}

// GetLineHeight returns the line-height in pixels (default: 1.2 * font-size).
// Unitless values multiply the font size.
func (s *Style) GetLineHeight() float64 {
	if raw, ok := s.Get("line-height"); ok {
		raw = strings.TrimSpace(raw)
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f * s.GetFontSize()
		}
		if lh, ok := ParseLength(raw); ok {
			return lh
		}
	}
	return s.GetFontSize() * 1.2
}

// GetOpacity returns opacity clamped to [0,1] (default 1).
func (s *Style) GetOpacity() float64 {
	raw, ok := s.Get("opacity")
	if !ok {
		return 1
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 1
	}
	return clamp01(f)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ParseInlineStyle reads a node's style attribute into a Style, expanding
// shorthands.
func ParseInlineStyle(node *html.Node) *Style {
	style := NewStyle()
	for _, d := range node.InlineStyle() {
		expandShorthand(style, d.Property, d.Value)
	}
	return style
}

// expandShorthand expands shorthand CSS properties into individual properties
func expandShorthand(style *Style, property, value string) {
	switch property {
	case "margin", "padding":
		expandBoxProperty(style, property+"-%s", value)
	case "border-width":
		expandBoxProperty(style, "border-%s-width", value)
	case "border":
		expandBorderProperty(style, value)
	case "background":
		// Only the color component matters to the renderer.
		for _, part := range strings.Fields(value) {
			if _, ok := ParseColor(part); ok {
				style.Set("background-color", part)
			}
		}
	default:
		style.Set(property, value)
	}
}

// expandBoxProperty expands margin/padding shorthand
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
// "10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func expandBoxProperty(style *Style, pattern, value string) {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	set := func(side, v string) { style.Set(strings.Replace(pattern, "%s", side, 1), v) }
	set("top", top)
	set("right", right)
	set("bottom", bottom)
	set("left", left)
}

// expandBorderProperty expands border shorthand
// Format: "1px solid black" or "2px dotted #FF0000"
func expandBorderProperty(style *Style, value string) {
	for _, part := range strings.Fields(value) {
		if _, ok := ParseLength(part); ok {
			expandBoxProperty(style, "border-%s-width", part)
		} else if part == "solid" || part == "dotted" || part == "dashed" || part == "double" || part == "none" {
			style.Set("border-style", part)
		} else {
			style.Set("border-color", part)
		}
	}
}

type Color struct {
	R, G, B uint8
}

var namedColors = map[string]Color{
	"red":     {255, 0, 0},
	"green":   {0, 128, 0},
	"blue":    {0, 0, 255},
	"yellow":  {255, 255, 0},
	"cyan":    {0, 255, 255},
	"magenta": {255, 0, 255},
	"white":   {255, 255, 255},
	"black":   {0, 0, 0},
	"gray":    {128, 128, 128},
	"grey":    {128, 128, 128},
	"orange":  {255, 165, 0},
	"purple":  {128, 0, 128},
	"pink":    {255, 192, 203},
	"brown":   {165, 42, 42},
	"lime":    {0, 255, 0},
	"navy":    {0, 0, 128},
	"teal":    {0, 128, 128},
	"silver":  {192, 192, 192},
}

// ParseColor accepts named colors and #rgb / #rrggbb.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if c, ok := namedColors[colorStr]; ok {
		return c, true
	}
	if strings.HasPrefix(colorStr, "#") && (len(colorStr) == 4 || len(colorStr) == 7) {
		c, err := colorful.Hex(colorStr)
		if err != nil {
			return Color{}, false
		}
		r, g, b := c.RGB255()
		return Color{R: r, G: g, B: b}, true
	}
	return Color{}, false
}

// Colorful converts to a go-colorful value for blending.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
