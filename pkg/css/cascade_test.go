package css

import (
	"testing"
)

func TestComputeStyle_SpecificityOverride(t *testing.T) {
	sheet, err := ParseStylesheet(`
		.highlight { color: blue; }
		div { color: red; height: 10px }
	`)
	if err != nil {
		t.Fatal(err)
	}
	doc := parseDoc(t, `<div class="highlight" style="height: 30px"></div>`)
	div := doc.Body().Children[0]

	style := ComputeStyle(div, []*Stylesheet{sheet}, nil)
	if color, _ := style.Get("color"); color != "blue" {
		t.Errorf("expected class rule to win, got color %q", color)
	}
	if h, _ := style.GetLength("height"); h != 30 {
		t.Errorf("expected inline height 30, got %v", h)
	}
}

func TestComputeStyle_SourceOrderBreaksTies(t *testing.T) {
	first, _ := ParseStylesheet(`.a { height: 10px }`)
	second, _ := ParseStylesheet(`.b { height: 20px } .a { height: 40px }`)
	doc := parseDoc(t, `<div class="a b"></div>`)
	div := doc.Body().Children[0]

	style := ComputeStyle(div, []*Stylesheet{first, second}, nil)
	if h, _ := style.GetLength("height"); h != 40 {
		t.Errorf("expected the later rule to win, got %v", h)
	}
}

func TestComputeStyles_Inheritance(t *testing.T) {
	sheet, _ := ParseStylesheet(`section { font-size: 20px; line-height: 2 }`)
	doc := parseDoc(t, `<section><p>text</p></section>`)
	styles := ComputeStyles(doc, []*Stylesheet{sheet})

	p := doc.Body().Children[0].Children[0]
	if got := styles[p].GetFontSize(); got != 20 {
		t.Errorf("expected inherited font-size 20, got %v", got)
	}
	if got := styles[p].GetLineHeight(); got != 40 {
		t.Errorf("expected line-height 40, got %v", got)
	}
}

func TestStylesheetSkipsAtRules(t *testing.T) {
	sheet, err := ParseStylesheet(`
		@media (max-width: 600px) { div { height: 1px } }
		[data-aos] { opacity: 0 }
		[data-aos].aos-animate { opacity: 1 }
	`)
	if err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(sheet.Rules))
	}

	doc := parseDoc(t, `<div data-aos="fade" class="aos-animate"></div>`)
	style := ComputeStyle(doc.Body().Children[0], []*Stylesheet{sheet}, nil)
	if got := style.GetOpacity(); got != 1 {
		t.Errorf("expected opacity 1 for the animated element, got %v", got)
	}
}

func TestUserAgentDisplay(t *testing.T) {
	doc := parseDoc(t, `<div><span>a</span></div>`)
	styles := ComputeStyles(doc, nil)

	var head, span = doc.Root.Children[0].Children[0], doc.Body().Children[0].Children[0]
	if styles[head].GetDisplay() != DisplayNone {
		t.Error("head should not be displayed")
	}
	if styles[span].GetDisplay() != DisplayInline {
		t.Error("span should be inline")
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10px", 10, true},
		{" 12 ", 12, true},
		{"1.5em", 24, true},
		{"2rem", 32, true},
		{"50%", 0, false},
		{"auto", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLength(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLength(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if got, ok := ParseViewportLength("50vh", 600); !ok || got != 300 {
		t.Errorf("expected 300, got %v (%v)", got, ok)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"red", Color{255, 0, 0}, true},
		{"#00ff00", Color{0, 255, 0}, true},
		{"#fff", Color{255, 255, 255}, true},
		{"rebeccapurple-ish", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestShorthandExpansion(t *testing.T) {
	doc := parseDoc(t, `<div style="margin: 1px 2px 3px; padding: 4px; border: 2px solid red"></div>`)
	style := ParseInlineStyle(doc.Body().Children[0])

	if m := style.GetMargin(); m != (BoxEdge{Top: 1, Right: 2, Bottom: 3, Left: 2}) {
		t.Errorf("unexpected margin %+v", m)
	}
	if p := style.GetPadding(); p != (BoxEdge{4, 4, 4, 4}) {
		t.Errorf("unexpected padding %+v", p)
	}
	if b := style.GetBorderWidth(); b != (BoxEdge{2, 2, 2, 2}) {
		t.Errorf("unexpected border %+v", b)
	}
}
