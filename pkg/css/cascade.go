package css

import (
	"log/slog"
	"sort"

	"scrollreveal/pkg/html"
)

// inherited lists the properties a child takes from its parent when it does
// not set them itself.
var inherited = []string{"font-size", "line-height", "color"}

// applyUserAgentStyles applies default browser styles based on element type
func applyUserAgentStyles(node *html.Node, style *Style) {
	switch node.TagName {
	case "head", "title", "meta", "link", "template", "noscript":
		style.Set("display", "none")
	case "span", "a", "em", "strong", "b", "i", "code", "small", "label", "img", "br":
		style.Set("display", "inline")
	case "body":
		expandBoxProperty(style, "margin-%s", "8px")
	case "p", "ul", "ol":
		expandBoxProperty(style, "margin-%s", "16px 0")
	case "h1":
		style.Set("font-size", "32px")
		expandBoxProperty(style, "margin-%s", "21px 0")
	case "h2":
		style.Set("font-size", "24px")
		expandBoxProperty(style, "margin-%s", "20px 0")
	case "h3":
		style.Set("font-size", "19px")
		expandBoxProperty(style, "margin-%s", "19px 0")
	}
	if node.TagName == "a" {
		style.Set("color", "#0645ad")
	}
}

// ParseStylesheets parses each source, logging and skipping the ones that fail.
func ParseStylesheets(sources []string) []*Stylesheet {
	sheets := make([]*Stylesheet, 0, len(sources))
	for i, src := range sources {
		sheet, err := ParseStylesheet(src)
		if err != nil {
			slog.Warn("stylesheet skipped", "index", i, "err", err)
			continue
		}
		sheets = append(sheets, sheet)
	}
	return sheets
}

type matchedRule struct {
	rule  Rule
	sheet int
}

// ComputeStyle computes the final style for a node by applying the cascade:
// user agent defaults, inherited values, stylesheet rules by specificity and
// source order, then the inline style attribute.
func ComputeStyle(node *html.Node, sheets []*Stylesheet, parent *Style) *Style {
	style := NewStyle()
	if parent != nil {
		for _, prop := range inherited {
			if v, ok := parent.Get(prop); ok {
				style.Set(prop, v)
			}
		}
	}
	applyUserAgentStyles(node, style)

	var matches []matchedRule
	for i, sheet := range sheets {
		for _, rule := range sheet.Rules {
			if MatchesSelector(node, rule.Selector) {
				matches = append(matches, matchedRule{rule: rule, sheet: i})
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if sa, sb := a.rule.Selector.Specificity(), b.rule.Selector.Specificity(); sa != sb {
			return sa < sb
		}
		if a.sheet != b.sheet {
			return a.sheet < b.sheet
		}
		return a.rule.Order < b.rule.Order
	})
	for _, m := range matches {
		for _, d := range m.rule.Declarations {
			expandShorthand(style, d.Property, d.Value)
		}
	}

	for prop, value := range ParseInlineStyle(node).Properties {
		style.Set(prop, value)
	}
	return style
}

// ComputeStyles styles every element of the document, parents first so that
// inherited properties flow down.
func ComputeStyles(doc *html.Document, sheets []*Stylesheet) map[*html.Node]*Style {
	styles := make(map[*html.Node]*Style)
	var visit func(n *html.Node, parent *Style)
	visit = func(n *html.Node, parent *Style) {
		if n.Type != html.ElementNode {
			return
		}
		style := ComputeStyle(n, sheets, parent)
		styles[n] = style
		for _, c := range n.Children {
			visit(c, style)
		}
	}
	for _, c := range doc.Root.Children {
		visit(c, nil)
	}
	return styles
}
