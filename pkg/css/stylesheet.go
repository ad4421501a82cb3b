package css

import (
	"fmt"
	"strings"

	dcss "github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Declaration is one property: value pair of a rule.
type Declaration struct {
	Property string
	Value    string
}

// Rule represents a CSS rule (one selector + declarations). A source rule
// with a selector list becomes one Rule per selector.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	Order        int // source order, breaks specificity ties
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS text. At-rules (@media, @keyframes, ...) are
// skipped, as are rules whose selectors this package cannot parse.
func ParseStylesheet(text string) (*Stylesheet, error) {
	sheet := &Stylesheet{Rules: make([]Rule, 0)}
	if strings.TrimSpace(text) == "" {
		return sheet, nil
	}
	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse stylesheet: %w", err)
	}

	order := 0
	for _, r := range parsed.Rules {
		if r.Kind != dcss.QualifiedRule {
			continue
		}
		decls := make([]Declaration, 0, len(r.Declarations))
		for _, d := range r.Declarations {
			decls = append(decls, Declaration{
				Property: strings.ToLower(d.Property),
				Value:    d.Value,
			})
		}
		for _, raw := range r.Selectors {
			sel, err := ParseSelector(raw)
			if err != nil {
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Declarations: decls, Order: order})
			order++
		}
	}
	return sheet, nil
}
