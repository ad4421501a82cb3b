package css

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelector is wrapped by every selector parse failure.
var ErrInvalidSelector = errors.New("invalid selector")

// Combinator joins two compound selectors.
type Combinator int

const (
	DescendantCombinator      Combinator = iota // A B
	ChildCombinator                             // A > B
	AdjacentSiblingCombinator                   // A + B
	GeneralSiblingCombinator                    // A ~ B
)

// AttributeSelector is one [name op value] test.
type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

// SelectorPart is a compound selector such as div.card#hero[data-aos].
type SelectorPart struct {
	Element       string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []string
}

// Selector is a complex selector. Combinators[i] sits between Parts[i] and
// Parts[i+1].
type Selector struct {
	Raw         string
	Parts       []SelectorPart
	Combinators []Combinator
}

// Specificity returns the usual (ids, classes, types) triple folded into one
// integer.
func (s Selector) Specificity() int {
	ids, classes, types := 0, 0, 0
	for _, p := range s.Parts {
		if p.ID != "" {
			ids++
		}
		classes += len(p.Classes) + len(p.Attributes) + len(p.PseudoClasses)
		if p.Element != "" && p.Element != "*" {
			types++
		}
	}
	return ids*10000 + classes*100 + types
}

// SplitSelectorGroup splits "a, b > c" on top-level commas.
func SplitSelectorGroup(group string) []string {
	var out []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(group); i++ {
		c := group[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case c == ',' && depth == 0:
			if s := strings.TrimSpace(group[start:i]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(group[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// ParseSelectorGroup parses a comma separated selector list.
func ParseSelectorGroup(group string) ([]Selector, error) {
	parts := SplitSelectorGroup(group)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty selector", ErrInvalidSelector)
	}
	sels := make([]Selector, 0, len(parts))
	for _, p := range parts {
		sel, err := ParseSelector(p)
		if err != nil {
			return nil, err
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

// ParseSelector parses a single complex selector.
func ParseSelector(raw string) (Selector, error) {
	p := &selectorParser{src: strings.TrimSpace(raw)}
	sel, err := p.parse()
	if err != nil {
		return Selector{}, fmt.Errorf("%w %q: %v", ErrInvalidSelector, raw, err)
	}
	sel.Raw = raw
	return sel, nil
}

type selectorParser struct {
	src string
	pos int
}

func (p *selectorParser) parse() (Selector, error) {
	var sel Selector
	if p.src == "" {
		return sel, errors.New("empty selector")
	}
	for {
		part, err := p.compound()
		if err != nil {
			return sel, err
		}
		sel.Parts = append(sel.Parts, part)

		sawSpace := p.skipSpace()
		if p.eof() {
			return sel, nil
		}
		comb := DescendantCombinator
		switch p.peek() {
		case '>':
			comb = ChildCombinator
			p.pos++
		case '+':
			comb = AdjacentSiblingCombinator
			p.pos++
		case '~':
			comb = GeneralSiblingCombinator
			p.pos++
		default:
			if !sawSpace {
				return sel, fmt.Errorf("unexpected %q at %d", p.peek(), p.pos)
			}
		}
		p.skipSpace()
		if p.eof() {
			return sel, errors.New("dangling combinator")
		}
		sel.Combinators = append(sel.Combinators, comb)
	}
}

func (p *selectorParser) compound() (SelectorPart, error) {
	var part SelectorPart
	start := p.pos
	if !p.eof() && p.peek() == '*' {
		part.Element = "*"
		p.pos++
	} else if name := p.ident(); name != "" {
		part.Element = strings.ToLower(name)
	}
	for !p.eof() {
		switch p.peek() {
		case '#':
			p.pos++
			id := p.ident()
			if id == "" {
				return part, fmt.Errorf("missing id at %d", p.pos)
			}
			part.ID = id
		case '.':
			p.pos++
			cls := p.ident()
			if cls == "" {
				return part, fmt.Errorf("missing class at %d", p.pos)
			}
			part.Classes = append(part.Classes, cls)
		case '[':
			attr, err := p.attribute()
			if err != nil {
				return part, err
			}
			part.Attributes = append(part.Attributes, attr)
		case ':':
			p.pos++
			if !p.eof() && p.peek() == ':' {
				p.pos++
			}
			name := p.ident()
			if name == "" {
				return part, fmt.Errorf("missing pseudo-class at %d", p.pos)
			}
			part.PseudoClasses = append(part.PseudoClasses, strings.ToLower(name))
		default:
			if p.pos == start {
				return part, fmt.Errorf("unexpected %q at %d", p.peek(), p.pos)
			}
			return part, nil
		}
	}
	if p.pos == start {
		return part, errors.New("empty compound selector")
	}
	return part, nil
}

func (p *selectorParser) attribute() (AttributeSelector, error) {
	var attr AttributeSelector
	p.pos++ // [
	p.skipSpace()
	attr.Name = strings.ToLower(p.ident())
	if attr.Name == "" {
		return attr, fmt.Errorf("missing attribute name at %d", p.pos)
	}
	p.skipSpace()
	if p.eof() {
		return attr, errors.New("unterminated attribute selector")
	}
	if p.peek() == ']' {
		p.pos++
		return attr, nil
	}
	for _, op := range []string{"~=", "|=", "^=", "$=", "*=", "="} {
		if strings.HasPrefix(p.src[p.pos:], op) {
			attr.Operator = op
			p.pos += len(op)
			break
		}
	}
	if attr.Operator == "" {
		return attr, fmt.Errorf("unexpected %q in attribute selector", p.peek())
	}
	p.skipSpace()
	if p.eof() {
		return attr, errors.New("unterminated attribute selector")
	}
	if q := p.peek(); q == '"' || q == '\'' {
		end := strings.IndexByte(p.src[p.pos+1:], q)
		if end < 0 {
			return attr, errors.New("unterminated string")
		}
		attr.Value = p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
	} else {
		attr.Value = p.ident()
	}
	p.skipSpace()
	if p.eof() || p.peek() != ']' {
		return attr, errors.New("unterminated attribute selector")
	}
	p.pos++
	return attr, nil
}

func (p *selectorParser) ident() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == '-' || c == '_' || c >= 0x80 ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *selectorParser) skipSpace() bool {
	start := p.pos
	for !p.eof() && strings.IndexByte(" \t\n\r\f", p.peek()) >= 0 {
		p.pos++
	}
	return p.pos > start
}

func (p *selectorParser) peek() byte { return p.src[p.pos] }

func (p *selectorParser) eof() bool { return p.pos >= len(p.src) }
