package css

import (
	"strings"

	"scrollreveal/pkg/html"
)

// MatchesSelector returns true if the node matches the complex selector
func MatchesSelector(node *html.Node, selector Selector) bool {
	if node.Type != html.ElementNode || len(selector.Parts) == 0 {
		return false
	}
	// Start matching from the rightmost part (the target element)
	return matchesCompoundSelector(node, selector, len(selector.Parts)-1)
}

// MatchesAny reports whether node matches any selector of a group.
func MatchesAny(node *html.Node, group []Selector) bool {
	for _, sel := range group {
		if MatchesSelector(node, sel) {
			return true
		}
	}
	return false
}

// QuerySelectorAll returns every element under root (root excluded) that
// matches the selector group, in document order.
func QuerySelectorAll(root *html.Node, group string) ([]*html.Node, error) {
	sels, err := ParseSelectorGroup(group)
	if err != nil {
		return nil, err
	}
	var results []*html.Node
	root.Walk(func(n *html.Node) bool {
		if n != root && MatchesAny(n, sels) {
			results = append(results, n)
		}
		return false
	})
	return results, nil
}

// QuerySelector returns the first match under root, or nil.
func QuerySelector(root *html.Node, group string) (*html.Node, error) {
	sels, err := ParseSelectorGroup(group)
	if err != nil {
		return nil, err
	}
	var result *html.Node
	root.Walk(func(n *html.Node) bool {
		if n != root && MatchesAny(n, sels) {
			result = n
			return true
		}
		return false
	})
	return result, nil
}

// matchesCompoundSelector checks if the node matches the selector at the given part index
// and all ancestor requirements
func matchesCompoundSelector(node *html.Node, selector Selector, partIndex int) bool {
	if !matchesSelectorPart(node, selector.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	prevPartIndex := partIndex - 1
	switch selector.Combinators[prevPartIndex] {
	case DescendantCombinator:
		for ancestor := node.Parent; ancestor != nil; ancestor = ancestor.Parent {
			if isMatchable(ancestor) && matchesCompoundSelector(ancestor, selector, prevPartIndex) {
				return true
			}
		}
		return false

	case ChildCombinator:
		// Skip the synthetic document node
		if isMatchable(node.Parent) {
			return matchesCompoundSelector(node.Parent, selector, prevPartIndex)
		}
		return false

	case AdjacentSiblingCombinator:
		if prev := previousElementSibling(node); prev != nil {
			return matchesCompoundSelector(prev, selector, prevPartIndex)
		}
		return false

	case GeneralSiblingCombinator:
		for sib := previousElementSibling(node); sib != nil; sib = previousElementSibling(sib) {
			if matchesCompoundSelector(sib, selector, prevPartIndex) {
				return true
			}
		}
		return false
	}

	return false
}

func isMatchable(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.TagName != "document"
}

// matchesSelectorPart checks if a node matches a single selector part
func matchesSelectorPart(node *html.Node, part SelectorPart) bool {
	if part.Element != "" && part.Element != "*" && node.TagName != part.Element {
		return false
	}

	if part.ID != "" {
		if id, ok := node.GetAttribute("id"); !ok || id != part.ID {
			return false
		}
	}

	for _, cls := range part.Classes {
		if !node.HasClass(cls) {
			return false
		}
	}

	for _, attrSel := range part.Attributes {
		if !matchesAttributeSelector(node, attrSel) {
			return false
		}
	}

	for _, pc := range part.PseudoClasses {
		if !matchesPseudoClass(node, pc) {
			return false
		}
	}

	return true
}

// matchesPseudoClass supports the structural pseudo-classes a static tree can
// answer. Dynamic ones (hover, focus, ...) never match.
func matchesPseudoClass(node *html.Node, pc string) bool {
	switch pc {
	case "first-child":
		return previousElementSibling(node) == nil
	case "last-child":
		return nextElementSibling(node) == nil
	case "root":
		return node.Parent != nil && node.Parent.TagName == "document"
	}
	return false
}

// matchesAttributeSelector checks if a node matches an attribute selector
func matchesAttributeSelector(node *html.Node, attr AttributeSelector) bool {
	value, ok := node.GetAttribute(attr.Name)
	if !ok {
		return false
	}

	switch attr.Operator {
	case "":
		return true
	case "=":
		return value == attr.Value
	case "^=":
		return attr.Value != "" && strings.HasPrefix(value, attr.Value)
	case "$=":
		return attr.Value != "" && strings.HasSuffix(value, attr.Value)
	case "*=":
		return attr.Value != "" && strings.Contains(value, attr.Value)
	case "~=":
		for _, word := range strings.Fields(value) {
			if word == attr.Value {
				return true
			}
		}
		return false
	case "|=":
		// Language prefix (equals value or starts with value-)
		return value == attr.Value || strings.HasPrefix(value, attr.Value+"-")
	}

	return false
}

func previousElementSibling(node *html.Node) *html.Node {
	if node.Parent == nil {
		return nil
	}
	var prev *html.Node
	for _, sibling := range node.Parent.Children {
		if sibling == node {
			return prev
		}
		if sibling.Type == html.ElementNode {
			prev = sibling
		}
	}
	return nil
}

func nextElementSibling(node *html.Node) *html.Node {
	if node.Parent == nil {
		return nil
	}
	seen := false
	for _, sibling := range node.Parent.Children {
		if seen && sibling.Type == html.ElementNode {
			return sibling
		}
		if sibling == node {
			seen = true
		}
	}
	return nil
}
