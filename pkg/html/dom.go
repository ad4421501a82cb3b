package html

import (
	"sort"
	"strings"

	"github.com/aymerick/douceur/parser"
)

type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

type Document struct {
	Root        *Node
	Stylesheets []string // CSS from <style> tags, in document order
	Scripts     []string // JavaScript from <script> tags, in document order
}

func NewDocument() *Document {
	return &Document{
		Root: &Node{
			Type:     ElementNode,
			TagName:  "document",
			Children: make([]*Node, 0),
		},
		Stylesheets: make([]string, 0),
		Scripts:     make([]string, 0),
	}
}

// NewElement returns a detached element node with an empty attribute map.
func NewElement(tag string, attrs map[string]string) *Node {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Node{
		Type:       ElementNode,
		TagName:    strings.ToLower(tag),
		Attributes: attrs,
		Children:   make([]*Node, 0),
	}
}

// Body returns the <body> element, or the root when the document has none.
func (d *Document) Body() *Node {
	var body *Node
	d.Root.Walk(func(n *Node) bool {
		if n.Type == ElementNode && n.TagName == "body" {
			body = n
			return true
		}
		return false
	})
	if body == nil {
		return d.Root
	}
	return body
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

// HasAttribute reports presence, regardless of value.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

func (n *Node) RemoveAttribute(name string) {
	if n.Attributes != nil {
		delete(n.Attributes, name)
	}
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(&Node{Type: TextNode, Text: text})
}

// RemoveChild removes the given child from this node's children list,
// clears its parent pointer, and returns the removed child.
// Returns nil if child is not found.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// InsertBefore inserts child before ref. A nil ref, or one that is not a
// child of n, appends. child is detached from its old parent first.
func (n *Node) InsertBefore(child, ref *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	idx := -1
	if ref != nil && ref.Parent == n {
		idx = ref.IndexInParent()
	}
	if idx < 0 {
		n.AddChild(child)
		return
	}
	child.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[idx+1:], n.Children[idx:])
	n.Children[idx] = child
}

// IndexInParent returns n's position among its parent's children, or -1.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Contains returns true if other is a descendant of n (or n itself).
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in document order. Returning true from
// visit stops the walk.
func (n *Node) Walk(visit func(*Node) bool) bool {
	if visit(n) {
		return true
	}
	for _, child := range n.Children {
		if child.Walk(visit) {
			return true
		}
	}
	return false
}

// TextContent concatenates all descendant text.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var sb strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Type == TextNode {
			sb.WriteString(c.Text)
		}
		return false
	})
	return sb.String()
}

// Classes returns the whitespace-separated tokens of the class attribute.
func (n *Node) Classes() []string {
	attr, _ := n.GetAttribute("class")
	return strings.Fields(attr)
}

func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends class if absent. Reports whether the list changed.
func (n *Node) AddClass(class string) bool {
	if n.HasClass(class) {
		return false
	}
	n.SetAttribute("class", strings.Join(append(n.Classes(), class), " "))
	return true
}

// RemoveClass drops every occurrence of class. Reports whether the list changed.
func (n *Node) RemoveClass(class string) bool {
	classes := n.Classes()
	kept := classes[:0]
	for _, c := range classes {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(classes) {
		return false
	}
	n.SetAttribute("class", strings.Join(kept, " "))
	return true
}

// ReplaceClass swaps the first occurrence of old for repl, dropping later
// duplicates of either. Reports whether old was present.
func (n *Node) ReplaceClass(old, repl string) bool {
	classes := n.Classes()
	out := make([]string, 0, len(classes))
	found, placed := false, false
	for _, c := range classes {
		switch {
		case c == old && !found:
			found = true
			if !placed {
				out = append(out, repl)
				placed = true
			}
		case c == old, c == repl && placed:
		case c == repl:
			out = append(out, c)
			placed = true
		default:
			out = append(out, c)
		}
	}
	if !found {
		return false
	}
	n.SetAttribute("class", strings.Join(out, " "))
	return true
}

// StyleDeclaration is one property of an inline style attribute.
type StyleDeclaration struct {
	Property string
	Value    string
}

// InlineStyle parses the style attribute into declarations, preserving order.
// Malformed attributes yield whatever prefix parsed cleanly.
func (n *Node) InlineStyle() []StyleDeclaration {
	attr, ok := n.GetAttribute("style")
	if !ok || strings.TrimSpace(attr) == "" {
		return nil
	}
	// douceur leaves the last value empty unless the declaration is terminated.
	if !strings.HasSuffix(strings.TrimSpace(attr), ";") {
		attr += ";"
	}
	decls, err := parser.ParseDeclarations(attr)
	if err != nil && len(decls) == 0 {
		return nil
	}
	result := make([]StyleDeclaration, 0, len(decls))
	for _, d := range decls {
		result = append(result, StyleDeclaration{
			Property: strings.ToLower(d.Property),
			Value:    d.Value,
		})
	}
	return result
}

// StyleProperty returns an inline style value.
func (n *Node) StyleProperty(property string) (string, bool) {
	property = strings.ToLower(property)
	for _, d := range n.InlineStyle() {
		if d.Property == property {
			return d.Value, true
		}
	}
	return "", false
}

// SetStyleProperty writes one inline style property, replacing an existing
// value in place. An empty value removes the property.
func (n *Node) SetStyleProperty(property, value string) {
	property = strings.ToLower(property)
	decls := n.InlineStyle()
	out := make([]StyleDeclaration, 0, len(decls)+1)
	found := false
	for _, d := range decls {
		if d.Property == property {
			found = true
			if value == "" {
				continue
			}
			d.Value = value
		}
		out = append(out, d)
	}
	if !found && value != "" {
		out = append(out, StyleDeclaration{Property: property, Value: value})
	}
	if len(out) == 0 {
		n.RemoveAttribute("style")
		return
	}
	parts := make([]string, len(out))
	for i, d := range out {
		parts[i] = d.Property + ": " + d.Value
	}
	n.SetAttribute("style", strings.Join(parts, "; "))
}

// SerializeOuter returns the outerHTML of this node.
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	if n.Type == TextNode {
		sb.WriteString(escapeHTML(n.Text))
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	// Sort attributes for deterministic output
	if len(n.Attributes) > 0 {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(n.Attributes[k]))
			sb.WriteByte('"')
		}
	}

	if isVoidElement(n.TagName) {
		sb.WriteString(">")
		return
	}

	sb.WriteByte('>')
	for _, child := range n.Children {
		serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

var (
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}
