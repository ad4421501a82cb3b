package html

import (
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a Document from HTML source. The tree always contains the
// implied html/head/body elements. <style> and <script> bodies are collected
// into Document.Stylesheets and Document.Scripts and kept out of the tree.
func Parse(src string) (*Document, error) {
	root, err := xhtml.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := NewDocument()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		convert(doc, doc.Root, c)
	}
	return doc, nil
}

// ParseFragment parses src as the contents of a <body> element, the way
// innerHTML assignments are parsed. Style and script elements are dropped.
func ParseFragment(src string) ([]*Node, error) {
	context := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := xhtml.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	holder := NewElement("body", nil)
	scratch := NewDocument()
	for _, n := range nodes {
		convert(scratch, holder, n)
	}
	out := holder.Children
	for _, c := range out {
		c.Parent = nil
	}
	return out, nil
}

// convert copies src and its subtree under parent.
func convert(doc *Document, parent *Node, src *xhtml.Node) {
	switch src.Type {
	case xhtml.TextNode:
		if src.Data != "" {
			parent.AppendText(src.Data)
		}
	case xhtml.ElementNode:
		switch src.Data {
		case "style":
			doc.Stylesheets = append(doc.Stylesheets, rawText(src))
			return
		case "script":
			if isJavaScript(src) {
				doc.Scripts = append(doc.Scripts, rawText(src))
			}
			return
		}
		attrs := make(map[string]string, len(src.Attr))
		for _, a := range src.Attr {
			attrs[a.Key] = a.Val
		}
		node := NewElement(src.Data, attrs)
		parent.AddChild(node)
		for c := src.FirstChild; c != nil; c = c.NextSibling {
			convert(doc, node, c)
		}
	}
	// Comments, doctypes and other node kinds carry nothing we lay out.
}

func rawText(n *xhtml.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func isJavaScript(n *xhtml.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "type" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(a.Val)) {
		case "", "text/javascript", "application/javascript", "module":
			return true
		default:
			return false
		}
	}
	return true
}
