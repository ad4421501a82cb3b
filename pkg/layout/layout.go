package layout

import (
	"strings"

	"scrollreveal/pkg/css"
	"scrollreveal/pkg/html"
)

// averageCharWidth approximates glyph advance as a fraction of the font size.
const averageCharWidth = 0.5

// LayoutEngine performs vertical block flow. It supports margins, padding,
// borders, explicit width/height/min-height (px, em, vh), display:none and
// greedy word wrapping of inline runs. Margins do not collapse and positioned
// or floated elements stay in normal flow.
type LayoutEngine struct {
	viewport struct {
		width  float64
		height float64
	}
	styles map[*html.Node]*css.Style
}

func NewLayoutEngine(viewportWidth, viewportHeight float64) *LayoutEngine {
	le := &LayoutEngine{}
	le.viewport.width = viewportWidth
	le.viewport.height = viewportHeight
	return le
}

// Layout computes the box tree for doc.
func (le *LayoutEngine) Layout(doc *html.Document) *Tree {
	sheets := css.ParseStylesheets(doc.Stylesheets)
	le.styles = css.ComputeStyles(doc, sheets)

	tree := &Tree{Width: le.viewport.width, byNode: make(map[*html.Node]*Box)}
	y := 0.0
	for _, node := range doc.Root.Children {
		if node.Type != html.ElementNode {
			continue
		}
		box := le.layoutBlock(tree, node, 0, y, le.viewport.width, nil)
		if box == nil {
			continue
		}
		tree.Roots = append(tree.Roots, box)
		y = box.Bottom() + box.Margin.Bottom
	}
	tree.Height = y
	return tree
}

func (le *LayoutEngine) styleOf(n *html.Node) *css.Style {
	if s, ok := le.styles[n]; ok {
		return s
	}
	return css.NewStyle()
}

func (le *LayoutEngine) isInline(n *html.Node) bool {
	if n.Type == html.TextNode {
		return true
	}
	return le.styleOf(n).GetDisplay() == css.DisplayInline
}

func (le *LayoutEngine) layoutBlock(tree *Tree, node *html.Node, x, y, avail float64, parent *Box) *Box {
	style := le.styleOf(node)
	if style.GetDisplay() == css.DisplayNone {
		return nil
	}

	box := &Box{
		Node:    node,
		Style:   style,
		Margin:  style.GetMargin(),
		Padding: style.GetPadding(),
		Border:  style.GetBorderWidth(),
		Parent:  parent,
	}
	box.X = x + box.Margin.Left
	box.Y = y + box.Margin.Top

	horizontalExtras := box.Padding.Left + box.Padding.Right + box.Border.Left + box.Border.Right
	width := avail - box.Margin.Left - box.Margin.Right
	if w, ok := style.GetLength("width"); ok {
		width = w + horizontalExtras
	}
	if width < horizontalExtras {
		width = horizontalExtras
	}
	box.Width = width
	tree.byNode[node] = box

	cursor := box.ContentY()
	var run []*html.Node
	flush := func() {
		if len(run) > 0 {
			cursor = le.layoutInline(tree, box, run, cursor)
			run = run[:0]
		}
	}
	for _, child := range node.Children {
		if le.isInline(child) {
			run = append(run, child)
			continue
		}
		flush()
		cb := le.layoutBlock(tree, child, box.ContentX(), cursor, box.ContentWidth(), box)
		if cb == nil {
			continue
		}
		box.Children = append(box.Children, cb)
		cursor = cb.Bottom() + cb.Margin.Bottom
	}
	flush()

	contentHeight := cursor - box.ContentY()
	if raw, ok := style.Get("height"); ok {
		if h, ok := css.ParseViewportLength(raw, le.viewport.height); ok {
			contentHeight = h
		}
	}
	if raw, ok := style.Get("min-height"); ok {
		if h, ok := css.ParseViewportLength(raw, le.viewport.height); ok && h > contentHeight {
			contentHeight = h
		}
	}
	box.Height = contentHeight + box.Padding.Top + box.Padding.Bottom + box.Border.Top + box.Border.Bottom
	return box
}

// word is one unit of an inline run, tagged with the run member it came from.
type word struct {
	text  string
	owner int
}

// layoutInline wraps a run of text and inline elements inside parent starting
// at y and returns the y below the last line. Inline elements receive a box
// spanning the lines their words landed on.
func (le *LayoutEngine) layoutInline(tree *Tree, parent *Box, run []*html.Node, y float64) float64 {
	var words []word
	for i, n := range run {
		if n.Type == html.ElementNode && le.styleOf(n).GetDisplay() == css.DisplayNone {
			continue
		}
		for _, w := range strings.Fields(n.TextContent()) {
			words = append(words, word{text: w, owner: i})
		}
	}

	style := parent.Style
	lineHeight := style.GetLineHeight()
	charWidth := style.GetFontSize() * averageCharWidth
	maxWidth := parent.ContentWidth()

	firstLine := make(map[int]int)
	lastLine := make(map[int]int)
	lines := 0
	lineWidth := 0.0
	for _, w := range words {
		width := float64(len([]rune(w.text))) * charWidth
		switch {
		case lines == 0:
			lines = 1
			lineWidth = width
		case lineWidth+charWidth+width > maxWidth:
			lines++
			lineWidth = width
		default:
			lineWidth += charWidth + width
		}
		if _, seen := firstLine[w.owner]; !seen {
			firstLine[w.owner] = lines - 1
		}
		lastLine[w.owner] = lines - 1
	}

	for i, n := range run {
		if n.Type != html.ElementNode {
			continue
		}
		first, ok := firstLine[i]
		count := 0
		if ok {
			count = lastLine[i] - first + 1
		}
		box := &Box{
			Node:   n,
			Style:  le.styleOf(n),
			X:      parent.ContentX(),
			Y:      y + float64(first)*lineHeight,
			Width:  maxWidth,
			Height: float64(count) * lineHeight,
			Lines:  count,
			Parent: parent,
		}
		if box.Style.GetDisplay() == css.DisplayNone {
			continue
		}
		parent.Children = append(parent.Children, box)
		le.registerInline(tree, n, box)
	}

	parent.Lines += lines
	return y + float64(lines)*lineHeight
}

// registerInline maps n and its rendered element descendants onto box.
func (le *LayoutEngine) registerInline(tree *Tree, n *html.Node, box *Box) {
	tree.byNode[n] = box
	for _, c := range n.Children {
		if c.Type == html.ElementNode && le.styleOf(c).GetDisplay() != css.DisplayNone {
			le.registerInline(tree, c, box)
		}
	}
}
