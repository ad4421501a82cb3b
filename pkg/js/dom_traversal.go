package js

import (
	"scrollreveal/pkg/html"

	"github.com/dop251/goja"
)

// elementSibling walks from n's position in its parent by step and returns
// the first element found.
func (e *elementAccessor) elementSibling(step int) goja.Value {
	idx := e.node.IndexInParent()
	if idx < 0 {
		return goja.Null()
	}
	siblings := e.node.Parent.Children
	for i := idx + step; i >= 0 && i < len(siblings); i += step {
		if siblings[i].Type == html.ElementNode {
			return e.ctx.elementProxy(siblings[i])
		}
	}
	return goja.Null()
}

func (e *elementAccessor) firstElementChild() goja.Value {
	for _, c := range e.node.Children {
		if c.Type == html.ElementNode {
			return e.ctx.elementProxy(c)
		}
	}
	return goja.Null()
}

func (e *elementAccessor) lastElementChild() goja.Value {
	for i := len(e.node.Children) - 1; i >= 0; i-- {
		if c := e.node.Children[i]; c.Type == html.ElementNode {
			return e.ctx.elementProxy(c)
		}
	}
	return goja.Null()
}
