package js

import (
	"strings"

	"scrollreveal/pkg/html"

	"github.com/dop251/goja"
)

// createElement implements document.createElement(tag).
func (ctx *domContext) createElement(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute 'createElement': 1 argument required"))
	}
	return ctx.elementProxy(html.NewElement(call.Arguments[0].String(), nil))
}

// unwrapNode returns the node behind an element proxy, or nil.
func (ctx *domContext) unwrapNode(v goja.Value) *html.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return ctx.nodes[obj]
}

// nodeArg converts an argument to a node, turning anything that is not an
// element proxy into a text node.
func (ctx *domContext) nodeArg(v goja.Value) *html.Node {
	if n := ctx.unwrapNode(v); n != nil {
		return n
	}
	return &html.Node{Type: html.TextNode, Text: v.String()}
}

func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.requireNode(call, 0, "appendChild")
		e.node.InsertBefore(child, nil)
		e.ctx.mutated()
		return e.ctx.elementProxy(child)
	}
}

func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.requireNode(call, 0, "removeChild")
		if e.node.RemoveChild(child) == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		e.ctx.mutated()
		return e.ctx.elementProxy(child)
	}
}

func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.requireNode(call, 0, "insertBefore")
		var ref *html.Node
		if arg := call.Argument(1); !goja.IsNull(arg) && !goja.IsUndefined(arg) {
			ref = e.ctx.unwrapNode(arg)
		}
		e.node.InsertBefore(child, ref)
		e.ctx.mutated()
		return e.ctx.elementProxy(child)
	}
}

// appendFn implements element.append(...nodes); strings become text.
func (e *elementAccessor) appendFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			e.node.InsertBefore(e.ctx.nodeArg(arg), nil)
		}
		e.ctx.mutated()
		return goja.Undefined()
	}
}

// removeFn implements element.remove().
func (e *elementAccessor) removeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if e.node.Parent != nil {
			e.node.Parent.RemoveChild(e.node)
			e.ctx.mutated()
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) requireNode(call goja.FunctionCall, i int, method string) *html.Node {
	if len(call.Arguments) <= i {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': %d argument required", method, i+1))
	}
	n := e.ctx.unwrapNode(call.Arguments[i])
	if n == nil {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': parameter %d is not a Node", method, i+1))
	}
	return n
}

func (e *elementAccessor) innerHTML() string {
	var sb strings.Builder
	for _, c := range e.node.Children {
		sb.WriteString(c.SerializeOuter())
	}
	return sb.String()
}

// setInnerHTML replaces the children with the parsed fragment.
func (e *elementAccessor) setInnerHTML(src string) {
	for _, c := range e.node.Children {
		c.Parent = nil
	}
	e.node.Children = nil
	if src != "" {
		nodes, err := html.ParseFragment(src)
		if err != nil {
			panic(e.ctx.vm.NewGoError(err))
		}
		for _, n := range nodes {
			e.node.AddChild(n)
		}
	}
	e.ctx.mutated()
}
