package js

import (
	"strconv"
	"strings"
	"unicode"

	"scrollreveal/pkg/browser"
	"scrollreveal/pkg/html"

	"github.com/dop251/goja"
)

// domContext holds shared state for DOM bindings within a single runtime.
// It maintains a node-to-proxy cache so the same JS object is returned for
// the same underlying *html.Node (needed for === identity checks).
type domContext struct {
	vm    *goja.Runtime
	win   *browser.Window
	cache map[*html.Node]goja.Value
	nodes map[*goja.Object]*html.Node
}

func newDOMContext(vm *goja.Runtime, win *browser.Window) *domContext {
	return &domContext{
		vm:    vm,
		win:   win,
		cache: make(map[*html.Node]goja.Value),
		nodes: make(map[*goja.Object]*html.Node),
	}
}

// mutated tells the window its layout may be stale.
func (ctx *domContext) mutated() { ctx.win.Invalidate() }

func (ctx *domContext) doc() *html.Document { return ctx.win.Document() }

// registerDocument sets up the global `document` object on the goja runtime.
func registerDocument(ctx *domContext, listen func(goja.FunctionCall) goja.Value) *goja.Object {
	vm := ctx.vm
	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		id := call.Arguments[0].String()
		node := getElementById(ctx.doc().Root, id)
		if node == nil {
			return goja.Null()
		}
		return ctx.elementProxy(node)
	})
	docObj.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		return querySelectorFn(ctx, ctx.doc().Root)(call)
	})
	docObj.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		return querySelectorAllFn(ctx, ctx.doc().Root)(call)
	})
	docObj.Set("addEventListener", listen)
	docObj.Set("createElement", ctx.createElement)

	body := func() goja.Value {
		b := ctx.doc().Body()
		if b == ctx.doc().Root {
			return goja.Null()
		}
		return ctx.elementProxy(b)
	}
	docObj.DefineAccessorProperty("body", vm.ToValue(body), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	docObj.DefineAccessorProperty("documentElement", vm.ToValue(func() goja.Value {
		for _, c := range ctx.doc().Root.Children {
			if c.Type == html.ElementNode {
				return ctx.elementProxy(c)
			}
		}
		return goja.Null()
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)

	vm.Set("document", docObj)
	return docObj
}

// getElementById walks the tree and returns the first node with matching id.
func getElementById(node *html.Node, id string) *html.Node {
	if node.Type == html.ElementNode {
		if val, ok := node.Attributes["id"]; ok && val == id {
			return node
		}
	}
	for _, child := range node.Children {
		if found := getElementById(child, id); found != nil {
			return found
		}
	}
	return nil
}

// elementArray creates a JS array of Element proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	vals := make([]interface{}, len(nodes))
	for i, n := range nodes {
		vals[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(vals...)
}

// elementProxy creates (or retrieves from cache) a JS DynamicObject wrapping an html.Node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	ctx.nodes[v] = node
	return v
}

// elementAccessor implements goja.DynamicObject to intercept property access
// on DOM element proxies.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"tagName", "nodeName", "nodeType", "id", "className", "textContent",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "parentElement", "style", "classList",
	"querySelector", "querySelectorAll", "matches", "closest",
	"getBoundingClientRect", "offsetTop", "offsetLeft", "offsetWidth", "offsetHeight",
	"innerHTML", "outerHTML", "appendChild", "removeChild", "insertBefore", "append", "remove",
	"firstElementChild", "lastElementChild", "nextElementSibling", "previousElementSibling",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm

	switch key {
	case "nodeType":
		if e.node.Type == html.TextNode {
			return vm.ToValue(3) // Node.TEXT_NODE
		}
		return vm.ToValue(1) // Node.ELEMENT_NODE
	case "nodeName":
		if e.node.Type == html.TextNode {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "tagName":
		if e.node.Type == html.TextNode {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "id":
		id, _ := e.node.GetAttribute("id")
		return vm.ToValue(id)
	case "className":
		cls, _ := e.node.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(e.node.TextContent())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := e.node.GetAttribute(call.Arguments[0].String())
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'setAttribute': 2 arguments required"))
			}
			e.node.SetAttribute(strings.ToLower(call.Arguments[0].String()), call.Arguments[1].String())
			e.ctx.mutated()
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			return vm.ToValue(e.node.HasAttribute(call.Arguments[0].String()))
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Undefined()
			}
			e.node.RemoveAttribute(call.Arguments[0].String())
			e.ctx.mutated()
			return goja.Undefined()
		})
	case "children":
		var elChildren []*html.Node
		for _, child := range e.node.Children {
			if child.Type == html.ElementNode {
				elChildren = append(elChildren, child)
			}
		}
		return e.ctx.elementArray(elChildren)
	case "parentElement":
		if e.node.Parent != nil && e.node.Parent.Type == html.ElementNode &&
			e.node.Parent.TagName != "document" {
			return e.ctx.elementProxy(e.node.Parent)
		}
		return goja.Null()
	case "style":
		return newStyleProxy(e.ctx, e.node)
	case "classList":
		return newClassListProxy(e.ctx, e.node)

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, e.node))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, e.node))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, e.node))
	case "closest":
		return vm.ToValue(closestFn(e.ctx, e.node))

	case "getBoundingClientRect":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			x, y, w, h := e.ctx.win.BoundingRect(e.node)
			rect := vm.NewObject()
			rect.Set("x", x)
			rect.Set("y", y)
			rect.Set("left", x)
			rect.Set("top", y)
			rect.Set("width", w)
			rect.Set("height", h)
			rect.Set("right", x+w)
			rect.Set("bottom", y+h)
			return rect
		})
	case "offsetTop":
		_, y, _, _ := e.ctx.win.BoundingRect(e.node)
		return vm.ToValue(y + e.ctx.win.ScrollY())
	case "offsetLeft":
		x, _, _, _ := e.ctx.win.BoundingRect(e.node)
		return vm.ToValue(x)
	case "offsetWidth":
		_, _, w, _ := e.ctx.win.BoundingRect(e.node)
		return vm.ToValue(w)
	case "offsetHeight":
		return vm.ToValue(e.ctx.win.OffsetHeight(e.node))

	case "innerHTML":
		return vm.ToValue(e.innerHTML())
	case "outerHTML":
		return vm.ToValue(e.node.SerializeOuter())
	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "append":
		return vm.ToValue(e.appendFn())
	case "remove":
		return vm.ToValue(e.removeFn())
	case "firstElementChild":
		return e.firstElementChild()
	case "lastElementChild":
		return e.lastElementChild()
	case "nextElementSibling":
		return e.elementSibling(1)
	case "previousElementSibling":
		return e.elementSibling(-1)
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		e.node.Children = nil
		if s := val.String(); s != "" {
			e.node.AppendText(s)
		}
	case "className":
		e.node.SetAttribute("class", val.String())
	case "id":
		e.node.SetAttribute("id", val.String())
	case "innerHTML":
		e.setInnerHTML(val.String())
		return true
	default:
		return false
	}
	e.ctx.mutated()
	return true
}

func (e *elementAccessor) Has(key string) bool {
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return elementKeys
}

// newStyleProxy creates a goja DynamicObject that maps JS camelCase
// property access to CSS kebab-case on the node's inline style attribute.
func newStyleProxy(ctx *domContext, node *html.Node) goja.Value {
	return ctx.vm.NewDynamicObject(&styleAccessor{ctx: ctx, node: node})
}

type styleAccessor struct {
	ctx  *domContext
	node *html.Node
}

func (s *styleAccessor) Get(key string) goja.Value {
	if key == "cssText" {
		v, _ := s.node.GetAttribute("style")
		return s.ctx.vm.ToValue(v)
	}
	val, _ := s.node.StyleProperty(camelToKebab(key))
	return s.ctx.vm.ToValue(val)
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		s.node.SetAttribute("style", val.String())
	} else {
		s.node.SetStyleProperty(camelToKebab(key), val.String())
	}
	s.ctx.mutated()
	return true
}

func (s *styleAccessor) Has(key string) bool {
	return true
}

func (s *styleAccessor) Delete(key string) bool {
	s.node.SetStyleProperty(camelToKebab(key), "")
	s.ctx.mutated()
	return true
}

func (s *styleAccessor) Keys() []string {
	decls := s.node.InlineStyle()
	keys := make([]string, 0, len(decls))
	for _, d := range decls {
		keys = append(keys, d.Property)
	}
	return keys
}

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
func camelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// indexKey reports whether key is an array index below n.
func indexKey(key string, n int) (int, bool) {
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}
