package js

import (
	"strings"

	"scrollreveal/pkg/html"

	"github.com/dop251/goja"
)

// classListAccessor backs element.classList. Changes go through the node's
// class helpers, the same path the AOS styler takes when it toggles the
// active marker, and only a real change invalidates layout.
type classListAccessor struct {
	ctx  *domContext
	node *html.Node
}

var classListKeys = []string{
	"length", "value", "add", "remove", "toggle", "contains", "replace", "item", "toString",
}

func newClassListProxy(ctx *domContext, node *html.Node) goja.Value {
	return ctx.vm.NewDynamicObject(&classListAccessor{ctx: ctx, node: node})
}

func (cl *classListAccessor) Get(key string) goja.Value {
	vm := cl.ctx.vm
	switch key {
	case "length":
		return vm.ToValue(len(cl.node.Classes()))
	case "value":
		return vm.ToValue(cl.value())
	case "add":
		return vm.ToValue(cl.each("add", cl.node.AddClass))
	case "remove":
		return vm.ToValue(cl.each("remove", cl.node.RemoveClass))
	case "toggle":
		return vm.ToValue(cl.toggle)
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(cl.node.HasClass(call.Argument(0).String()))
		})
	case "replace":
		return vm.ToValue(cl.replace)
	case "item":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return cl.item(int(call.Argument(0).ToInteger()))
		})
	case "toString":
		return vm.ToValue(func(goja.FunctionCall) goja.Value { return vm.ToValue(cl.value()) })
	}
	if idx, ok := indexKey(key, len(cl.node.Classes())); ok {
		return cl.item(idx)
	}
	return goja.Undefined()
}

func (cl *classListAccessor) value() string {
	v, _ := cl.node.GetAttribute("class")
	return v
}

func (cl *classListAccessor) item(i int) goja.Value {
	classes := cl.node.Classes()
	if i < 0 || i >= len(classes) {
		return goja.Null()
	}
	return cl.ctx.vm.ToValue(classes[i])
}

// token validates one classList argument the way DOMTokenList does.
func (cl *classListAccessor) token(method string, v goja.Value) string {
	t := v.String()
	switch {
	case t == "":
		panic(cl.ctx.vm.NewTypeError("Failed to execute '%s': The token provided must not be empty", method))
	case strings.ContainsAny(t, " \t\n\f\r"):
		panic(cl.ctx.vm.NewTypeError("Failed to execute '%s': The token provided ('%s') contains whitespace", method, t))
	}
	return t
}

// each applies op to every argument, invalidating layout once if anything
// changed.
func (cl *classListAccessor) each(method string, op func(string) bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		tokens := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			tokens[i] = cl.token(method, arg)
		}
		changed := false
		for _, t := range tokens {
			changed = op(t) || changed
		}
		if changed {
			cl.ctx.mutated()
		}
		return goja.Undefined()
	}
}

func (cl *classListAccessor) toggle(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) == 0 {
		panic(cl.ctx.vm.NewTypeError("Failed to execute 'toggle': 1 argument required"))
	}
	t := cl.token("toggle", call.Arguments[0])
	on := !cl.node.HasClass(t)
	if force := call.Argument(1); !goja.IsUndefined(force) {
		on = force.ToBoolean()
	}
	var changed bool
	if on {
		changed = cl.node.AddClass(t)
	} else {
		changed = cl.node.RemoveClass(t)
	}
	if changed {
		cl.ctx.mutated()
	}
	return cl.ctx.vm.ToValue(on)
}

func (cl *classListAccessor) replace(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) < 2 {
		panic(cl.ctx.vm.NewTypeError("Failed to execute 'replace': 2 arguments required"))
	}
	old := cl.token("replace", call.Arguments[0])
	repl := cl.token("replace", call.Arguments[1])
	if !cl.node.ReplaceClass(old, repl) {
		return cl.ctx.vm.ToValue(false)
	}
	cl.ctx.mutated()
	return cl.ctx.vm.ToValue(true)
}

func (cl *classListAccessor) Set(key string, val goja.Value) bool {
	if key != "value" {
		return false
	}
	cl.node.SetAttribute("class", val.String())
	cl.ctx.mutated()
	return true
}

func (cl *classListAccessor) Has(key string) bool {
	for _, k := range classListKeys {
		if k == key {
			return true
		}
	}
	_, ok := indexKey(key, len(cl.node.Classes()))
	return ok
}

func (cl *classListAccessor) Delete(string) bool { return false }

func (cl *classListAccessor) Keys() []string { return classListKeys }
