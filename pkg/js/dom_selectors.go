package js

import (
	"fmt"

	"scrollreveal/pkg/css"
	"scrollreveal/pkg/html"

	"github.com/dop251/goja"
)

// selectorGroup parses the first argument of a selector API call, throwing
// on a missing or malformed selector.
func selectorGroup(ctx *domContext, call goja.FunctionCall, method string) []css.Selector {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError(fmt.Sprintf("Failed to execute '%s': 1 argument required", method)))
	}
	raw := call.Arguments[0].String()
	sels, err := css.ParseSelectorGroup(raw)
	if err != nil {
		panic(ctx.vm.NewTypeError(fmt.Sprintf("Failed to execute '%s': '%s' is not a valid selector", method, raw)))
	}
	return sels
}

// querySelectorFn returns a JS function implementing querySelector.
func querySelectorFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := selectorGroup(ctx, call, "querySelector")
		var result *html.Node
		root.Walk(func(n *html.Node) bool {
			if n != root && css.MatchesAny(n, sels) {
				result = n
				return true
			}
			return false
		})
		if result == nil {
			return goja.Null()
		}
		return ctx.elementProxy(result)
	}
}

// querySelectorAllFn returns a JS function implementing querySelectorAll.
func querySelectorAllFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := selectorGroup(ctx, call, "querySelectorAll")
		var results []*html.Node
		root.Walk(func(n *html.Node) bool {
			if n != root && css.MatchesAny(n, sels) {
				results = append(results, n)
			}
			return false
		})
		return ctx.elementArray(results)
	}
}

// matchesFn returns a JS function implementing element.matches(selector).
func matchesFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := selectorGroup(ctx, call, "matches")
		return ctx.vm.ToValue(css.MatchesAny(node, sels))
	}
}

// closestFn returns a JS function implementing element.closest(selector).
func closestFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := selectorGroup(ctx, call, "closest")
		for current := node; current != nil; current = current.Parent {
			if current.Type != html.ElementNode || current.TagName == "document" {
				continue
			}
			if css.MatchesAny(current, sels) {
				return ctx.elementProxy(current)
			}
		}
		return goja.Null()
	}
}
