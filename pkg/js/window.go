package js

import (
	"time"

	"github.com/dop251/goja"
)

// windowAccessor backs the global `window` object. Geometry reads go to the
// browser window; anything a script assigns is kept as an expando.
type windowAccessor struct {
	e        *Engine
	expandos map[string]goja.Value
}

var windowKeys = []string{
	"scrollY", "pageYOffset", "innerHeight", "innerWidth",
	"scrollTo", "scroll", "scrollBy", "addEventListener",
	"setTimeout", "clearTimeout", "document", "console", "AOS",
}

func (w *windowAccessor) Get(key string) goja.Value {
	vm := w.e.vm
	win := w.e.win
	switch key {
	case "scrollY", "pageYOffset":
		return vm.ToValue(win.ScrollY())
	case "innerHeight":
		return vm.ToValue(win.InnerHeight())
	case "innerWidth":
		return vm.ToValue(win.InnerWidth())
	case "scrollTo", "scroll":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			win.ScrollTo(scrollTarget(vm, call, win.ScrollY()))
			return goja.Undefined()
		})
	case "scrollBy":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			win.ScrollBy(scrollTarget(vm, call, 0))
			return goja.Undefined()
		})
	case "addEventListener":
		return vm.ToValue(w.e.addEventListener)
	case "setTimeout":
		return vm.ToValue(w.e.setTimeout)
	case "clearTimeout":
		return vm.ToValue(w.e.clearTimeout)
	case "document", "console", "AOS":
		return vm.Get(key)
	}
	if v, ok := w.expandos[key]; ok {
		return v
	}
	return goja.Undefined()
}

func (w *windowAccessor) Set(key string, val goja.Value) bool {
	for _, k := range windowKeys {
		if k == key {
			return false
		}
	}
	w.expandos[key] = val
	return true
}

func (w *windowAccessor) Has(key string) bool {
	for _, k := range windowKeys {
		if k == key {
			return true
		}
	}
	_, ok := w.expandos[key]
	return ok
}

func (w *windowAccessor) Delete(key string) bool {
	delete(w.expandos, key)
	return true
}

func (w *windowAccessor) Keys() []string {
	keys := append([]string(nil), windowKeys...)
	for k := range w.expandos {
		keys = append(keys, k)
	}
	return keys
}

// scrollTarget reads the vertical coordinate of scrollTo(x, y),
// scrollTo({top}) or scrollBy(x, y). def is returned when none is given.
func scrollTarget(vm *goja.Runtime, call goja.FunctionCall, def float64) float64 {
	if len(call.Arguments) == 0 {
		return def
	}
	if len(call.Arguments) >= 2 {
		return call.Arguments[1].ToFloat()
	}
	arg := call.Arguments[0]
	if obj, ok := arg.(*goja.Object); ok {
		if top := obj.Get("top"); top != nil && !goja.IsUndefined(top) {
			return top.ToFloat()
		}
		return def
	}
	return def
}

// addEventListener subscribes a JS callback to a window event. Exceptions
// thrown by the callback are logged.
func (e *Engine) addEventListener(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) < 2 {
		panic(e.vm.NewTypeError("Failed to execute 'addEventListener': 2 arguments required"))
	}
	event := call.Arguments[0].String()
	fn, ok := goja.AssertFunction(call.Arguments[1])
	if !ok {
		return goja.Undefined()
	}
	e.win.AddEventListener(event, func() {
		if _, err := fn(goja.Undefined()); err != nil {
			e.logger.Error("js: listener failed", "event", event, "error", err)
		}
	})
	return goja.Undefined()
}

func (e *Engine) setTimeout(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		panic(e.vm.NewTypeError("Failed to execute 'setTimeout': parameter 1 is not a function"))
	}
	delay := time.Duration(call.Argument(1).ToInteger()) * time.Millisecond
	e.nextTimer++
	id := e.nextTimer
	e.timers[id] = e.win.AfterFunc(delay, func() {
		delete(e.timers, id)
		if _, err := fn(goja.Undefined()); err != nil {
			e.logger.Error("js: timeout failed", "id", id, "error", err)
		}
	})
	return e.vm.ToValue(id)
}

func (e *Engine) clearTimeout(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).ToInteger()
	if t, ok := e.timers[id]; ok {
		t.Stop()
		delete(e.timers, id)
	}
	return goja.Undefined()
}
