package js

import (
	"scrollreveal/pkg/aos"

	"github.com/dop251/goja"
)

// registerAOS installs the global AOS object with init(options) and
// refresh(). Every init call goes to the same engine, so a second call
// subscribes a second set of listeners just as the script asked.
func (e *Engine) registerAOS() {
	obj := e.vm.NewObject()
	obj.Set("init", func(call goja.FunctionCall) goja.Value {
		if err := e.InitAOS(readSettings(call.Argument(0))); err != nil {
			panic(e.vm.NewGoError(err))
		}
		return goja.Undefined()
	})
	obj.Set("refresh", func(call goja.FunctionCall) goja.Value {
		if e.aos != nil {
			e.aos.Refresh()
		}
		return goja.Undefined()
	})
	e.vm.Set("AOS", obj)
}

// InitAOS does what AOS.init does for a script, creating the engine on
// first use.
func (e *Engine) InitAOS(settings aos.Settings) error {
	if e.aos == nil {
		e.aos = aos.New(e.win, e.aosOpts...)
	}
	return e.aos.Init(settings)
}

// readSettings overlays an options object onto the defaults. Unknown keys
// and undefined values are ignored.
func readSettings(v goja.Value) aos.Settings {
	s := aos.DefaultSettings()
	opts, ok := v.(*goja.Object)
	if !ok {
		return s
	}
	get := func(key string) (goja.Value, bool) {
		val := opts.Get(key)
		if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
			return nil, false
		}
		return val, true
	}
	if val, ok := get("offset"); ok {
		s.Offset = int(val.ToInteger())
	}
	if val, ok := get("delay"); ok {
		s.Delay = int(val.ToInteger())
	}
	if val, ok := get("duration"); ok {
		s.Duration = int(val.ToInteger())
	}
	if val, ok := get("easing"); ok {
		s.Easing = val.String()
	}
	if val, ok := get("once"); ok {
		s.Once = val.ToBoolean()
	}
	if val, ok := get("mirror"); ok {
		s.Mirror = val.ToBoolean()
	}
	if val, ok := get("anchorPlacement"); ok {
		if p, valid := aos.ParsePlacement(val.String()); valid {
			s.AnchorPlacement = p
		}
	}
	if val, ok := get("startEvent"); ok {
		s.StartEvent = val.String()
	}
	return s
}
