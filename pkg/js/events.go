package js

import (
	"github.com/dop251/goja"

	"lazy14/pkg/events"
)

type listenerKey struct {
	target    events.Target
	eventType string
}

// scriptListener is a JS function registered through addEventListener.
type scriptListener struct {
	fn  goja.Value
	sub events.Subscription
}

// listenerRegistry remembers script listeners so removeEventListener can
// find them by function identity.
type listenerRegistry map[listenerKey][]*scriptListener

func (r listenerRegistry) find(k listenerKey, fn goja.Value) int {
	for i, l := range r[k] {
		if l.fn.SameAs(fn) {
			return i
		}
	}
	return -1
}

func (r listenerRegistry) drop(k listenerKey, i int) {
	list := r[k]
	r[k] = append(list[:i:i], list[i+1:]...)
	if len(r[k]) == 0 {
		delete(r, k)
	}
}

// addEventListenerFn implements addEventListener(type, fn[, {once}]) for
// target. Registering the same function twice is a no-op.
func addEventListenerFn(e *Engine, target events.Target, this goja.Value) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		eventType := call.Argument(0).String()
		fnVal := call.Argument(1)
		fn, ok := goja.AssertFunction(fnVal)
		if !ok {
			return goja.Undefined()
		}
		once := false
		if opts, ok := call.Argument(2).(*goja.Object); ok {
			if v := opts.Get("once"); v != nil {
				once = v.ToBoolean()
			}
		}

		k := listenerKey{target: target, eventType: eventType}
		if e.listeners.find(k, fnVal) >= 0 {
			return goja.Undefined()
		}
		l := &scriptListener{fn: fnVal}
		handler := func(ev events.Event) {
			if once {
				if i := e.listeners.find(k, fnVal); i >= 0 {
					e.listeners.drop(k, i)
				}
			}
			e.callListener(fn, this, ev)
		}
		if once {
			l.sub = e.bus.Once(target, eventType, handler)
		} else {
			l.sub = e.bus.On(target, eventType, handler)
		}
		e.listeners[k] = append(e.listeners[k], l)
		return goja.Undefined()
	}
}

// removeEventListenerFn implements removeEventListener(type, fn).
func removeEventListenerFn(e *Engine, target events.Target) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		k := listenerKey{target: target, eventType: call.Argument(0).String()}
		if i := e.listeners.find(k, call.Argument(1)); i >= 0 {
			e.listeners[k][i].sub.Remove()
			e.listeners.drop(k, i)
		}
		return goja.Undefined()
	}
}
