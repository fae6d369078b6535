package js

import "lazy14/pkg/events"

// registerWindow sets up the global `window` object. The runtime's global
// object stays separate; only the members scripts use are mirrored here.
func registerWindow(e *Engine) {
	vm := e.vm
	win := vm.NewObject()
	win.Set("document", vm.Get("document"))
	win.Set("console", vm.Get("console"))
	win.Set("addEventListener", addEventListenerFn(e, events.Window, win))
	win.Set("removeEventListener", removeEventListenerFn(e, events.Window))

	viewport := e.layout.Viewport()
	win.Set("innerWidth", viewport.Width)
	win.Set("innerHeight", viewport.Height)

	vm.Set("window", win)
	vm.Set("addEventListener", win.Get("addEventListener"))
	vm.Set("removeEventListener", win.Get("removeEventListener"))
}
