package js

import (
	"fmt"

	"github.com/dop251/goja"
	log "github.com/sirupsen/logrus"

	"lazy14/pkg/events"
	"lazy14/pkg/html"
	"lazy14/pkg/layout"
	"lazy14/pkg/lazyload"
)

// Engine executes JavaScript against a laid-out document. Scripts see
// `document`, `window`, `console` and the `LazyLoader` constructor.
type Engine struct {
	vm     *goja.Runtime
	doc    *html.Document
	layout *layout.Engine
	bus    *events.Dispatcher
	ctx    *domContext

	// dirty is set when a script mutates the DOM; the next geometry read
	// lays the document out again.
	dirty     bool
	listeners listenerRegistry
	managers  []*lazyload.Manager
}

// New creates an engine with a fresh goja runtime bound to doc. Geometry
// comes from le and events go through bus.
func New(doc *html.Document, le *layout.Engine, bus *events.Dispatcher) *Engine {
	vm := goja.New()
	e := &Engine{
		vm:     vm,
		doc:    doc,
		layout: le,
		bus:    bus,
		dirty:  true,

		listeners: make(listenerRegistry),
	}

	c := &consoleAPI{}
	c.register(vm)

	e.ctx = registerDocument(e)
	registerWindow(e)
	registerLazyLoader(e)
	return e
}

// Execute runs all scripts from the document in order. It stops at the
// first script that throws.
func (e *Engine) Execute() error {
	for i, script := range e.doc.Scripts {
		if err := e.Run(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}

// Run evaluates a single script.
func (e *Engine) Run(src string) error {
	_, err := e.vm.RunString(src)
	return err
}

// Managers returns the lazy loaders created by scripts, in creation order.
func (e *Engine) Managers() []*lazyload.Manager {
	return e.managers
}

// Sync lays the document out again if a script changed it.
func (e *Engine) Sync() {
	if !e.dirty {
		return
	}
	e.layout.Layout(e.doc)
	e.dirty = false
}

func (e *Engine) invalidate() {
	e.dirty = true
}

// scroll sets node's scroll offset and fires a scroll event when it moved.
func (e *Engine) scroll(node *html.Node, x, y float64) {
	e.Sync()
	before := e.layout.ScrollOffset(node)
	if after := e.layout.ScrollTo(node, x, y); after != before {
		e.bus.Dispatch(node, events.Scroll)
	}
}

// callListener invokes a script listener. Exceptions are logged and do not
// reach the dispatcher, so the remaining listeners still run.
func (e *Engine) callListener(fn goja.Callable, this goja.Value, ev events.Event) {
	evObj := e.vm.NewObject()
	evObj.Set("type", ev.Type)
	evObj.Set("target", e.targetValue(ev.Target))
	if _, err := fn(this, evObj); err != nil {
		log.WithError(err).Warnf("js: %s listener failed", ev.Type)
	}
}

func (e *Engine) targetValue(target events.Target) goja.Value {
	if n, ok := target.(*html.Node); ok {
		return e.ctx.elementProxy(n)
	}
	return e.vm.Get("window")
}
