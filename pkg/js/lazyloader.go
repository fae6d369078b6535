package js

import (
	"github.com/dop251/goja"
	log "github.com/sirupsen/logrus"

	"lazy14/pkg/html"
	"lazy14/pkg/lazyload"
)

// registerLazyLoader installs the LazyLoader constructor:
//
//	var loader = new LazyLoader("gallery", {placeHolderImage: "blank.gif", threshold: 100});
//	loader.update();
//	loader.setThreshold(50);
//
// The container may be an element, a CSS selector or an element id. A
// container that does not resolve gives a loader whose methods do nothing.
func registerLazyLoader(e *Engine) {
	e.vm.Set("LazyLoader", func(call goja.ConstructorCall) *goja.Object {
		e.Sync()

		container := e.resolveContainer(call.Argument(0))
		m := lazyload.New(container, e.layout, e.bus, loaderOptions(call.Argument(1))...)
		e.managers = append(e.managers, m)
		if m.Inert() {
			log.Debugf("js: LazyLoader container %q not found", call.Argument(0).String())
		}

		obj := call.This
		obj.Set("update", func(goja.FunctionCall) goja.Value {
			e.Sync()
			m.Update()
			return goja.Undefined()
		})
		obj.Set("setThreshold", func(c goja.FunctionCall) goja.Value {
			m.SetThreshold(int(c.Argument(0).ToInteger()))
			return goja.Undefined()
		})
		obj.Set("close", func(goja.FunctionCall) goja.Value {
			m.Close()
			return goja.Undefined()
		})
		if container != nil {
			obj.Set("container", e.ctx.elementProxy(container))
		} else {
			obj.Set("container", goja.Null())
		}
		obj.Set("images", e.ctx.elementArray(trackedImages(m)))
		return obj
	})
}

func (e *Engine) resolveContainer(arg goja.Value) *html.Node {
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		return nil
	}
	if n := e.ctx.unwrapNode(arg); n != nil {
		return n
	}
	return lazyload.FindContainer(e.doc, arg.String())
}

// loaderOptions reads {placeHolderImage, threshold}; missing keys keep
// their defaults.
func loaderOptions(arg goja.Value) []lazyload.Option {
	obj, ok := arg.(*goja.Object)
	if !ok {
		return nil
	}
	var opts []lazyload.Option
	if v := obj.Get("placeHolderImage"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		opts = append(opts, lazyload.WithPlaceholder(v.String()))
	}
	if v := obj.Get("threshold"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		opts = append(opts, lazyload.WithThreshold(int(v.ToInteger())))
	}
	return opts
}

func trackedImages(m *lazyload.Manager) []*html.Node {
	trackers := m.Trackers()
	images := make([]*html.Node, len(trackers))
	for i, t := range trackers {
		images[i] = t.Image()
	}
	return images
}
