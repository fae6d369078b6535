package js

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"lazy14/pkg/html"
)

// domContext holds shared state for DOM bindings. It maintains a
// node-to-proxy cache so the same JS object is returned for the same
// underlying *html.Node (needed for === identity checks).
type domContext struct {
	vm     *goja.Runtime
	engine *Engine
	cache  map[*html.Node]goja.Value
}

// registerDocument sets up the global `document` object.
func registerDocument(e *Engine) *domContext {
	vm := e.vm
	ctx := &domContext{
		vm:     vm,
		engine: e,
		cache:  make(map[*html.Node]goja.Value),
	}
	doc := e.doc

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		node := doc.ElementByID(call.Arguments[0].String())
		if node == nil {
			return goja.Null()
		}
		return ctx.elementProxy(node)
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(doc.ElementsByTagName(call.Arguments[0].String()))
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		return ctx.elementProxy(html.NewElement(call.Arguments[0].String(), nil))
	})
	registerQuerySelectors(ctx, docObj, doc.Root)

	vm.Set("document", docObj)
	return ctx
}

// elementArray creates a JS array of Element proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	values := make([]interface{}, len(nodes))
	for i, n := range nodes {
		values[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(values...)
}

// elementProxy creates (or retrieves from cache) a JS DynamicObject wrapping an html.Node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	return v
}

// unwrapNode extracts the *html.Node behind an element proxy, or nil.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	for node, cached := range ctx.cache {
		if cached.SameAs(obj) {
			return node
		}
	}
	return nil
}

// elementAccessor implements goja.DynamicObject to intercept property access
// on DOM element proxies.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"tagName", "nodeName", "nodeType", "id", "className", "src",
	"textContent", "innerHTML", "outerHTML",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "parentElement", "style",
	"appendChild", "removeChild", "insertBefore",
	"querySelector", "querySelectorAll", "matches", "closest", "getElementsByTagName",
	"addEventListener", "removeEventListener",
	"scrollTop", "scrollLeft", "scrollWidth", "scrollHeight", "scrollTo",
	"clientWidth", "clientHeight",
	"offsetTop", "offsetLeft", "offsetWidth", "offsetHeight",
}

var elementKeySet = func() map[string]bool {
	m := make(map[string]bool, len(elementKeys))
	for _, k := range elementKeys {
		m[k] = true
	}
	return m
}()

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm

	switch key {
	case "nodeType":
		if e.node.Type == html.TextNode {
			return vm.ToValue(3) // Node.TEXT_NODE
		}
		return vm.ToValue(1) // Node.ELEMENT_NODE
	case "nodeName", "tagName":
		if e.node.Type == html.TextNode {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "id", "src":
		v, _ := e.node.GetAttribute(key)
		return vm.ToValue(v)
	case "className":
		cls, _ := e.node.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(e.node.TextContent())
	case "innerHTML":
		return vm.ToValue(e.node.Serialize())
	case "outerHTML":
		return vm.ToValue(e.node.SerializeOuter())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := e.node.GetAttribute(strings.ToLower(call.Arguments[0].String()))
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
			e.setAttribute(strings.ToLower(call.Arguments[0].String()), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			_, ok := e.node.GetAttribute(strings.ToLower(call.Arguments[0].String()))
			return vm.ToValue(ok)
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				e.node.RemoveAttribute(strings.ToLower(call.Arguments[0].String()))
				e.ctx.engine.invalidate()
			}
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
		if e.node.Parent.IsElement() {
			return e.ctx.elementProxy(e.node.Parent)
		}
		return goja.Null()
	case "style":
		return vm.NewDynamicObject(&styleAccessor{vm: vm, elem: e})

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, e.node))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, e.node))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, e.node))
	case "closest":
		return vm.ToValue(closestFn(e.ctx, e.node))
	case "getElementsByTagName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.elementArray(nil)
			}
			return e.ctx.elementArray(e.node.ElementsByTagName(call.Arguments[0].String()))
		})

	case "addEventListener":
		return vm.ToValue(addEventListenerFn(e.ctx.engine, e.node, e.ctx.elementProxy(e.node)))
	case "removeEventListener":
		return vm.ToValue(removeEventListenerFn(e.ctx.engine, e.node))

	case "scrollTo":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			e.ctx.engine.scroll(e.node, toPixels(call.Argument(0)), toPixels(call.Argument(1)))
			return goja.Undefined()
		})
	case "scrollTop", "scrollLeft", "scrollWidth", "scrollHeight",
		"clientWidth", "clientHeight",
		"offsetTop", "offsetLeft", "offsetWidth", "offsetHeight":
		return vm.ToValue(e.geometry(key))
	}
	return goja.Undefined()
}

// geometry answers the CSSOM view properties from the current layout.
func (e *elementAccessor) geometry(key string) float64 {
	eng := e.ctx.engine
	eng.Sync()
	le := eng.layout
	switch key {
	case "scrollTop":
		return le.ScrollOffset(e.node).Y
	case "scrollLeft":
		return le.ScrollOffset(e.node).X
	case "offsetTop":
		return le.CumulativeOffset(e.node).Y
	case "offsetLeft":
		return le.CumulativeOffset(e.node).X
	case "offsetWidth":
		return le.Dimensions(e.node).Width
	case "offsetHeight":
		return le.Dimensions(e.node).Height
	}

	box := le.BoxFor(e.node)
	if box == nil {
		return 0
	}
	pb := box.PaddingBox()
	switch key {
	case "clientWidth":
		return pb.Width
	case "clientHeight":
		return pb.Height
	case "scrollWidth":
		return box.ScrollWidth
	case "scrollHeight":
		return box.ScrollHeight
	}
	return 0
}

func (e *elementAccessor) setAttribute(name, value string) {
	e.node.SetAttribute(name, value)
	e.ctx.engine.invalidate()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		e.node.Children = nil
		e.node.AppendText(val.String())
		e.ctx.engine.invalidate()
		return true
	case "className":
		e.setAttribute("class", val.String())
		return true
	case "id", "src":
		e.setAttribute(key, val.String())
		return true
	case "scrollTop", "scrollLeft":
		eng := e.ctx.engine
		eng.Sync()
		off := eng.layout.ScrollOffset(e.node)
		if key == "scrollTop" {
			off.Y = toPixels(val)
		} else {
			off.X = toPixels(val)
		}
		eng.scroll(e.node, off.X, off.Y)
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	return elementKeySet[key]
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return elementKeys
}

// styleAccessor maps JS camelCase property access to CSS kebab-case on the
// node's inline style attribute.
type styleAccessor struct {
	vm   *goja.Runtime
	elem *elementAccessor
}

func (s *styleAccessor) Get(key string) goja.Value {
	styles := parseInlineStyle(s.getStyleAttr())
	return s.vm.ToValue(styles[camelToKebab(key)])
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	styles := parseInlineStyle(s.getStyleAttr())
	styles[camelToKebab(key)] = val.String()
	s.elem.setAttribute("style", serializeInlineStyle(styles))
	return true
}

func (s *styleAccessor) Has(key string) bool {
	return true
}

func (s *styleAccessor) Delete(key string) bool {
	styles := parseInlineStyle(s.getStyleAttr())
	delete(styles, camelToKebab(key))
	s.elem.setAttribute("style", serializeInlineStyle(styles))
	return true
}

func (s *styleAccessor) Keys() []string {
	styles := parseInlineStyle(s.getStyleAttr())
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	return keys
}

func (s *styleAccessor) getStyleAttr() string {
	v, _ := s.elem.node.GetAttribute("style")
	return v
}

// parseInlineStyle parses a CSS inline style string into a map.
func parseInlineStyle(s string) map[string]string {
	result := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		idx := strings.IndexByte(decl, ':')
		if idx < 0 {
			continue
		}
		prop := strings.TrimSpace(decl[:idx])
		if prop == "" {
			continue
		}
		result[prop] = strings.TrimSpace(decl[idx+1:])
	}
	return result
}

// serializeInlineStyle converts a map back to a CSS inline style string,
// with properties sorted so the output is stable.
func serializeInlineStyle(m map[string]string) string {
	props := make([]string, 0, len(m))
	for k := range m {
		props = append(props, k)
	}
	sort.Strings(props)
	parts := make([]string, 0, len(props))
	for _, k := range props {
		parts = append(parts, k+": "+m[k])
	}
	return strings.Join(parts, "; ")
}

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
func camelToKebab(s string) string {
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

// toPixels converts a script value to a pixel count; non-numbers become 0.
func toPixels(v goja.Value) float64 {
	f := v.ToFloat()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
