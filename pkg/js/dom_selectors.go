package js

import (
	"github.com/dop251/goja"

	"lazy14/pkg/css"
	"lazy14/pkg/html"
)

// registerQuerySelectors adds querySelector/querySelectorAll to a document object.
func registerQuerySelectors(ctx *domContext, obj *goja.Object, root *html.Node) {
	obj.Set("querySelector", querySelectorFn(ctx, root))
	obj.Set("querySelectorAll", querySelectorAllFn(ctx, root))
}

// selectorArg returns the selector argument of a selector API call.
func selectorArg(ctx *domContext, call goja.FunctionCall, method string) string {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': 1 argument required", method))
	}
	return call.Arguments[0].String()
}

func throwSyntaxError(ctx *domContext, method string, err error) {
	panic(ctx.vm.NewTypeError("Failed to execute '%s': %v", method, err))
}

// querySelectorFn returns a JS function implementing querySelector.
func querySelectorFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		node, err := css.QuerySelector(root, selectorArg(ctx, call, "querySelector"))
		if err != nil {
			throwSyntaxError(ctx, "querySelector", err)
		}
		if node == nil {
			return goja.Null()
		}
		return ctx.elementProxy(node)
	}
}

// querySelectorAllFn returns a JS function implementing querySelectorAll.
func querySelectorAllFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		nodes, err := css.QuerySelectorAll(root, selectorArg(ctx, call, "querySelectorAll"))
		if err != nil {
			throwSyntaxError(ctx, "querySelectorAll", err)
		}
		return ctx.elementArray(nodes)
	}
}

// matchesFn returns a JS function implementing element.matches(selector).
func matchesFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		ok, err := css.Matches(node, selectorArg(ctx, call, "matches"))
		if err != nil {
			throwSyntaxError(ctx, "matches", err)
		}
		return ctx.vm.ToValue(ok)
	}
}

// closestFn returns a JS function implementing element.closest(selector).
func closestFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		selector := selectorArg(ctx, call, "closest")
		for current := node; current.IsElement(); current = current.Parent {
			ok, err := css.Matches(current, selector)
			if err != nil {
				throwSyntaxError(ctx, "closest", err)
			}
			if ok {
				return ctx.elementProxy(current)
			}
		}
		return goja.Null()
	}
}
