package js

import (
	"github.com/dop251/goja"

	"lazy14/pkg/html"
)

// nodeArg unwraps argument i as a node or throws a TypeError.
func (e *elementAccessor) nodeArg(call goja.FunctionCall, i int, method string) *html.Node {
	if len(call.Arguments) <= i {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': argument required", method))
	}
	node := e.ctx.unwrapNode(call.Arguments[i])
	if node == nil {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': parameter is not a Node", method))
	}
	return node
}

// appendChildFn returns a JS function that implements node.appendChild(child).
func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, 0, "appendChild")
		if child.Contains(e.node) {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': the new child contains the parent"))
		}
		e.node.AddChild(child)
		e.ctx.engine.invalidate()
		return e.ctx.elementProxy(child)
	}
}

// removeChildFn returns a JS function that implements node.removeChild(child).
func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, 0, "removeChild")
		if e.node.RemoveChild(child) == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		e.ctx.engine.invalidate()
		return e.ctx.elementProxy(child)
	}
}

// insertBeforeFn returns a JS function that implements node.insertBefore(newNode, refNode).
func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		newChild := e.nodeArg(call, 0, "insertBefore")
		if newChild.Contains(e.node) {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': the new child contains the parent"))
		}
		var refChild *html.Node
		if len(call.Arguments) > 1 {
			refChild = e.ctx.unwrapNode(call.Arguments[1])
		}
		e.node.InsertBefore(newChild, refChild)
		e.ctx.engine.invalidate()
		return e.ctx.elementProxy(newChild)
	}
}
