package js

import (
	"strings"

	"github.com/dop251/goja"
	log "github.com/sirupsen/logrus"
)

// consoleAPI implements console.log, console.warn, and console.error on
// top of the process logger.
type consoleAPI struct{}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("log", c.print(log.InfoLevel))
	console.Set("info", c.print(log.InfoLevel))
	console.Set("debug", c.print(log.DebugLevel))
	console.Set("warn", c.print(log.WarnLevel))
	console.Set("error", c.print(log.ErrorLevel))
	vm.Set("console", console)
}

func (c *consoleAPI) print(level log.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		log.WithField("source", "console").Log(level, formatArgs(call.Arguments))
		return goja.Undefined()
	}
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
