package quill

import (
	"context"
	"log/slog"
	"strings"
)

// Console level discriminators. Each console method is the same native
// function registered with a different magic value.
const (
	consoleTrace = iota
	consoleDebug
	consoleLog
	consoleInfo
	consoleWarn
	consoleError
)

var consoleMethods = []struct {
	name  string
	magic int
	level slog.Level
}{
	{"trace", consoleTrace, slog.LevelDebug - 4},
	{"debug", consoleDebug, slog.LevelDebug},
	{"log", consoleLog, slog.LevelInfo},
	{"info", consoleInfo, slog.LevelInfo},
	{"warn", consoleWarn, slog.LevelWarn},
	{"error", consoleError, slog.LevelError},
}

// SetConsole installs a "console" object on the context's global, with
// trace/debug/log/info/warn/error methods backed by the given logger.
//
// All six methods share one native function body; the log level is the
// magic discriminator. Arguments are stringified and joined with spaces,
// matching the usual console formatting.
func (ctx *Context) SetConsole(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	console := ctx.NewObject()
	if console.IsException() {
		return ctx.exceptionToError()
	}

	write := func(c *Context, this Value, args []Value, magic int) Value {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			s, err := c.ToString(a)
			if err != nil {
				if !c.HasException() {
					return c.ThrowTypeError("cannot render console argument: %v", err)
				}
				return Exception
			}
			parts = append(parts, s)
		}
		msg := strings.Join(parts, " ")
		for _, m := range consoleMethods {
			if m.magic == magic {
				logger.Log(context.Background(), m.level, msg, "console", m.name)
				break
			}
		}
		return Undefined
	}

	for _, m := range consoleMethods {
		fn := ctx.NewFunctionMagic(write, m.name, 1, FuncGeneric, m.magic)
		if fn.IsException() {
			ctx.FreeValue(console)
			return ctx.exceptionToError()
		}
		ctx.SetProperty(console, ctx.rt.Atom(m.name), fn)
	}

	global := ctx.Global()
	defer ctx.FreeValue(global)
	if res := ctx.SetProperty(global, ctx.rt.Atom("console"), console); res == SetFailed {
		return ctx.exceptionToError()
	}
	return nil
}
