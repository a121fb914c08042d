package quill

import (
	"fmt"
	"math"
)

// Context is an execution scope within a Runtime.
//
// Almost all value construction, property access and conversion goes
// through a Context, because those operations can raise an exception and
// exception state is scoped to the Context. Contexts are cheap: they borrow
// the Runtime's heap and own nothing long-lived beyond their global object
// and pending-exception slot. Many contexts may share one Runtime.
//
// Like the Runtime, a Context is not safe for concurrent use.
type Context struct {
	rt      *Runtime
	global  Value
	pending Value
	thrown  bool
}

// NewContext creates a context on the runtime, with a fresh global object.
//
//	ctx := rt.NewContext()
//	defer ctx.Close()
//
// If the global object cannot be allocated under the memory limit, the
// returned context carries a pending out-of-memory exception and its global
// is the exception sentinel.
func (rt *Runtime) NewContext() *Context {
	ctx := &Context{rt: rt}
	global, ok := rt.alloc(tagObject, newObjectPayload(ClassPlain))
	if !ok {
		ctx.global = Exception
		ctx.throwOutOfMemory()
		return ctx
	}
	ctx.global = global
	return ctx
}

// Runtime returns the runtime this context borrows.
func (ctx *Context) Runtime() *Runtime { return ctx.rt }

// Close releases the context's global object and any pending exception.
// Values created from the context remain valid; they belong to the Runtime.
func (ctx *Context) Close() {
	ctx.rt.FreeValue(ctx.global)
	ctx.global = Undefined
	if ctx.thrown {
		ctx.rt.FreeValue(ctx.pending)
		ctx.thrown = false
	}
}

// Global returns the context's global object as a new reference.
func (ctx *Context) Global() Value {
	return ctx.rt.DupValue(ctx.global)
}

// -----------------------------------------------------------------------------
// Value Construction
// -----------------------------------------------------------------------------

// Bool creates a boolean value. No heap allocation is performed.
func (ctx *Context) Bool(b bool) Value {
	var w int64
	if b {
		w = 1
	}
	return Value{tag: tagBool, word: w}
}

// Int32 creates an integer number value. No heap allocation is performed.
func (ctx *Context) Int32(v int32) Value {
	return Value{tag: tagInt, word: int64(v)}
}

// Float64 creates a number value.
//
// If the float is exactly representable as a 32-bit integer (and is not
// negative zero) the value is normalized to the inline integer
// representation; [Value.Kind] reports KindNumber either way, so callers
// never observe the split.
func (ctx *Context) Float64(f float64) Value {
	if i := int32(f); float64(i) == f && !(f == 0 && math.Signbit(f)) {
		return ctx.Int32(i)
	}
	return Value{tag: tagFloat64, float: f}
}

// Int64 creates a number value from a 64-bit integer, using the inline
// integer representation when it fits and a float otherwise.
func (ctx *Context) Int64(v int64) Value {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return ctx.Int32(int32(v))
	}
	return Value{tag: tagFloat64, float: float64(v)}
}

// String creates a string value as a new reference.
func (ctx *Context) String(s string) Value {
	v, ok := ctx.rt.alloc(tagString, stringPayload(s))
	if !ok {
		return ctx.throwOutOfMemory()
	}
	return v
}

// Symbol creates a new unique symbol with the given description, as a new
// reference. Two symbols are never equal, even with the same description.
func (ctx *Context) Symbol(description string) Value {
	v, ok := ctx.rt.alloc(tagSymbol, symbolPayload(description))
	if !ok {
		return ctx.throwOutOfMemory()
	}
	return v
}

// NewObject creates an empty plain object as a new reference.
func (ctx *Context) NewObject() Value {
	v, ok := ctx.rt.alloc(tagObject, newObjectPayload(ClassPlain))
	if !ok {
		return ctx.throwOutOfMemory()
	}
	return v
}

// NewArray creates an empty array object as a new reference.
func (ctx *Context) NewArray() Value {
	v, ok := ctx.rt.alloc(tagObject, newObjectPayload(ClassArray))
	if !ok {
		return ctx.throwOutOfMemory()
	}
	return v
}

// NewError creates an error object with the given message, as a new
// reference. The message is stored under the "message" property.
func (ctx *Context) NewError(message string) Value {
	v, ok := ctx.rt.alloc(tagObject, newObjectPayload(ClassError))
	if !ok {
		return ctx.throwOutOfMemory()
	}
	msg := ctx.String(message)
	if msg.IsException() {
		ctx.rt.FreeValue(v)
		return Exception
	}
	ctx.SetProperty(v, ctx.rt.atomMessage, msg)
	return v
}

// IsError reports whether the value is an error object.
func (ctx *Context) IsError(v Value) bool {
	p, ok := ctx.objectPayload(v)
	return ok && p.class == ClassError
}

// IsArray reports whether the value is an array object.
func (ctx *Context) IsArray(v Value) bool {
	p, ok := ctx.objectPayload(v)
	return ok && p.class == ClassArray
}

// -----------------------------------------------------------------------------
// Reference Counting
// -----------------------------------------------------------------------------

// DupValue increments the reference count of a heap-backed value and
// returns the same value; value-type tags pass through unchanged. The
// caller becomes responsible for freeing the extra reference.
func (ctx *Context) DupValue(v Value) Value {
	return ctx.rt.DupValue(v)
}

// FreeValue releases one owned reference to a value. See
// [Runtime.FreeValue] for the ownership rules.
func (ctx *Context) FreeValue(v Value) {
	ctx.rt.FreeValue(v)
}

// -----------------------------------------------------------------------------
// Exceptions
// -----------------------------------------------------------------------------

// Throw records v as the context's pending exception and returns the
// exception sentinel. Ownership of v is consumed. Any previously pending
// exception is replaced and released.
func (ctx *Context) Throw(v Value) Value {
	if ctx.thrown {
		ctx.rt.FreeValue(ctx.pending)
	}
	ctx.pending = v
	ctx.thrown = true
	return Exception
}

// ThrowTypeError throws an error object with a formatted message.
func (ctx *Context) ThrowTypeError(format string, args ...any) Value {
	return ctx.throwNamed("TypeError", fmt.Sprintf(format, args...))
}

// ThrowRangeError throws an error object with a formatted message.
func (ctx *Context) ThrowRangeError(format string, args ...any) Value {
	return ctx.throwNamed("RangeError", fmt.Sprintf(format, args...))
}

func (ctx *Context) throwNamed(name, message string) Value {
	errv := ctx.NewError(message)
	if errv.IsException() {
		return Exception
	}
	namev := ctx.String(name)
	if !namev.IsException() {
		ctx.SetProperty(errv, ctx.rt.atomName, namev)
	}
	return ctx.Throw(errv)
}

// throwOutOfMemory records the allocation-failure condition. The error
// object itself is allocated outside the accounting, since the arena is by
// definition full at this point.
func (ctx *Context) throwOutOfMemory() Value {
	id := ctx.rt.nextID
	ctx.rt.nextID++
	p := newObjectPayload(ClassError)
	ctx.rt.cells[id] = &heapCell{refs: 1, cost: 0, payload: p}
	errv := Value{tag: tagObject, word: int64(id)}
	mid := ctx.rt.nextID
	ctx.rt.nextID++
	ctx.rt.cells[mid] = &heapCell{refs: 1, cost: 0, payload: stringPayload("out of memory")}
	p.setOwn(ctx.rt.atomMessage, Value{tag: tagString, word: int64(mid)})
	return ctx.Throw(errv)
}

// HasException reports whether an exception is pending on the context.
func (ctx *Context) HasException() bool { return ctx.thrown }

// TakeException returns the pending exception as a new reference and
// clears the pending state. Returns Undefined when nothing is pending.
func (ctx *Context) TakeException() Value {
	if !ctx.thrown {
		return Undefined
	}
	v := ctx.pending
	ctx.pending = Undefined
	ctx.thrown = false
	return v
}

// exceptionToError drains the pending exception into a Go error. Used by
// operations that report failure through the error return convention.
func (ctx *Context) exceptionToError() error {
	v := ctx.TakeException()
	defer ctx.FreeValue(v)
	msg := "unknown exception"
	if p, ok := ctx.objectPayload(v); ok {
		if mv, found := p.own(ctx.rt.atomMessage); found && mv.IsString() {
			if s, ok := ctx.stringValue(mv); ok {
				msg = s
			}
		}
	} else if v.IsString() {
		if s, ok := ctx.stringValue(v); ok {
			msg = s
		}
	}
	return &ExecutionError{Message: msg}
}
