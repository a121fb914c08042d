package quill

// NativeFunc is the calling convention for host functions exposed to the
// runtime. The interpreter (or [Context.Call]) invokes it with the call's
// this-value and arguments; both are borrowed for the duration of the call.
// The return value follows new-reference rules: a heap-backed result
// transfers one reference to the caller, and [Exception] signals a pending
// exception.
type NativeFunc func(ctx *Context, this Value, args []Value) Value

// NativeFuncMagic is the magic-tagged calling convention: the integer
// discriminator registered with [Context.NewFunctionMagic] is threaded
// through to every invocation, so one function body can implement several
// related behaviors.
type NativeFuncMagic func(ctx *Context, this Value, args []Value, magic int) Value

// FuncKind distinguishes how a bound function expects to be invoked.
type FuncKind int

const (
	// FuncGeneric is a plain call.
	FuncGeneric FuncKind = iota

	// FuncConstructor is invoked as a constructor.
	FuncConstructor

	// FuncGetter is invoked as a property getter (no arguments).
	FuncGetter

	// FuncSetter is invoked as a property setter (one argument).
	FuncSetter
)

// funcRecord stores a native binding inside a function object's heap cell.
// Keeping the closure here (rather than erasing it to a code pointer plus
// an integer) ties its lifetime to the function value's refcount.
type funcRecord struct {
	fn      NativeFunc
	fnMagic NativeFuncMagic
	name    string
	length  int
	kind    FuncKind
	magic   int
}

// NewFunction wraps a host function into a callable function value, as a
// new reference.
//
// The declared length is advisory: it is surfaced as the function's
// "length" property and never truncates or validates the argument array an
// actual call supplies.
//
// On allocation failure the out-of-memory condition is thrown and the
// exception sentinel returned; callers must propagate it rather than treat
// it as callable.
func (ctx *Context) NewFunction(fn NativeFunc, name string, length int) Value {
	p := newObjectPayload(ClassFunction)
	p.fn = &funcRecord{fn: fn, name: name, length: length}
	v, ok := ctx.rt.alloc(tagObject, p)
	if !ok {
		return ctx.throwOutOfMemory()
	}
	return v
}

// NewFunctionMagic wraps a host function with a calling-convention kind and
// an integer magic discriminator, as a new reference.
//
// Use this instead of separate bindings when several behaviors are small
// variations of one algorithm: each binding carries its own magic, all
// dispatch through one function body.
func (ctx *Context) NewFunctionMagic(fn NativeFuncMagic, name string, length int, kind FuncKind, magic int) Value {
	p := newObjectPayload(ClassFunction)
	p.fn = &funcRecord{fnMagic: fn, name: name, length: length, kind: kind, magic: magic}
	v, ok := ctx.rt.alloc(tagObject, p)
	if !ok {
		return ctx.throwOutOfMemory()
	}
	return v
}

// IsFunction reports whether the value is a callable function object.
func (ctx *Context) IsFunction(v Value) bool {
	p, ok := ctx.objectPayload(v)
	return ok && p.fn != nil
}

// Call invokes a function value with the given this-value and arguments.
//
// fn, this and args are all borrowed: Call takes no ownership and the
// caller remains responsible for its references. The result follows
// new-reference rules, with [Exception] signaling a pending exception.
// Calling a non-function throws.
func (ctx *Context) Call(fn Value, this Value, args ...Value) Value {
	p, ok := ctx.objectPayload(fn)
	if !ok || p.fn == nil {
		return ctx.ThrowTypeError("value of kind %s is not a function", fn.Kind())
	}
	rec := p.fn
	if rec.fnMagic != nil {
		return rec.fnMagic(ctx, this, args, rec.magic)
	}
	return rec.fn(ctx, this, args)
}
