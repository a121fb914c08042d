package quill

// Owned wraps a value the holder owns, guaranteeing the reference is
// released at most once. It is the explicit-Release rendition of an owned
// handle: Go has no destructors, so balance is enforced by construction
// (Free is idempotent on the wrapper, Clone duplicates) instead of by
// scope.
//
//	o := ctx.Own(ctx.String("hello"))
//	defer o.Free()
type Owned struct {
	ctx      *Context
	v        Value
	released bool
}

// Own takes ownership of one reference to v and wraps it.
func (ctx *Context) Own(v Value) *Owned {
	return &Owned{ctx: ctx, v: v}
}

// Value borrows the wrapped value. The borrow is valid until Free.
func (o *Owned) Value() Value {
	if o.released {
		return Undefined
	}
	return o.v
}

// Clone duplicates the underlying reference and returns a second owner.
func (o *Owned) Clone() *Owned {
	if o.released {
		return &Owned{ctx: o.ctx, released: true}
	}
	return &Owned{ctx: o.ctx, v: o.ctx.DupValue(o.v)}
}

// Free releases the wrapped reference. Further calls are no-ops, and the
// wrapper yields Undefined from then on.
func (o *Owned) Free() {
	if o.released {
		return
	}
	o.released = true
	o.ctx.FreeValue(o.v)
	o.v = Undefined
}
