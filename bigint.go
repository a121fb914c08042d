package quill

import "math/big"

// bigIntPayload is the heap representation of an arbitrary-precision
// integer.
type bigIntPayload struct {
	i *big.Int
}

func (p *bigIntPayload) release(rt *Runtime) {}
func (p *bigIntPayload) footprint() int {
	return len(p.i.Bits())*8 + 32
}

// NewBigInt creates a big-integer value as a new reference. The input is
// copied; later mutation of v does not affect the value.
func (ctx *Context) NewBigInt(v *big.Int) Value {
	val, ok := ctx.rt.alloc(tagBigInt, &bigIntPayload{i: new(big.Int).Set(v)})
	if !ok {
		return ctx.throwOutOfMemory()
	}
	return val
}

// NewBigInt64 creates a big-integer value from an int64, as a new
// reference.
func (ctx *Context) NewBigInt64(v int64) Value {
	val, ok := ctx.rt.alloc(tagBigInt, &bigIntPayload{i: big.NewInt(v)})
	if !ok {
		return ctx.throwOutOfMemory()
	}
	return val
}

// ToBigInt returns the big-integer payload of v as a copy. Integer-tagged
// numbers convert losslessly; everything else fails with
// [ErrUnexpectedType].
func (ctx *Context) ToBigInt(v Value) (*big.Int, error) {
	switch v.tag {
	case tagBigInt:
		c := ctx.rt.cell(v)
		if c == nil {
			return nil, ErrUnexpectedType
		}
		p, ok := c.payload.(*bigIntPayload)
		if !ok {
			return nil, ErrUnexpectedType
		}
		return new(big.Int).Set(p.i), nil
	case tagInt:
		return big.NewInt(v.word), nil
	}
	return nil, ErrUnexpectedType
}

// bigIntValue resolves a bigint-tagged value to its payload without
// copying. Internal borrow.
func (ctx *Context) bigIntValue(v Value) (*big.Int, bool) {
	if v.tag != tagBigInt {
		return nil, false
	}
	c := ctx.rt.cell(v)
	if c == nil {
		return nil, false
	}
	p, ok := c.payload.(*bigIntPayload)
	if !ok {
		return nil, false
	}
	return p.i, true
}
