package quill

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------
// Numeric Coercion
// -----------------------------------------------------------------------------

// ToFloat64 coerces a value to a number.
//
// Objects are coerced through their "valueOf" hook, falling back to
// "toString", whichever is a function first; both are arbitrary-code
// boundaries that may throw. Strings parse leniently
// (unparseable text coerces to NaN rather than failing). On failure the
// return is (0, [ErrException]) and the exception stays pending on the
// Context for the caller to inspect.
func (ctx *Context) ToFloat64(v Value) (float64, error) {
	switch v.tag {
	case tagInt:
		return float64(int32(v.word)), nil
	case tagFloat64:
		return v.float, nil
	case tagBool:
		if v.word != 0 {
			return 1, nil
		}
		return 0, nil
	case tagNull:
		return 0, nil
	case tagUndefined:
		return math.NaN(), nil
	case tagString:
		s, _ := ctx.stringValue(v)
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return f, nil
	case tagObject:
		prim := ctx.toPrimitive(v)
		if prim.IsException() {
			return 0, ErrException
		}
		defer ctx.FreeValue(prim)
		return ctx.ToFloat64(prim)
	case tagBigInt:
		ctx.ThrowTypeError("cannot convert a bigint to a number")
		return 0, ErrException
	case tagSymbol:
		ctx.ThrowTypeError("cannot convert a symbol to a number")
		return 0, ErrException
	}
	ctx.ThrowTypeError("cannot convert %s to a number", v.Kind())
	return 0, ErrException
}

// toPrimitive resolves an object operand to a primitive for numeric
// coercion. The object's valueOf hook is tried first, then toString, each
// only when callable. Returns a new reference or Exception.
func (ctx *Context) toPrimitive(obj Value) Value {
	for _, a := range [2]Atom{ctx.rt.atomValueOf, ctx.rt.atomToString} {
		hook := ctx.GetProperty(obj, a)
		if hook.IsException() {
			return Exception
		}
		if !ctx.IsFunction(hook) {
			ctx.FreeValue(hook)
			continue
		}
		ret := ctx.Call(hook, obj)
		ctx.FreeValue(hook)
		if ret.IsException() {
			return Exception
		}
		if !ret.IsObject() {
			return ret
		}
		ctx.FreeValue(ret)
		return ctx.ThrowTypeError("%s returned a non-primitive", ctx.rt.AtomString(a))
	}
	return ctx.ThrowTypeError("cannot convert object to a number")
}

// ToUint32 coerces a value to a 32-bit unsigned integer using modular
// arithmetic: NaN and infinities map to 0, other floats truncate toward
// zero and wrap modulo 2^32.
//
// Coercion of object operands may run the object's conversion hook and
// throw; the failure convention matches [Context.ToFloat64].
func (ctx *Context) ToUint32(v Value) (uint32, error) {
	f, err := ctx.ToFloat64(v)
	if err != nil {
		return 0, err
	}
	return uint32(toInt32Bits(f)), nil
}

// ToInt32 coerces a value to a 32-bit signed integer with the same modular
// semantics as [Context.ToUint32].
func (ctx *Context) ToInt32(v Value) (int32, error) {
	f, err := ctx.ToFloat64(v)
	if err != nil {
		return 0, err
	}
	return toInt32Bits(f), nil
}

// toInt32Bits performs the modular narrowing shared by ToInt32/ToUint32.
func toInt32Bits(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	t := math.Trunc(f)
	m := math.Mod(t, 1<<32)
	return int32(int64(m))
}

// -----------------------------------------------------------------------------
// String Conversion
// -----------------------------------------------------------------------------

// ToString converts a value to its display string.
//
// Objects with a callable "toString" property delegate to it; error
// objects render as "Error: message", arrays join their elements. Symbols
// refuse (TypeError, pending exception, [ErrException] returned).
func (ctx *Context) ToString(v Value) (string, error) {
	switch v.tag {
	case tagString:
		s, _ := ctx.stringValue(v)
		return s, nil
	case tagInt:
		return strconv.FormatInt(v.word, 10), nil
	case tagFloat64:
		return formatNumber(v.float), nil
	case tagBool:
		if v.word != 0 {
			return "true", nil
		}
		return "false", nil
	case tagNull:
		return "null", nil
	case tagUndefined:
		return "undefined", nil
	case tagUninitialized:
		return "uninitialized", nil
	case tagException:
		return "exception", nil
	case tagBigInt:
		if i, ok := ctx.bigIntValue(v); ok {
			return i.String(), nil
		}
		return "", ErrUnexpectedType
	case tagSymbol:
		ctx.ThrowTypeError("cannot convert a symbol to a string")
		return "", ErrException
	case tagObject:
		return ctx.objectToString(v)
	}
	return "", ErrUnexpectedType
}

func (ctx *Context) objectToString(obj Value) (string, error) {
	p, ok := ctx.objectPayload(obj)
	if !ok {
		return "", ErrUnexpectedType
	}
	if hook := ctx.GetProperty(obj, ctx.rt.atomToString); ctx.IsFunction(hook) {
		ret := ctx.Call(hook, obj)
		ctx.FreeValue(hook)
		if ret.IsException() {
			return "", ErrException
		}
		defer ctx.FreeValue(ret)
		if s, ok := ctx.stringValue(ret); ok {
			return s, nil
		}
		return ctx.ToString(ret)
	} else {
		ctx.FreeValue(hook)
	}
	switch p.class {
	case ClassError:
		msg := ""
		if mv, ok := p.own(ctx.rt.atomMessage); ok {
			if s, ok := ctx.stringValue(mv); ok {
				msg = s
			}
		}
		name := "Error"
		if nv, ok := p.own(ctx.rt.atomName); ok {
			if s, ok := ctx.stringValue(nv); ok {
				name = s
			}
		}
		if msg == "" {
			return name, nil
		}
		return name + ": " + msg, nil
	case ClassArray:
		parts := make([]string, len(p.elems))
		for i, e := range p.elems {
			s, err := ctx.ToString(e)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), nil
	case ClassFunction:
		return "function " + p.fn.name + "()", nil
	}
	return "[object Object]", nil
}

// formatNumber renders a float payload the way the scripting language
// displays numbers.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// -----------------------------------------------------------------------------
// Host Value Marshaling
// -----------------------------------------------------------------------------

// FromGo converts a Go value into a runtime value, as a new reference.
//
// Supported inputs:
//   - nil          - null
//   - bool, string - the corresponding primitive
//   - int family   - a number (or a float when outside int32 range)
//   - float32/64   - a number
//   - *big.Int     - a bigint
//   - []any, []string, []int, []float64 - an array object
//   - map[string]any - a plain object
//   - Value        - passed through unchanged (no ownership change)
//
// Anything else fails with [ErrUnexpectedType].
func (ctx *Context) FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return val, nil
	case bool:
		return ctx.Bool(val), nil
	case string:
		s := ctx.String(val)
		if s.IsException() {
			return Exception, ErrException
		}
		return s, nil
	case int:
		return ctx.Int64(int64(val)), nil
	case int8:
		return ctx.Int32(int32(val)), nil
	case int16:
		return ctx.Int32(int32(val)), nil
	case int32:
		return ctx.Int32(val), nil
	case int64:
		return ctx.Int64(val), nil
	case uint8:
		return ctx.Int32(int32(val)), nil
	case uint16:
		return ctx.Int32(int32(val)), nil
	case uint32:
		return ctx.Int64(int64(val)), nil
	case uint:
		return ctx.FromGo(uint64(val))
	case uint64:
		if val <= math.MaxInt64 {
			return ctx.Int64(int64(val)), nil
		}
		return ctx.Float64(float64(val)), nil
	case float32:
		return ctx.Float64(float64(val)), nil
	case float64:
		return ctx.Float64(val), nil
	case *big.Int:
		b := ctx.NewBigInt(val)
		if b.IsException() {
			return Exception, ErrException
		}
		return b, nil
	case []any:
		return ctx.arrayFromGo(len(val), func(i int) any { return val[i] })
	case []string:
		return ctx.arrayFromGo(len(val), func(i int) any { return val[i] })
	case []int:
		return ctx.arrayFromGo(len(val), func(i int) any { return val[i] })
	case []float64:
		return ctx.arrayFromGo(len(val), func(i int) any { return val[i] })
	case map[string]any:
		obj := ctx.NewObject()
		if obj.IsException() {
			return Exception, ErrException
		}
		for k, item := range val {
			iv, err := ctx.FromGo(item)
			if err != nil {
				ctx.FreeValue(obj)
				return Undefined, fmt.Errorf("key %q: %w", k, err)
			}
			ctx.SetProperty(obj, ctx.rt.Atom(k), iv)
		}
		return obj, nil
	}
	return Undefined, fmt.Errorf("%w: %T", ErrUnexpectedType, v)
}

func (ctx *Context) arrayFromGo(n int, at func(int) any) (Value, error) {
	arr := ctx.NewArray()
	if arr.IsException() {
		return Exception, ErrException
	}
	for i := 0; i < n; i++ {
		iv, err := ctx.FromGo(at(i))
		if err != nil {
			ctx.FreeValue(arr)
			return Undefined, fmt.Errorf("index %d: %w", i, err)
		}
		ctx.Append(arr, iv)
	}
	return arr, nil
}

// ToGo converts a runtime value into a plain Go value.
//
// The value is borrowed. Numbers come back as int64 (integer
// representation) or float64, bigints as *big.Int copies, arrays as []any
// and plain/error objects as map[string]any of their explicit properties.
// Functions and symbols have no host representation and fail with
// [ErrUnexpectedType].
func (ctx *Context) ToGo(v Value) (any, error) {
	switch v.tag {
	case tagNull, tagUndefined:
		return nil, nil
	case tagBool:
		return v.word != 0, nil
	case tagInt:
		return v.word, nil
	case tagFloat64:
		return v.float, nil
	case tagString:
		s, ok := ctx.stringValue(v)
		if !ok {
			return nil, ErrUnexpectedType
		}
		return s, nil
	case tagBigInt:
		return ctx.ToBigInt(v)
	case tagObject:
		return ctx.objectToGo(v)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnexpectedType, v.Kind())
}

func (ctx *Context) objectToGo(obj Value) (any, error) {
	p, ok := ctx.objectPayload(obj)
	if !ok {
		return nil, ErrUnexpectedType
	}
	switch p.class {
	case ClassArray:
		out := make([]any, 0, len(p.elems))
		for i := range p.elems {
			ev := ctx.Element(obj, i)
			item, err := ctx.ToGo(ev)
			ctx.FreeValue(ev)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, item)
		}
		return out, nil
	case ClassFunction:
		return nil, fmt.Errorf("%w: function", ErrUnexpectedType)
	}
	out := make(map[string]any, len(p.order))
	for _, a := range p.order {
		pv := ctx.GetProperty(obj, a)
		if pv.IsException() {
			return nil, ErrException
		}
		item, err := ctx.ToGo(pv)
		ctx.FreeValue(pv)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", ctx.rt.AtomString(a), err)
		}
		out[ctx.rt.AtomString(a)] = item
	}
	return out, nil
}
