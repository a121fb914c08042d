package quill

import "math"

// tag is the raw discriminant of a Value. The numbering follows the engine's
// internal convention: heap-backed tags are negative, inline tags are
// non-negative. The raw tag is deliberately unexported; callers classify
// values through [Value.Kind] and the Is* predicates, which stay stable
// across representation changes.
type tag int32

const (
	tagBigInt        tag = -10
	tagSymbol        tag = -8
	tagString        tag = -7
	tagObject        tag = -1
	tagInt           tag = 0
	tagBool          tag = 1
	tagNull          tag = 2
	tagUndefined     tag = 3
	tagUninitialized tag = 4
	tagException     tag = 6
	tagFloat64       tag = 7
)

// refID identifies a heap cell in a Runtime's arena.
// 0 is never a valid cell id.
type refID uint64

// Value is a tagged scripting-language value.
//
// A Value is two machine words plus a tag: an integer word shared by int32,
// boolean and heap-cell payloads, and a float64 word. The payload is
// meaningful only as interpreted through the tag; accessors document which
// tag they require.
//
// Values are plain Go values and may be copied freely. Copying a Value does
// NOT touch reference counts: a copy is the same handle, not a new
// reference. Use [Context.DupValue] or [Runtime.DupValue] when a second
// owner needs the value to outlive the first.
type Value struct {
	tag   tag
	word  int64
	float float64
}

// Singleton values. These carry no payload and no ownership: passing them
// through DupValue/FreeValue is a no-op.
var (
	// Undefined is the undefined value.
	Undefined = Value{tag: tagUndefined}

	// Null is the null value.
	Null = Value{tag: tagNull}

	// Uninitialized marks a binding that has not been initialized yet.
	Uninitialized = Value{tag: tagUninitialized}

	// Exception is the sentinel returned by fallible operations when an
	// exception is pending on the Context. It is not the exception object
	// itself; retrieve that with [Context.TakeException].
	Exception = Value{tag: tagException}
)

// Kind is the normalized classification of a Value.
//
// Kind collapses representation details the engine is free to vary (for
// example, a float that was normalized into an inline integer still reports
// KindNumber). It is the only classification callers should branch on.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindSymbol
	KindObject
	KindBigInt
	KindException
	KindUninitialized
)

var kindNames = map[Kind]string{
	KindUndefined:     "undefined",
	KindNull:          "null",
	KindBool:          "bool",
	KindNumber:        "number",
	KindString:        "string",
	KindSymbol:        "symbol",
	KindObject:        "object",
	KindBigInt:        "bigint",
	KindException:     "exception",
	KindUninitialized: "uninitialized",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// Kind returns the normalized tag of the value.
func (v Value) Kind() Kind {
	switch v.tag {
	case tagInt, tagFloat64:
		return KindNumber
	case tagBool:
		return KindBool
	case tagNull:
		return KindNull
	case tagUndefined:
		return KindUndefined
	case tagUninitialized:
		return KindUninitialized
	case tagException:
		return KindException
	case tagString:
		return KindString
	case tagSymbol:
		return KindSymbol
	case tagObject:
		return KindObject
	case tagBigInt:
		return KindBigInt
	}
	return KindUndefined
}

// heapBacked reports whether the value participates in reference counting.
func (v Value) heapBacked() bool {
	switch v.tag {
	case tagString, tagSymbol, tagObject, tagBigInt:
		return true
	}
	return false
}

func (v Value) ref() refID { return refID(v.word) }

// IsNumber reports whether the value is a number (inline integer or float).
func (v Value) IsNumber() bool { return v.tag == tagInt || v.tag == tagFloat64 }

// IsBool reports whether the value is a boolean.
func (v Value) IsBool() bool { return v.tag == tagBool }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.tag == tagNull }

// IsUndefined reports whether the value is undefined.
func (v Value) IsUndefined() bool { return v.tag == tagUndefined }

// IsUninitialized reports whether the value is the uninitialized marker.
func (v Value) IsUninitialized() bool { return v.tag == tagUninitialized }

// IsException reports whether the value is the exception sentinel.
//
// Fallible operations return this sentinel instead of a result; the actual
// error is pending on the Context (see [Context.HasException]).
func (v Value) IsException() bool { return v.tag == tagException }

// IsString reports whether the value is a string.
func (v Value) IsString() bool { return v.tag == tagString }

// IsSymbol reports whether the value is a symbol.
func (v Value) IsSymbol() bool { return v.tag == tagSymbol }

// IsObject reports whether the value is an object (including functions,
// arrays and error objects).
func (v Value) IsObject() bool { return v.tag == tagObject }

// IsBigInt reports whether the value is a big integer.
//
// Classification takes a Context because in some engine configurations big
// integers share a representation with plain numbers and the split is a
// per-context policy.
func (v Value) IsBigInt(_ *Context) bool {
	return v.tag == tagBigInt
}

// IsNaN reports whether a float-tagged value holds an IEEE-754 NaN.
//
// The value must already be known to hold a float payload; for any other
// tag the result is false regardless of payload.
func (v Value) IsNaN() bool {
	return v.tag == tagFloat64 && math.IsNaN(v.float)
}

// Float64 returns the float payload of the value.
//
// Valid only for a number with a float representation; for any other tag
// the result is unspecified. Use [Context.ToFloat64] for a coercing
// conversion.
func (v Value) Float64() float64 { return v.float }

// Int32 returns the integer payload of the value.
//
// Valid only for an integer-represented number; for any other tag the
// result is unspecified. Use [Context.ToInt32] for a coercing conversion.
func (v Value) Int32() int32 { return int32(v.word) }

// Bool returns the boolean payload of the value.
//
// Valid only for a boolean-tagged value.
func (v Value) Bool() bool { return v.word != 0 }
