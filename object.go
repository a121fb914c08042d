package quill

// ClassKind identifies the behavior class of an object.
type ClassKind int

const (
	ClassPlain ClassKind = iota
	ClassArray
	ClassError
	ClassFunction
)

// stringPayload is the heap representation of a string value.
type stringPayload string

func (p stringPayload) release(rt *Runtime) {}
func (p stringPayload) footprint() int      { return len(p) + 16 }

// symbolPayload is the heap representation of a symbol. Identity is the
// cell itself; the description is only for display.
type symbolPayload string

func (p symbolPayload) release(rt *Runtime) {}
func (p symbolPayload) footprint() int      { return len(p) + 16 }

// property is one slot in an object's property table: either a data
// property holding a value, or an accessor holding getter/setter function
// values.
type property struct {
	value    Value
	getter   Value
	setter   Value
	accessor bool
}

// objectPayload is the heap representation of an object. Property insertion
// order is preserved, array elements live in a separate dense slice, and
// function objects carry their native binding record.
type objectPayload struct {
	class ClassKind
	props map[Atom]property
	order []Atom
	elems []Value
	fn    *funcRecord
}

func newObjectPayload(class ClassKind) *objectPayload {
	return &objectPayload{
		class: class,
		props: make(map[Atom]property),
	}
}

func (p *objectPayload) footprint() int { return 48 }

// release frees every value the object owns. The cell has already left the
// arena, so cycles through this object terminate.
func (p *objectPayload) release(rt *Runtime) {
	for _, a := range p.order {
		prop := p.props[a]
		if prop.accessor {
			rt.FreeValue(prop.getter)
			rt.FreeValue(prop.setter)
		} else {
			rt.FreeValue(prop.value)
		}
	}
	p.props = nil
	p.order = nil
	for _, e := range p.elems {
		rt.FreeValue(e)
	}
	p.elems = nil
}

// own returns the data-property value stored under an atom, without
// invoking accessors and without transferring ownership.
func (p *objectPayload) own(a Atom) (Value, bool) {
	prop, ok := p.props[a]
	if !ok || prop.accessor {
		return Undefined, false
	}
	return prop.value, true
}

// setOwn stores a data property, taking ownership of v. Any previous slot
// must already have been released by the caller.
func (p *objectPayload) setOwn(a Atom, v Value) {
	if _, ok := p.props[a]; !ok {
		p.order = append(p.order, a)
	}
	p.props[a] = property{value: v}
}

// objectPayload resolves a value to its object payload, if it is a live
// object.
func (ctx *Context) objectPayload(v Value) (*objectPayload, bool) {
	if !v.IsObject() {
		return nil, false
	}
	c := ctx.rt.cell(v)
	if c == nil {
		return nil, false
	}
	p, ok := c.payload.(*objectPayload)
	return p, ok
}

// stringValue resolves a string-tagged value to its Go string.
func (ctx *Context) stringValue(v Value) (string, bool) {
	if !v.IsString() {
		return "", false
	}
	c := ctx.rt.cell(v)
	if c == nil {
		return "", false
	}
	s, ok := c.payload.(stringPayload)
	return string(s), ok
}

// SetResult is the tri-state outcome of a property mutation.
type SetResult int

const (
	// SetOK means the property was stored (or the setter ran to
	// completion).
	SetOK SetResult = iota

	// SetFailed means the write was rejected and an exception is pending
	// on the Context.
	SetFailed

	// SetUnsupported means the target does not support property storage;
	// the call was a no-op apart from consuming the value.
	SetUnsupported
)

// SetProperty stores val under prop on obj.
//
// Ownership of val is consumed regardless of the result; the caller must
// not free it. If the slot is an accessor property its setter runs before
// SetProperty returns. The setter is arbitrary code that may re-enter the
// engine and mutate unrelated state, so callers must not hold
// partially-updated invariants across this call.
//
// Non-object targets yield SetUnsupported; primitive wrapper coercion
// belongs to the embedding object model, not this core.
func (ctx *Context) SetProperty(obj Value, prop Atom, val Value) SetResult {
	p, ok := ctx.objectPayload(obj)
	if !ok {
		ctx.FreeValue(val)
		return SetUnsupported
	}
	existing, found := p.props[prop]
	if found && existing.accessor {
		if existing.setter.IsUndefined() {
			ctx.FreeValue(val)
			ctx.ThrowTypeError("property %q has no setter", ctx.rt.AtomString(prop))
			return SetFailed
		}
		ret := ctx.Call(existing.setter, obj, val)
		ctx.FreeValue(val)
		if ret.IsException() {
			return SetFailed
		}
		ctx.FreeValue(ret)
		return SetOK
	}
	if found {
		ctx.FreeValue(existing.value)
		p.props[prop] = property{value: val}
		return SetOK
	}
	p.setOwn(prop, val)
	return SetOK
}

// GetProperty reads prop from obj and returns it as a new reference.
//
// Accessor properties invoke their getter (an arbitrary-code boundary, like
// SetProperty). A missing property yields Undefined. Function objects
// expose synthetic "name" and "length" properties from their binding when
// no explicit slot shadows them. Non-object targets throw.
func (ctx *Context) GetProperty(obj Value, prop Atom) Value {
	p, ok := ctx.objectPayload(obj)
	if !ok {
		return ctx.ThrowTypeError("cannot read property of %s", obj.Kind())
	}
	if prop == InvalidAtom {
		return Undefined
	}
	if slot, found := p.props[prop]; found {
		if slot.accessor {
			if slot.getter.IsUndefined() {
				return Undefined
			}
			return ctx.Call(slot.getter, obj)
		}
		return ctx.DupValue(slot.value)
	}
	if p.fn != nil {
		switch prop {
		case ctx.rt.atomName:
			return ctx.String(p.fn.name)
		case ctx.rt.atomLength:
			return ctx.Int32(int32(p.fn.length))
		}
	}
	return Undefined
}

// HasProperty reports whether obj has an explicit slot for prop. It does
// not invoke accessors.
func (ctx *Context) HasProperty(obj Value, prop Atom) bool {
	p, ok := ctx.objectPayload(obj)
	if !ok {
		return false
	}
	_, found := p.props[prop]
	return found
}

// DeleteProperty removes prop from obj, releasing whatever the slot owned.
// Reports whether a slot existed.
func (ctx *Context) DeleteProperty(obj Value, prop Atom) bool {
	p, ok := ctx.objectPayload(obj)
	if !ok {
		return false
	}
	slot, found := p.props[prop]
	if !found {
		return false
	}
	if slot.accessor {
		ctx.FreeValue(slot.getter)
		ctx.FreeValue(slot.setter)
	} else {
		ctx.FreeValue(slot.value)
	}
	delete(p.props, prop)
	for i, a := range p.order {
		if a == prop {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

// DefineAccessor installs getter/setter functions for prop on obj.
//
// Ownership of both getter and setter is consumed. Pass Undefined for a
// missing half. Replaces any existing slot.
func (ctx *Context) DefineAccessor(obj Value, prop Atom, getter, setter Value) SetResult {
	p, ok := ctx.objectPayload(obj)
	if !ok {
		ctx.FreeValue(getter)
		ctx.FreeValue(setter)
		return SetUnsupported
	}
	if slot, found := p.props[prop]; found {
		if slot.accessor {
			ctx.FreeValue(slot.getter)
			ctx.FreeValue(slot.setter)
		} else {
			ctx.FreeValue(slot.value)
		}
	} else {
		p.order = append(p.order, prop)
	}
	p.props[prop] = property{getter: getter, setter: setter, accessor: true}
	return SetOK
}

// OwnPropertyAtoms returns the object's explicit property keys in
// insertion order. Synthetic function properties are not included.
func (ctx *Context) OwnPropertyAtoms(obj Value) []Atom {
	p, ok := ctx.objectPayload(obj)
	if !ok {
		return nil
	}
	out := make([]Atom, len(p.order))
	copy(out, p.order)
	return out
}

// -----------------------------------------------------------------------------
// Arrays
// -----------------------------------------------------------------------------

// Append appends val to an array object, consuming the reference.
// Non-array targets yield SetUnsupported.
func (ctx *Context) Append(arr Value, val Value) SetResult {
	p, ok := ctx.objectPayload(arr)
	if !ok || p.class != ClassArray {
		ctx.FreeValue(val)
		return SetUnsupported
	}
	p.elems = append(p.elems, val)
	return SetOK
}

// Len returns the number of elements in an array object, or 0 for anything
// else.
func (ctx *Context) Len(arr Value) int {
	p, ok := ctx.objectPayload(arr)
	if !ok {
		return 0
	}
	return len(p.elems)
}

// Element returns the array element at idx as a new reference, or
// Undefined when out of range.
func (ctx *Context) Element(arr Value, idx int) Value {
	p, ok := ctx.objectPayload(arr)
	if !ok || idx < 0 || idx >= len(p.elems) {
		return Undefined
	}
	return ctx.DupValue(p.elems[idx])
}
