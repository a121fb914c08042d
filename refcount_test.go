package quill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-js/quill"
)

func TestDupFreeBalance(t *testing.T) {
	rt, ctx := newTestContext(t)

	t.Run("dup then free restores the count", func(t *testing.T) {
		v := ctx.String("balanced")
		require.Equal(t, 1, rt.RefCount(v))

		ctx.DupValue(v)
		assert.Equal(t, 2, rt.RefCount(v))

		ctx.FreeValue(v)
		assert.Equal(t, 1, rt.RefCount(v), "Dup+Free must restore the pre-call count")

		ctx.FreeValue(v)
		assert.Equal(t, 0, rt.RefCount(v))
	})

	t.Run("n frees after n-1 dups deallocate exactly once", func(t *testing.T) {
		base := rt.HeapCells()
		v := ctx.String("counted")
		ctx.DupValue(v)
		ctx.DupValue(v)
		require.Equal(t, 3, rt.RefCount(v))

		ctx.FreeValue(v)
		ctx.FreeValue(v)
		assert.Equal(t, base+1, rt.HeapCells(), "cell must survive until the last free")
		ctx.FreeValue(v)
		assert.Equal(t, base, rt.HeapCells())
		assert.Equal(t, 0, rt.RefCount(v))
	})

	t.Run("runtime-scoped variants", func(t *testing.T) {
		v := ctx.String("rt-scoped")
		rt.DupValue(v)
		assert.Equal(t, 2, rt.RefCount(v))
		rt.FreeValue(v)
		rt.FreeValue(v)
		assert.Equal(t, 0, rt.RefCount(v))
	})
}

// TestValueTypeTagsIgnoreRefcounting constructs the integer 42, dups it and
// frees it twice. Plain integers are not heap-backed, so every step is a
// no-op and classification still holds afterwards.
func TestValueTypeTagsIgnoreRefcounting(t *testing.T) {
	rt, ctx := newTestContext(t)

	v := ctx.Int32(42)
	dup := ctx.DupValue(v)
	assert.Equal(t, v, dup, "Dup returns the value unchanged")
	assert.Equal(t, 0, rt.RefCount(v))

	ctx.FreeValue(v)
	ctx.FreeValue(v)

	assert.True(t, v.IsNumber())
	assert.False(t, v.IsObject())
	assert.Equal(t, int32(42), v.Int32())

	// Same for the singletons.
	ctx.FreeValue(quill.Undefined)
	ctx.FreeValue(ctx.DupValue(quill.Null))
	assert.Equal(t, 0, rt.RefCount(quill.Null))
}

func TestFreeReleasesOwnedChildren(t *testing.T) {
	rt, ctx := newTestContext(t)
	base := rt.HeapCells()

	obj := ctx.NewObject()
	child := ctx.String("owned")
	ctx.SetProperty(obj, rt.Atom("child"), child) // consumes child
	require.Equal(t, base+2, rt.HeapCells())
	require.Equal(t, 1, rt.RefCount(child))

	ctx.FreeValue(obj)
	assert.Equal(t, base, rt.HeapCells(), "freeing the object must free the property it owned")
	assert.Equal(t, 0, rt.RefCount(child))
}

func TestFreeToleratesCycles(t *testing.T) {
	rt, ctx := newTestContext(t)
	base := rt.HeapCells()

	a := ctx.NewObject()
	b := ctx.NewObject()
	// a.next = b, b.next = a. SetProperty consumes, so dup the stored refs.
	ctx.SetProperty(a, rt.Atom("next"), ctx.DupValue(b))
	ctx.SetProperty(b, rt.Atom("next"), ctx.DupValue(a))

	// Drop the outer references. The a->b->a edge keeps both counts at 1;
	// that residue is what the deferred collection pass exists for. The
	// teardown below must not recurse forever or double-free.
	ctx.FreeValue(a)
	ctx.FreeValue(b)
	assert.Equal(t, base+2, rt.HeapCells(), "an unreachable cycle stays until collected")

	// Break the cycle the way a collector would and confirm full release.
	ctx.DeleteProperty(a, rt.Atom("next"))
	assert.Equal(t, base, rt.HeapCells())
}

func TestOwnedWrapper(t *testing.T) {
	rt, ctx := newTestContext(t)

	t.Run("free exactly once", func(t *testing.T) {
		o := ctx.Own(ctx.String("wrapped"))
		v := o.Value()
		require.Equal(t, 1, rt.RefCount(v))

		o.Free()
		assert.Equal(t, 0, rt.RefCount(v))
		assert.True(t, o.Value().IsUndefined())

		o.Free() // second free is a no-op, not a double-free
		assert.Equal(t, 0, rt.RefCount(v))
	})

	t.Run("clone duplicates the reference", func(t *testing.T) {
		o := ctx.Own(ctx.String("cloned"))
		c := o.Clone()
		require.Equal(t, 2, rt.RefCount(o.Value()))

		o.Free()
		assert.Equal(t, 1, rt.RefCount(c.Value()))
		c.Free()
	})
}
