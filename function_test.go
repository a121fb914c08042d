package quill_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quill-js/quill"
)

func TestNewFunction(t *testing.T) {
	rt, ctx := newTestContext(t)

	fn := ctx.NewFunction(func(c *quill.Context, this quill.Value, args []quill.Value) quill.Value {
		sum := int32(0)
		for _, a := range args {
			sum += a.Int32()
		}
		return c.Int32(sum)
	}, "sum", 2)
	defer ctx.FreeValue(fn)

	require.True(t, ctx.IsFunction(fn))
	assert.True(t, fn.IsObject())

	t.Run("synthesized name and length", func(t *testing.T) {
		name := ctx.GetProperty(fn, rt.Atom("name"))
		defer ctx.FreeValue(name)
		s, err := ctx.ToString(name)
		require.NoError(t, err)
		assert.Equal(t, "sum", s)

		length := ctx.GetProperty(fn, rt.Atom("length"))
		assert.Equal(t, int32(2), length.Int32())
	})

	t.Run("call with arguments", func(t *testing.T) {
		got := ctx.Call(fn, quill.Undefined, ctx.Int32(3), ctx.Int32(4), ctx.Int32(5))
		require.False(t, got.IsException())
		assert.Equal(t, int32(12), got.Int32(), "declared length never truncates the call")
	})

	t.Run("this is threaded through", func(t *testing.T) {
		self := ctx.NewFunction(func(c *quill.Context, this quill.Value, args []quill.Value) quill.Value {
			return c.DupValue(this)
		}, "self", 0)
		defer ctx.FreeValue(self)

		obj := ctx.NewObject()
		defer ctx.FreeValue(obj)
		got := ctx.Call(self, obj)
		defer ctx.FreeValue(got)
		assert.Equal(t, obj, got)
	})

	t.Run("calling a non-function throws", func(t *testing.T) {
		got := ctx.Call(ctx.Int32(1), quill.Undefined)
		assert.True(t, got.IsException())
		require.True(t, ctx.HasException())
		ctx.FreeValue(ctx.TakeException())
	})
}

// TestMagicDispatch registers one function body twice with different magic
// values and checks each binding sees its own discriminator on every call.
func TestMagicDispatch(t *testing.T) {
	rt, ctx := newTestContext(t)

	calls := map[int]int{}
	body := func(c *quill.Context, this quill.Value, args []quill.Value, magic int) quill.Value {
		calls[magic]++
		return c.Int32(int32(magic))
	}

	first := ctx.NewFunctionMagic(body, "first", 0, quill.FuncGeneric, 0)
	second := ctx.NewFunctionMagic(body, "second", 0, quill.FuncGeneric, 1)
	defer ctx.FreeValue(first)
	defer ctx.FreeValue(second)

	for round := 0; round < 2; round++ {
		got := ctx.Call(first, quill.Undefined)
		assert.Equal(t, int32(0), got.Int32())
		got = ctx.Call(second, quill.Undefined)
		assert.Equal(t, int32(1), got.Int32())
	}
	assert.Equal(t, map[int]int{0: 2, 1: 2}, calls)

	t.Run("bindings are distinct objects", func(t *testing.T) {
		assert.NotEqual(t, first, second)
		name := ctx.GetProperty(second, rt.Atom("name"))
		defer ctx.FreeValue(name)
		s, err := ctx.ToString(name)
		require.NoError(t, err)
		assert.Equal(t, "second", s)
	})
}

func TestFunctionOnGlobal(t *testing.T) {
	rt, ctx := newTestContext(t)

	fn := ctx.NewFunction(func(c *quill.Context, this quill.Value, args []quill.Value) quill.Value {
		if len(args) == 0 {
			return c.ThrowTypeError("greet needs a name")
		}
		s, err := c.ToString(args[0])
		if err != nil {
			return quill.Exception
		}
		return c.String("hello " + s)
	}, "greet", 1)

	global := ctx.Global()
	defer ctx.FreeValue(global)
	require.Equal(t, quill.SetOK, ctx.SetProperty(global, rt.Atom("greet"), fn))

	looked := ctx.GetProperty(global, rt.Atom("greet"))
	defer ctx.FreeValue(looked)
	require.True(t, ctx.IsFunction(looked))

	arg := ctx.String("world")
	defer ctx.FreeValue(arg)
	got := ctx.Call(looked, quill.Undefined, arg)
	defer ctx.FreeValue(got)
	s, err := ctx.ToString(got)
	require.NoError(t, err)
	assert.Equal(t, "hello world", s)

	t.Run("host error propagates as pending exception", func(t *testing.T) {
		got := ctx.Call(looked, quill.Undefined)
		require.True(t, got.IsException())
		exc := ctx.TakeException()
		defer ctx.FreeValue(exc)
		s, err := ctx.ToString(exc)
		require.NoError(t, err)
		assert.Equal(t, "TypeError: greet needs a name", s)
	})
}

func TestMemoryLimit(t *testing.T) {
	rt, ctx := newTestContext(t, quill.WithMemoryLimit(512))

	t.Run("small allocations fit", func(t *testing.T) {
		v := ctx.String("small")
		require.False(t, v.IsException())
		ctx.FreeValue(v)
	})

	t.Run("oversized allocation throws out of memory", func(t *testing.T) {
		used := rt.MemoryUsed()
		v := ctx.String(strings.Repeat("x", 1<<20))
		require.True(t, v.IsException())
		assert.Equal(t, used, rt.MemoryUsed(), "a rejected allocation must not be accounted")

		require.True(t, ctx.HasException())
		exc := ctx.TakeException()
		defer ctx.FreeValue(exc)
		require.True(t, ctx.IsError(exc))
		s, err := ctx.ToString(exc)
		require.NoError(t, err)
		assert.Equal(t, "Error: out of memory", s)
	})

	t.Run("freeing returns headroom", func(t *testing.T) {
		v := ctx.String("reclaim me")
		require.False(t, v.IsException())
		before := rt.MemoryUsed()
		ctx.FreeValue(v)
		assert.Less(t, rt.MemoryUsed(), before)
	})
}

// TestContextUnderMemoryPressure exhausts the limit before the context
// exists: even the global object cannot be allocated, and the context must
// come back holding the out-of-memory exception rather than a bare
// sentinel.
func TestContextUnderMemoryPressure(t *testing.T) {
	rt := quill.NewRuntime(quill.WithMemoryLimit(1))
	defer rt.Close()
	ctx := rt.NewContext()
	defer ctx.Close()

	global := ctx.Global()
	assert.True(t, global.IsException())
	require.True(t, ctx.HasException(), "the sentinel must pair with a pending exception")

	exc := ctx.TakeException()
	defer ctx.FreeValue(exc)
	require.True(t, ctx.IsError(exc))
	s, err := ctx.ToString(exc)
	require.NoError(t, err)
	assert.Equal(t, "Error: out of memory", s)
}
