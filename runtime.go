package quill

import (
	"log/slog"
)

// cellOverhead is the bookkeeping cost charged per heap cell, on top of the
// payload's own footprint.
const cellOverhead = 64

// payload is the heap representation behind a refcounted value.
type payload interface {
	// release frees children owned by this payload. It is called exactly
	// once, after the cell has already been removed from the arena, so
	// reference cycles terminate instead of recursing forever.
	release(rt *Runtime)

	// footprint returns the approximate payload size in bytes, used for
	// memory-limit accounting.
	footprint() int
}

// heapCell is one refcounted allocation in the Runtime's arena.
type heapCell struct {
	refs    int
	cost    int
	payload payload
}

// Runtime owns the heap for one isolated execution environment.
//
// A Runtime holds every heap-allocated payload reachable from values it
// produced, plus the atom table. Create one with [NewRuntime] and destroy it
// with [Runtime.Close] only after all Contexts and values derived from it
// have been released.
//
// A Runtime performs no internal locking: all Value, Context and Runtime
// operations derived from it must be confined to one goroutine at a time.
// Embedders that need parallelism use one Runtime per goroutine or an
// external lock.
type Runtime struct {
	cells    map[refID]*heapCell
	nextID   refID
	atoms    *atomTable
	memUsed  int
	memLimit int
	atomHint int
	logger   *slog.Logger
	trace    bool

	// interned well-known atoms
	atomValueOf  Atom
	atomToString Atom
	atomMessage  Atom
	atomName     Atom
	atomLength   Atom
}

// NewRuntime creates a runtime with the given options applied.
//
//	rt := quill.NewRuntime(quill.WithMemoryLimit(16 << 20))
//	defer rt.Close()
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		cells:  make(map[refID]*heapCell),
		nextID: 1,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.atoms = newAtomTable(rt.atomHint)
	rt.atomValueOf = rt.Atom("valueOf")
	rt.atomToString = rt.Atom("toString")
	rt.atomMessage = rt.Atom("message")
	rt.atomName = rt.Atom("name")
	rt.atomLength = rt.Atom("length")
	return rt
}

// Close tears down the runtime.
//
// Every value created from the runtime must have been freed first; closing
// with live heap cells is reported as a leak. Using the runtime, any of its
// contexts, or any value derived from it after Close is undefined behavior.
func (rt *Runtime) Close() {
	if n := len(rt.cells); n > 0 {
		rt.logger.Warn("runtime closed with live heap cells", "cells", n, "bytes", rt.memUsed)
	}
	rt.cells = nil
	rt.atoms = nil
}

// alloc creates a heap cell with refcount 1 and returns a value for it.
// Fails (ok=false) when the allocation would exceed the memory limit.
func (rt *Runtime) alloc(t tag, p payload) (v Value, ok bool) {
	cost := cellOverhead + p.footprint()
	if rt.memLimit > 0 && rt.memUsed+cost > rt.memLimit {
		rt.logger.Warn("allocation rejected by memory limit",
			"requested", cost, "used", rt.memUsed, "limit", rt.memLimit)
		return Exception, false
	}
	id := rt.nextID
	rt.nextID++
	rt.cells[id] = &heapCell{refs: 1, cost: cost, payload: p}
	rt.memUsed += cost
	if rt.trace {
		rt.logger.Debug("alloc", "cell", uint64(id), "bytes", cost)
	}
	return Value{tag: t, word: int64(id)}, true
}

// cell returns the heap cell behind a value, or nil for non-heap tags and
// cells that have already been released.
func (rt *Runtime) cell(v Value) *heapCell {
	if !v.heapBacked() {
		return nil
	}
	return rt.cells[v.ref()]
}

// DupValue increments the reference count of a heap-backed value and
// returns the same value. For any other tag it returns the value unchanged
// with no side effect.
//
// This is the runtime-scoped variant for callers that hold no Context;
// ordinary code uses [Context.DupValue].
func (rt *Runtime) DupValue(v Value) Value {
	if c := rt.cell(v); c != nil {
		c.refs++
	}
	return v
}

// FreeValue releases one reference to a heap-backed value. When the count
// reaches zero the cell is reclaimed and any values it owned are released
// in turn. For non-heap tags FreeValue is a no-op.
//
// The caller must own the reference being freed: freeing a borrowed value,
// or freeing the same reference twice, is undefined behavior.
//
// This is the runtime-scoped variant; ordinary code uses
// [Context.FreeValue].
func (rt *Runtime) FreeValue(v Value) {
	if !v.heapBacked() {
		return
	}
	id := v.ref()
	c := rt.cells[id]
	if c == nil {
		// Either a cycle being torn down (the cell left the arena before
		// its children) or caller misuse we cannot distinguish here.
		return
	}
	c.refs--
	if c.refs > 0 {
		return
	}
	// Remove the cell before releasing children so cyclic structures
	// terminate. Anything unreachable that never hits zero is left for the
	// embedder's collection pass.
	delete(rt.cells, id)
	rt.memUsed -= c.cost
	if rt.trace {
		rt.logger.Debug("free", "cell", uint64(id))
	}
	c.payload.release(rt)
}

// RefCount returns the current reference count of a heap-backed value, or 0
// for value-type tags and already-released cells. Intended for leak
// accounting in embedder test harnesses.
func (rt *Runtime) RefCount(v Value) int {
	if c := rt.cell(v); c != nil {
		return c.refs
	}
	return 0
}

// HeapCells returns the number of live heap cells in the arena. Intended
// for leak accounting in embedder test harnesses.
func (rt *Runtime) HeapCells() int { return len(rt.cells) }

// MemoryUsed returns the approximate number of heap bytes currently
// accounted to live cells.
func (rt *Runtime) MemoryUsed() int { return rt.memUsed }
