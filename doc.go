// Package quill provides the tagged-value core of an embeddable
// scripting-language runtime.
//
// # Overview
//
// quill implements the value representation, reference-count protocol and
// native-function binding layer that every embedding of the engine builds
// on. It provides:
//
//   - A uniform tagged [Value] for numbers, booleans, strings, symbols,
//     objects, big integers and the special singletons
//   - Manual reference counting with explicit ownership contracts
//   - Property storage keyed by interned [Atom] handles
//   - Native (Go) functions callable as ordinary function values
//   - Numeric coercion and two-way marshaling with plain Go values
//
// The bytecode interpreter, parser and cycle-collecting garbage collector
// are separate subsystems layered on top of this core.
//
// # Quick Start
//
//	rt := quill.NewRuntime()
//	defer rt.Close()
//	ctx := rt.NewContext()
//	defer ctx.Close()
//
//	obj := ctx.NewObject()
//	name := ctx.String("quill")
//	ctx.SetProperty(obj, rt.Atom("name"), name) // consumes name
//	ctx.FreeValue(obj)
//
// # Ownership
//
// Heap-backed values (strings, symbols, objects, big integers) are
// reference counted. The rules are uniform:
//
//   - A function returning a heap-backed value transfers one reference to
//     the caller ("returns a new reference").
//   - A parameter documented as consumed takes ownership of one reference.
//   - Everything else borrows: the callee neither frees nor keeps the
//     value.
//
// Copying a [Value] never touches the count; use [Context.DupValue] to
// create a second reference and [Context.FreeValue] to release one.
// Value-type tags (numbers, booleans, the singletons) pass through both
// with no effect, so callers route every value through the same calls
// without branching on its kind.
//
// Unbalanced use is undefined behavior, not a reported error: freeing a
// reference twice can reclaim a live object, and never freeing one leaks
// it. [Runtime.RefCount] and [Runtime.HeapCells] exist so embedder test
// suites can assert balance.
//
// # Exceptions
//
// Fallible operations return the [Exception] sentinel (or an error wrapping
// [ErrException]) and leave the actual error object pending on the
// [Context]; inspect it with [Context.HasException] and
// [Context.TakeException]. No error payload ever travels in the return
// value itself.
//
// # Concurrency
//
// A [Runtime] and everything derived from it is confined to one goroutine
// at a time. The engine takes no locks; embedders that want parallelism
// run one Runtime per goroutine or serialize access externally.
package quill
