package quill

import "errors"

// ErrException signals that an operation failed because an exception is
// pending on the Context. It carries no diagnostics of its own; the
// embedder inspects [Context.HasException] / [Context.TakeException] for
// the actual error object.
var ErrException = errors.New("exception pending on context")

// ErrUnexpectedType signals a value conversion that received a kind it
// cannot represent on the other side of the boundary.
var ErrUnexpectedType = errors.New("unexpected value type")

// ExecutionError is a pending script-level exception surfaced as a Go
// error, with the exception object reduced to its message.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Message
}
