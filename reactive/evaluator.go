// Package reactive defines the adaptor contract between the Task and the
// reactive runtime that actually detects draft values, re-runs the
// application's thunk, and eventually settles on a non-draft result. The
// runtime itself is an external collaborator; this package only specifies
// its shape plus one minimal, standalone Evaluator for tests and the
// reference container binding.
package reactive

import "context"

// Executor runs thunks. The reactive runtime's own shared executor is the
// default; applications may supply their own for heavy or blocking work.
type Executor interface {
	Run(func())
}

// Thunk is the application's computation. It returns a response value
// (opaque to this package) and whether that value is a draft — provisional,
// to be superseded by a later call once the thunk's reactive inputs settle.
type Thunk func() (value any, draft bool)

// Future is a cancellable handle to a pending evaluation. OnComplete's
// callback fires exactly once, synchronously on the executor that produced
// the future, carrying either the first non-draft value or an error —
// including a cancellation error once Cancel has been called.
type Future interface {
	OnComplete(func(value any, err error))
	Cancel()
}

// Evaluator repeatedly invokes thunk on executor until it yields a
// non-draft value, then completes the returned Future with that value.
// Evaluate takes a context so the Task can make cancellation depend on
// both the timeout path and the death path, per the redesign notes.
type Evaluator interface {
	Evaluate(ctx context.Context, thunk Thunk, executor Executor) Future
}
