package errors

import "errors"

var (
	// ErrBadURL is returned by http.FromRaw when the reconstructed request
	// URL cannot be parsed. The Task treats it as fatal during the Reading
	// state, via the guard mechanism.
	ErrBadURL = errors.New("request url could not be parsed")

	// ErrAlreadyResponded marks an attempted second response write on a Task
	// that has already set responded. Task code checks the responded flag
	// before ever constructing this error; it exists for callers (tests,
	// container adapters) that want to assert the guard held.
	ErrAlreadyResponded = errors.New("a response has already been sent for this task")

	// ErrNilEvaluation is returned when a reactive.Future completes with a
	// nil value and a nil error, a contract violation no Evaluator
	// implementation shipped in this module can produce on its own but
	// which the Task still has to treat as a failure rather than panic on.
	ErrNilEvaluation = errors.New("reactive evaluation completed with no value and no error")
)
