package llm

import "errors"

// ErrMalformedPayload marks a response whose embedded JSON could not be
// located or parsed. Callers use it to tell parse failures apart from
// transport failures.
var ErrMalformedPayload = errors.New("malformed completion payload")

// TransientError wraps a temporary failure worth retrying.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }
func (e *TransientError) Unwrap() error { return e.err }

func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError wraps a permanent failure that retrying cannot fix.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string { return e.err.Error() }
func (e *FatalError) Unwrap() error { return e.err }

func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// modelUnavailableError signals that a specific model id was rejected by the
// endpoint; the client moves to the next entry of the fallback list.
type modelUnavailableError struct {
	model string
	err   error
}

func (e *modelUnavailableError) Error() string { return e.err.Error() }
func (e *modelUnavailableError) Unwrap() error { return e.err }

func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

func isModelUnavailable(err error) bool {
	var unavailable *modelUnavailableError
	return errors.As(err, &unavailable)
}
