package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned by Submit and Retry while a save is in flight.
	ErrBusy = errors.New("engine: a save is already in progress")

	// ErrCompleted is returned when answering a finished questionnaire.
	ErrCompleted = errors.New("engine: questionnaire already completed")

	// ErrNotLoaded is returned before Load has succeeded.
	ErrNotLoaded = errors.New("engine: questionnaire not loaded")

	// ErrNothingToRetry is returned by Retry when no failed operation is pending.
	ErrNothingToRetry = errors.New("engine: nothing to retry")

	// ErrDisposed is returned by operations started after Dispose.
	ErrDisposed = errors.New("engine: disposed")
)

// TransientIOError wraps a repository failure that may succeed on retry.
// The in-memory answer that triggered it is kept.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }
