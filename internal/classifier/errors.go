package classifier

import (
	"errors"
	"fmt"
)

var (
	// ErrExecutionFailed indicates the process could not start or exited non-zero.
	ErrExecutionFailed = errors.New("emotion analysis failed")
	// ErrOutputInvalid indicates the process succeeded but its stdout was
	// not a valid result.
	ErrOutputInvalid = errors.New("invalid response from classifier")
	// ErrBusy indicates no classifier slot became free within the queue timeout.
	ErrBusy = errors.New("classifier at capacity")
	// ErrTimeout indicates the process ran past its timeout and was killed.
	ErrTimeout = errors.New("classifier timed out")
)

// ExitError reports a classifier process that exited with a non-zero status.
// Code is -1 when the process was terminated by a signal.
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit code %d", ErrExecutionFailed, e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrExecutionFailed
}
