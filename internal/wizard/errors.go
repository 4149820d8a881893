package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid step transition")
	ErrWrongStep         = errors.New("not the current step")
	ErrStepNotCompleted  = errors.New("step not completed")
	ErrSessionNotFound   = errors.New("wizard session not found")
)

// ErrorKind classifies a failed step attempt.
type ErrorKind string

const (
	// KindValidation is a local check failure; nothing was submitted.
	KindValidation ErrorKind = "validation"
	// KindTransport is a failure to reach the persistence layer.
	KindTransport ErrorKind = "transport"
	// KindResponse is an answer from the persistence layer that was not an
	// acceptance.
	KindResponse ErrorKind = "response"
)

// StepError ends one step attempt. The wizard stays in the same state and
// the operator may retry.
type StepError struct {
	Step    State
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

func (e *StepError) Unwrap() error { return e.Err }

// Rejection is implemented by submitter errors that carry the persistence
// layer's error payload. Rejection returns the payload's message.
type Rejection interface {
	error
	Rejection() string
}

func validationError(step State, err error) *StepError {
	return &StepError{Step: step, Kind: KindValidation, Message: sentence(err.Error()), Err: err}
}

func submitError(step State, err error) *StepError {
	var rej Rejection
	if errors.As(err, &rej) {
		return &StepError{Step: step, Kind: KindResponse, Message: rej.Rejection(), Err: err}
	}
	return &StepError{Step: step, Kind: KindTransport, Message: err.Error(), Err: err}
}

// sentence upper-cases the first letter of an error string.
func sentence(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
