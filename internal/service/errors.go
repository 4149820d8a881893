// Package service holds the server-side acceptance rules of the four board
// wizard steps. It re-validates every document against the board's current
// columns before storing it and publishes a domain event per accepted step.
package service

import (
	"errors"
	"fmt"

	"github.com/matthewbaird/autoboard/internal/store"
)

// User-facing messages.
const (
	MsgBoardNotFound   = "Board not found"
	MsgColumnsNotFound = "Columns metadata not found"
	MsgConfigNotFound  = "Configuration not found"
)

// ErrNotFound aliases the store sentinel so callers need one import.
var ErrNotFound = store.ErrNotFound

// ValidationError rejects a step payload. Message is shown to the operator.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError marks a missing board or document. It matches ErrNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Message: msg}
	}
	return err
}
