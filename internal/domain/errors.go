package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStoreFailure = errors.New("store failure")
)

// InputError is a client-correctable payload defect tied to one field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func Invalid(field, msg string) error { return &InputError{Field: field, Message: msg} }

// Message returns the client-facing text for err. Input errors keep their own
// message; everything else falls back to def.
func Message(err error, def string) string {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Message
	}
	return def
}
