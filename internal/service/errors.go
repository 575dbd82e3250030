package service

import "errors"

var (
	// ErrUnauthorized is returned when the presented organizer key does not
	// match the stored hash
	ErrUnauthorized = errors.New("organizer key mismatch")

	// ErrValidation is wrapped by request-level validation failures
	ErrValidation = errors.New("validation failed")
)

// validationError pairs ErrValidation with a user-facing message
type validationError struct {
	message string
}

func (e *validationError) Error() string {
	return e.message
}

func (e *validationError) Unwrap() error {
	return ErrValidation
}

func validationErrorf(message string) error {
	return &validationError{message: message}
}
