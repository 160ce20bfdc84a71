package domain

import "errors"

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrAttendeeNotFound = errors.New("attendance not found")

	ErrAlreadyRegistered = errors.New("attendee already registered for this event")
	ErrDuplicateTitle    = errors.New("this event already exists")
	ErrUserExists        = errors.New("the user already exists")

	ErrForbidden          = errors.New("access forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("incorrect email or password")

	ErrInvalidID = errors.New("invalid id")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError is a shorthand used by the services.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
