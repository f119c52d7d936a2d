package domain

import "errors"

var (
	// ErrNotFound covers both a nonexistent record and a record owned by
	// someone else; the two are deliberately indistinguishable.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering with an email that
	// already has an account.
	ErrEmailTaken = errors.New("user already exists")
	// ErrInvalidCredentials indicates a failed login without revealing
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a malformed, unsigned or expired session
	// token.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError reports missing or malformed input, rejected before
// any store access happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
