package core

import "errors"

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP status codes; anything else surfaces as a generic 500.
var (
	ErrNotFound           = errors.New("session not found")
	ErrForbidden          = errors.New("unauthorized access to this session")
	ErrSessionEnded       = errors.New("session is not active")
	ErrEmptyMessage       = errors.New("message content is required")
	ErrMessageTooLong     = errors.New("message content exceeds maximum length")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
