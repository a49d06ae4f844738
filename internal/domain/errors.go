package domain

import "errors"

// Error kinds shared across services and mapped to HTTP statuses at the API
// boundary. Services wrap these with operation context via fmt.Errorf and %w.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid state transition")
)
