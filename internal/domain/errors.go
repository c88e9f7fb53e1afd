package domain

import "errors"

// Error kinds returned by room operations. Callers classify with errors.Is;
// the message after the kind carries the detail.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInactiveRoom = errors.New("room is inactive")
)
