package service

import "errors"

// Sentinel kinds for use-case errors.
var (
	ErrForbidden    = errors.New("operation not allowed")
	ErrUnknownEntry = errors.New("entry not found")
)
