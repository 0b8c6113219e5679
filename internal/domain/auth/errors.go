package auth

import "errors"

// Sentinel kinds for auth errors.
var (
	ErrBadCredentials = errors.New("invalid username or password")
)
