package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrInvalidEventConfig = errors.New("invalid event configuration")
)
