package config

import "errors"

var (
	ErrMissingKey   = errors.New("config: missing required key")
	ErrInvalidValue = errors.New("config: invalid value")
)
