package client

import "errors"

var (
	// ErrNotFound indicates the requested entity no longer exists on the
	// remote catalog. Transport failures are wrapped separately so callers
	// can tell the two apart with errors.Is.
	ErrNotFound = errors.New("not found")
	// ErrInvalidURL indicates the input could not be parsed into a known
	// media URL form.
	ErrInvalidURL = errors.New("invalid url")
)
