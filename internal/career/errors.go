package career

import "errors"

// Sentinel kinds for career reference errors.
var (
	ErrNotFound    = errors.New("career reference not found")
	ErrUnavailable = errors.New("career references unavailable")
	ErrMalformed   = errors.New("malformed career file")
)
