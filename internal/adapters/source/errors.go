package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrLoadSource      = errors.New("load source failed")
	ErrMalformedSource = errors.New("malformed source")
)
