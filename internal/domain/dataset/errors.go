package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrUnknownRegion = errors.New("unknown region")
)
