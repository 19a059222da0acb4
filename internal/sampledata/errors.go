package sampledata

import "errors"

// ErrInvalidConfig is returned when a run is misconfigured.
var ErrInvalidConfig = errors.New("sampledata: invalid config")
