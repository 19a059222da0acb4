package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNoDataSource = errors.New("no data source configured")
	ErrUnknownEvent = errors.New("unknown event")
	ErrInvalidInput = errors.New("invalid input")
)
