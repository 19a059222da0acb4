package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = errors.New("profile not found")
	ErrProfileStore = errors.New("profile store failed")
)
