package admission

import (
	"errors"
	"strings"
)

// Sentinel kinds for counseling errors.
var (
	ErrIncompleteProfile = errors.New("incomplete student profile")
	ErrNoEvents          = errors.New("no events submitted")
)

// IncompleteProfileError lists the profile fields still missing.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return ErrIncompleteProfile.Error() + ": missing " + strings.Join(e.Missing, ", ")
}

// Unwrap lets errors.Is match ErrIncompleteProfile.
func (e *IncompleteProfileError) Unwrap() error { return ErrIncompleteProfile }
