package stats

import "errors"

// ErrNoData signals an empty population after filtering. Callers surface it as
// a "no data" state rather than a failure.
var ErrNoData = errors.New("no data")
