package repository

import (
	"github.com/okian/pecounsel/internal/domain/event"
)

// FilterFunc trims a raw population before it is cached.
type FilterFunc func(def event.Definition, values []float64) []float64

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithFilter replaces the outlier filter applied to populations.
func WithFilter(f FilterFunc) Option {
	return func(s *MemoryStore) {
		if f != nil {
			s.filter = f
		}
	}
}
