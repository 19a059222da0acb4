package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/internal/domain/stats"
	"github.com/okian/pecounsel/pkg/metrics"
)

type populationKey struct {
	event  event.Key
	filter model.GenderFilter
}

// MemoryStore is the in-memory DatasetStore. Filtered populations are cached
// per (event, gender partition) until the next region write.
type MemoryStore struct {
	mu      sync.RWMutex
	regions map[string][]model.AthleticRecord
	cache   map[populationKey][]float64
	filter  FilterFunc
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		regions: make(map[string][]model.AthleticRecord),
		cache:   make(map[populationKey][]float64),
		filter:  stats.FilterOutliers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReplaceRegion implements DatasetStore.
func (s *MemoryStore) ReplaceRegion(_ context.Context, region string, records []model.AthleticRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if records == nil {
		delete(s.regions, region)
	} else {
		cp := make([]model.AthleticRecord, len(records))
		copy(cp, records)
		s.regions[region] = cp
	}
	s.cache = make(map[populationKey][]float64)
	metrics.UpdateDatasetRecords(s.totalLocked())
}

// Population implements DatasetStore.
func (s *MemoryStore) Population(_ context.Context, def event.Definition, filter model.GenderFilter) ([]float64, bool) {
	key := populationKey{event: def.Key, filter: filter}

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return slices.Clone(cached), true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[key]; ok {
		return slices.Clone(cached), true
	}
	var raw []float64
	for _, region := range s.sortedRegionsLocked() {
		for _, r := range s.regions[region] {
			if !filter.Match(r.Gender) {
				continue
			}
			if v, ok := r.Events[def.Key]; ok {
				raw = append(raw, v)
			}
		}
	}
	values := s.filter(def, raw)
	s.cache[key] = values
	return slices.Clone(values), false
}

// Regions implements DatasetStore.
func (s *MemoryStore) Regions(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedRegionsLocked()
}

// Count implements DatasetStore.
func (s *MemoryStore) Count(_ context.Context) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(s.regions))
	for region, records := range s.regions {
		out[region] = len(records)
	}
	return out
}

func (s *MemoryStore) sortedRegionsLocked() []string {
	out := make([]string, 0, len(s.regions))
	for region := range s.regions {
		out = append(out, region)
	}
	sort.Strings(out)
	return out
}

func (s *MemoryStore) totalLocked() int {
	n := 0
	for _, records := range s.regions {
		n += len(records)
	}
	return n
}
