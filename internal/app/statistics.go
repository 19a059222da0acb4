package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/internal/domain/standing"
	"github.com/okian/pecounsel/internal/domain/stats"
	"github.com/okian/pecounsel/pkg/metrics"
)

// EventStatistics is the filtered population summary of one event.
type EventStatistics struct {
	Event     event.Definition   `json:"event"`
	Gender    model.GenderFilter `json:"gender"`
	Summary   stats.Summary      `json:"summary"`
	Histogram []stats.Bin        `json:"histogram"`
}

// Comparison holds the male and female statistics of one event. A side is
// nil when that partition has no data.
type Comparison struct {
	Event  event.Definition `json:"event"`
	Male   *EventStatistics `json:"male"`
	Female *EventStatistics `json:"female"`
}

// Analysis places a candidate score within an event population.
type Analysis struct {
	Standing    standing.Standing  `json:"standing"`
	TopTen      float64            `json:"top_ten_threshold"`
	GapToTopTen float64            `json:"gap_to_top_ten"`
	Summary     stats.Summary      `json:"summary"`
	Gender      model.GenderFilter `json:"gender"`
	EventName   string             `json:"event_name"`
	EventUnit   string             `json:"event_unit"`
}

// Statistics summarises the outlier-filtered population of an event.
// Returns stats.ErrNoData when nothing survives the filter.
func (s *Service) Statistics(ctx context.Context, key string, filter model.GenderFilter) (EventStatistics, error) {
	def, err := s.lookupEvent(key)
	if err != nil {
		return EventStatistics{}, err
	}
	values, err := s.population(ctx, def, filter)
	if err != nil {
		return EventStatistics{}, err
	}
	summary, err := stats.Describe(values)
	if err != nil {
		return EventStatistics{}, fmt.Errorf("%s (%s): %w", def.Key, filter, err)
	}
	return EventStatistics{
		Event:     def,
		Gender:    filter,
		Summary:   summary,
		Histogram: stats.Histogram(values, s.histogramBins),
	}, nil
}

// Compare returns the statistics of both genders side by side.
func (s *Service) Compare(ctx context.Context, key string) (Comparison, error) {
	def, err := s.lookupEvent(key)
	if err != nil {
		return Comparison{}, err
	}
	out := Comparison{Event: def}
	for _, side := range []struct {
		filter model.GenderFilter
		dst    **EventStatistics
	}{
		{model.FilterMale, &out.Male},
		{model.FilterFemale, &out.Female},
	} {
		st, err := s.Statistics(ctx, key, side.filter)
		switch {
		case err == nil:
			*side.dst = &st
		case isNoData(err):
		default:
			return Comparison{}, err
		}
	}
	if out.Male == nil && out.Female == nil {
		return Comparison{}, fmt.Errorf("%s: %w", def.Key, stats.ErrNoData)
	}
	return out, nil
}

// Analyze ranks score within the event population of filter.
func (s *Service) Analyze(ctx context.Context, key string, score float64, filter model.GenderFilter) (Analysis, error) {
	def, err := s.lookupEvent(key)
	if err != nil {
		return Analysis{}, err
	}
	if math.IsNaN(score) || math.IsInf(score, 0) || score <= 0 {
		return Analysis{}, fmt.Errorf("%w: score must be a positive number", ErrInvalidInput)
	}
	values, err := s.population(ctx, def, filter)
	if err != nil {
		return Analysis{}, err
	}
	summary, err := stats.Describe(values)
	if err != nil {
		return Analysis{}, fmt.Errorf("%s (%s): %w", def.Key, filter, err)
	}
	st, _ := standing.Rank(def, values, score)
	top, _ := standing.TopTenThreshold(def, values)
	return Analysis{
		Standing:    st,
		TopTen:      top,
		GapToTopTen: standing.GapToThreshold(def, score, top),
		Summary:     summary,
		Gender:      filter,
		EventName:   def.Name,
		EventUnit:   def.Unit,
	}, nil
}

func (s *Service) lookupEvent(key string) (event.Definition, error) {
	k, ok := s.registry.Parse(key)
	if !ok {
		return event.Definition{}, fmt.Errorf("%w: %q", ErrUnknownEvent, key)
	}
	def, _ := s.registry.Lookup(k)
	return def, nil
}

func (s *Service) population(ctx context.Context, def event.Definition, filter model.GenderFilter) ([]float64, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	values, hit := s.store.Population(ctx, def, filter)
	cache := "miss"
	if hit {
		cache = "hit"
	}
	metrics.RecordStatisticsRequest(string(def.Key), cache)
	return values, nil
}

func isNoData(err error) bool { return errors.Is(err, stats.ErrNoData) }
