// Package scoring converts raw athletic records into university points.
package scoring

import (
	"math"
	"sort"

	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
)

// Basic normaliser constants.
const (
	maxScoreValue      = 100
	unmappedEventScore = 50
)

// Convert looks record up in table the way a spreadsheet VLOOKUP with linear
// interpolation would. The table is ordered by record ascending regardless of
// polarity. Exact matches return the tabulated score; records between two
// rows are interpolated; records outside the table take an end score chosen
// by polarity. An empty table converts to 0.
func Convert(record float64, table []model.ScoringEntry, higherIsBetter bool) float64 {
	if len(table) == 0 {
		return 0
	}
	sorted := make([]model.ScoringEntry, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Record < sorted[j].Record })

	for _, e := range sorted {
		if e.Record == record {
			return e.Score
		}
	}

	first, last := sorted[0], sorted[len(sorted)-1]
	if record < first.Record {
		if higherIsBetter {
			return first.Score
		}
		return last.Score
	}
	if record > last.Record {
		if higherIsBetter {
			return last.Score
		}
		return first.Score
	}

	for i := 0; i < len(sorted)-1; i++ {
		low, high := sorted[i], sorted[i+1]
		if record >= low.Record && record <= high.Record {
			ratio := (record - low.Record) / (high.Record - low.Record)
			return low.Score + ratio*(high.Score-low.Score)
		}
	}
	// NaN records fall through every comparison.
	return 0
}

// Normalize maps one record onto 0..100 using d. Records past either end
// clamp.
func Normalize(record float64, d event.Domain) float64 {
	if d.Best == d.Worst {
		return 0
	}
	v := (record - d.Worst) / (d.Best - d.Worst) * maxScoreValue
	return math.Max(0, math.Min(maxScoreValue, v))
}

// BasicNormalizer scores a student when a university publishes no table:
// every submitted event is normalised to 0..100 and the scores are averaged.
type BasicNormalizer struct {
	registry *event.Registry
}

// NewBasicNormalizer creates a normaliser over reg's event domains.
func NewBasicNormalizer(reg *event.Registry) *BasicNormalizer {
	return &BasicNormalizer{registry: reg}
}

// Score averages the per-event normalised scores. Events without a domain
// count as 50. No events score 0.
func (b *BasicNormalizer) Score(events map[event.Key]float64) float64 {
	if len(events) == 0 {
		return 0
	}
	var total float64
	for k, record := range events {
		d, ok := b.registry.Lookup(k)
		if !ok || d.Normalizer == nil {
			total += unmappedEventScore
			continue
		}
		total += Normalize(record, *d.Normalizer)
	}
	return total / float64(len(events))
}
