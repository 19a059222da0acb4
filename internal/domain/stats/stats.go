// Package stats implements outlier trimming and descriptive statistics over
// one event's population.
package stats

import (
	"math"
	"sort"

	"github.com/okian/pecounsel/internal/domain/event"
)

// Outlier filter constants.
const (
	q1Fraction    = 0.25
	q3Fraction    = 0.75
	iqrMultiplier = 1.5
)

// ReportedPercentiles are the positions included in every Summary.
var ReportedPercentiles = []float64{25, 50, 75, 90, 95}

// Window returns the keep window for values: IQR fences intersected with the
// event's fixed bounds. ok is false for empty input.
func Window(def event.Definition, values []float64) (event.Bounds, bool) {
	sorted := sortedCopy(applySentinel(def, values))
	if len(sorted) == 0 {
		return event.Bounds{}, false
	}
	n := len(sorted)
	q1 := sorted[int(math.Floor(float64(n)*q1Fraction))]
	q3 := sorted[int(math.Floor(float64(n)*q3Fraction))]
	iqr := q3 - q1
	return event.Bounds{
		Min: math.Max(q1-iqrMultiplier*iqr, def.Bounds.Min),
		Max: math.Min(q3+iqrMultiplier*iqr, def.Bounds.Max),
	}, true
}

// FilterOutliers drops sentinel values, then keeps values inside Window.
// Input order is preserved. Empty input yields an empty, non-nil slice.
func FilterOutliers(def event.Definition, values []float64) []float64 {
	kept := applySentinel(def, values)
	w, ok := Window(def, kept)
	if !ok {
		return []float64{}
	}
	out := make([]float64, 0, len(kept))
	for _, v := range kept {
		if w.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

func applySentinel(def event.Definition, values []float64) []float64 {
	if def.Sentinel <= 0 {
		return values
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v <= def.Sentinel {
			out = append(out, v)
		}
	}
	return out
}

func sortedCopy(values []float64) []float64 {
	s := make([]float64, len(values))
	copy(s, values)
	sort.Float64s(s)
	return s
}

// Mean is the arithmetic mean. Zero for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the population standard deviation (divides by n).
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var acc float64
	for _, v := range values {
		d := v - m
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(values)))
}

// Percentile interpolates linearly between the ranks around p/100·(n-1) of
// the ascending order of values. Polarity plays no part.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := values
	if !sort.Float64sAreSorted(values) {
		sorted = sortedCopy(values)
	}
	idx := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	w := idx - float64(lower)
	return sorted[lower]*(1-w) + sorted[upper]*w
}

// PercentilePoint is one row of the percentile table.
type PercentilePoint struct {
	P     float64 `json:"p"`
	Value float64 `json:"value"`
}

// Summary holds descriptive statistics of a filtered population.
type Summary struct {
	Count       int               `json:"count"`
	Mean        float64           `json:"mean"`
	Std         float64           `json:"std"`
	Min         float64           `json:"min"`
	Max         float64           `json:"max"`
	Percentiles []PercentilePoint `json:"percentiles"`
}

// Percentile returns the reported value at p.
func (s Summary) Percentile(p float64) (float64, bool) {
	for _, pp := range s.Percentiles {
		if pp.P == p {
			return pp.Value, true
		}
	}
	return 0, false
}

// Describe summarises already-filtered values. Returns ErrNoData when empty.
func Describe(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, ErrNoData
	}
	sorted := sortedCopy(values)
	s := Summary{
		Count: len(sorted),
		Mean:  Mean(sorted),
		Std:   StdDev(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
	}
	s.Percentiles = make([]PercentilePoint, len(ReportedPercentiles))
	for i, p := range ReportedPercentiles {
		s.Percentiles[i] = PercentilePoint{P: p, Value: Percentile(sorted, p)}
	}
	return s, nil
}

// Analyze trims raw values for def and summarises the rest.
func Analyze(def event.Definition, raw []float64) (Summary, []float64, error) {
	kept := FilterOutliers(def, raw)
	s, err := Describe(kept)
	if err != nil {
		return Summary{}, kept, err
	}
	return s, kept, nil
}
