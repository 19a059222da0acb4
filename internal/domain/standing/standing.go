// Package standing ranks a candidate record against a reference population.
package standing

import (
	"math"
	"sort"

	"github.com/okian/pecounsel/internal/domain/event"
)

// Grade cutoffs on the upper percent ("top X%") scale.
const (
	excellentCutoff = 90
	goodCutoff      = 75
	averageCutoff   = 50
	improveCutoff   = 25

	topTenFraction = 0.1
)

// Grade is the qualitative band of a standing.
type Grade int

const (
	NeedsIntensiveTraining Grade = iota
	NeedsImprovement
	Average
	Good
	Excellent
)

var gradeLabels = map[Grade]string{
	Excellent:              "우수",
	Good:                   "양호",
	Average:                "보통",
	NeedsImprovement:       "개선필요",
	NeedsIntensiveTraining: "집중훈련",
}

var gradeCodes = map[Grade]string{
	Excellent:              "excellent",
	Good:                   "good",
	Average:                "average",
	NeedsImprovement:       "needs_improvement",
	NeedsIntensiveTraining: "needs_intensive_training",
}

// Label returns the Korean label shown to students.
func (g Grade) Label() string { return gradeLabels[g] }

// String implements fmt.Stringer.
func (g Grade) String() string { return gradeCodes[g] }

// MarshalText encodes the code form.
func (g Grade) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

// GradeFor maps an upper percent (100 − rank percentile) to a grade.
func GradeFor(upperPercent float64) Grade {
	switch {
	case upperPercent >= excellentCutoff:
		return Excellent
	case upperPercent >= goodCutoff:
		return Good
	case upperPercent >= averageCutoff:
		return Average
	case upperPercent >= improveCutoff:
		return NeedsImprovement
	default:
		return NeedsIntensiveTraining
	}
}

// Standing is a candidate's position in a population.
//
// RankPercentile is the share of the population that did strictly better,
// so 0 is the best possible standing. UpperPercent = 100 − RankPercentile is
// the "top X%" figure the grade is derived from.
type Standing struct {
	Event          event.Key `json:"event"`
	Score          float64   `json:"score"`
	Population     int       `json:"population"`
	Better         int       `json:"better"`
	RankPercentile float64   `json:"rank_percentile"`
	UpperPercent   float64   `json:"upper_percent"`
	Grade          Grade     `json:"grade"`
	GradeLabel     string    `json:"grade_label"`
}

// Rank places candidate within an already outlier-filtered population.
// ok is false when the population is empty.
func Rank(def event.Definition, population []float64, candidate float64) (Standing, bool) {
	if len(population) == 0 {
		return Standing{}, false
	}
	better := 0
	for _, v := range population {
		if def.HigherIsBetter() && v > candidate || !def.HigherIsBetter() && v < candidate {
			better++
		}
	}
	rank := float64(better) / float64(len(population)) * 100
	upper := 100 - rank
	g := GradeFor(upper)
	return Standing{
		Event:          def.Key,
		Score:          candidate,
		Population:     len(population),
		Better:         better,
		RankPercentile: rank,
		UpperPercent:   upper,
		Grade:          g,
		GradeLabel:     g.Label(),
	}, true
}

// TopTenThreshold returns the record at the top-10% cut of population,
// counted from the best end.
func TopTenThreshold(def event.Definition, population []float64) (float64, bool) {
	if len(population) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(population))
	copy(sorted, population)
	if def.HigherIsBetter() {
		sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	} else {
		sort.Float64s(sorted)
	}
	i := int(math.Floor(float64(len(sorted)) * topTenFraction))
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i], true
}

// GapToThreshold is how far candidate is past threshold in the event's
// better direction. Positive means the candidate already clears it.
func GapToThreshold(def event.Definition, candidate, threshold float64) float64 {
	if def.HigherIsBetter() {
		return candidate - threshold
	}
	return threshold - candidate
}
