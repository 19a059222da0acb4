// Package sampledata writes synthetic regional test sheets and matching
// admissions configuration for local runs and demos.
package sampledata

import (
	"math"
	"math/rand/v2"

	"github.com/okian/pecounsel/internal/domain/dataset"
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
)

// genderColumn is the column every generated sheet carries.
const genderColumn = "성별"

// Share of rows that are male.
const maleShare = 0.62

// Decimal places kept on generated values.
const (
	defaultDecimals = 1
	dashDecimals    = 2
)

// outlierFactor multiplies an event's upper bound to produce a value the
// outlier filter must drop.
const outlierFactor = 3

type distribution struct {
	mean, sd float64
}

// performance holds plausible per-gender distributions for each event.
var performance = map[event.Key]map[model.Gender]distribution{
	event.StandingLongJump:  {model.Male: {235, 22}, model.Female: {178, 18}},
	event.VerticalJump:      {model.Male: {58, 9}, model.Female: {43, 7}},
	event.VerticalJumpTouch: {model.Male: {62, 9}, model.Female: {46, 7}},
	event.GripStrength:      {model.Male: {155, 28}, model.Female: {92, 18}},
	event.SitUp:             {model.Male: {52, 10}, model.Female: {41, 9}},
	event.FrontBend:         {model.Male: {14, 7}, model.Female: {18, 6}},
	event.Dash10m:           {model.Male: {8.7, 0.5}, model.Female: {9.7, 0.6}},
	event.Dash20m:           {model.Male: {12.8, 0.9}, model.Female: {14.6, 1.0}},
	event.LongRun:           {model.Male: {420, 45}, model.Female: {520, 55}},
	event.MedicineBallThrow: {model.Male: {9.2, 1.4}, model.Female: {6.4, 1.0}},
}

// malformedTokens are values real exports carry in place of a record.
var malformedTokens = []string{"결시", "기권", "-", "측정불가", "N/A"}

// counts tallies the irregular values written into a sheet.
type counts struct {
	malformed int
	blanks    int
	outliers  int
}

// Generator produces rows for one region. It is not safe for concurrent use.
type Generator struct {
	rng      *rand.Rand
	registry *event.Registry
	cfg      *Config
	counts   counts
}

// NewGenerator returns a generator seeded from seed and the region's stream.
// The same seed and stream always yield the same rows.
func NewGenerator(cfg *Config, seed, stream uint64) *Generator {
	return &Generator{
		rng:      rand.New(rand.NewPCG(seed, stream)),
		registry: event.Default(),
		cfg:      cfg,
	}
}

// Region generates n rows in the column layout of region.
func (g *Generator) Region(region dataset.Region, n int) []map[string]any {
	keys := make([]event.Key, 0, len(region.Columns))
	for _, k := range g.registry.Keys() {
		if _, ok := region.Columns[k]; ok {
			keys = append(keys, k)
		}
	}

	rows := make([]map[string]any, 0, n)
	for range n {
		gender := model.Female
		if g.rng.Float64() < maleShare {
			gender = model.Male
		}
		row := map[string]any{genderColumn: gender.String()}
		for _, k := range keys {
			row[region.Columns[k]] = g.value(k, gender)
		}
		rows = append(rows, row)
	}
	return rows
}

// value draws one cell. Most cells are numbers; a configurable share are
// malformed tokens, blanks or out-of-range values.
func (g *Generator) value(k event.Key, gender model.Gender) any {
	def, _ := g.registry.Lookup(k)
	p := g.rng.Float64()
	switch {
	case p < g.cfg.MalformedRate/2:
		g.counts.malformed++
		return malformedTokens[g.rng.IntN(len(malformedTokens))]
	case p < g.cfg.MalformedRate:
		g.counts.blanks++
		return ""
	case p < g.cfg.MalformedRate+g.cfg.OutlierRate:
		g.counts.outliers++
		return round(def.Bounds.Max*outlierFactor, 0)
	}

	d := performance[k][gender]
	v := d.mean + g.rng.NormFloat64()*d.sd
	v = math.Max(def.Bounds.Min, math.Min(def.Bounds.Max, v))
	switch {
	case def.Integer:
		v = math.Round(v)
	case def.Polarity == event.LowerIsBetter:
		v = round(v, dashDecimals)
	default:
		v = round(v, defaultDecimals)
	}
	// Some exports store numbers as text.
	if g.rng.IntN(10) == 0 {
		return formatNumber(v)
	}
	return v
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
