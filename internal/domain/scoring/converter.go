package scoring

import (
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
)

// Method tells how an athletic score was produced.
type Method string

const (
	// MethodTable sums official table conversions.
	MethodTable Method = "table"
	// MethodBasic averages fixed min-max normalisations.
	MethodBasic Method = "basic"
	// MethodNone means the student submitted no events.
	MethodNone Method = "none"
)

// Result is the athletic score of one student for one university.
type Result struct {
	Score   float64     `json:"score"`
	Method  Method      `json:"method"`
	Matched []event.Key `json:"matched,omitempty"`
}

// Option applies a configuration option to the Converter.
type Option func(*Converter)

// WithTables sets the official scoring tables.
func WithTables(t *Tables) Option {
	return func(c *Converter) {
		if t != nil {
			c.tables = t
		}
	}
}

// Converter computes per-university athletic scores.
type Converter struct {
	registry *event.Registry
	tables   *Tables
	basic    *BasicNormalizer
}

// NewConverter creates a converter. Without tables every university falls
// back to the basic normaliser.
func NewConverter(reg *event.Registry, opts ...Option) *Converter {
	c := &Converter{
		registry: reg,
		basic:    NewBasicNormalizer(reg),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tables exposes the configured tables (possibly nil).
func (c *Converter) Tables() *Tables { return c.tables }

// ScoreForUniversity converts the student's events with the university's
// table for gender g. Table conversions are summed over covered events, not
// averaged; uncovered events are ignored. Without a table the basic
// normaliser's average is used instead.
func (c *Converter) ScoreForUniversity(univ string, g model.Gender, events map[event.Key]float64) Result {
	if len(events) == 0 {
		return Result{Method: MethodNone}
	}
	tables, ok := c.tables.Lookup(univ, g)
	if !ok {
		return Result{Score: c.basic.Score(events), Method: MethodBasic}
	}

	res := Result{Method: MethodTable}
	for _, k := range c.registry.Keys() {
		record, submitted := events[k]
		if !submitted {
			continue
		}
		rows, covered := tables[k]
		if !covered {
			continue
		}
		res.Score += Convert(record, rows, c.registry.HigherIsBetter(k))
		res.Matched = append(res.Matched, k)
	}
	return res
}
