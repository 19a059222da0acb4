// Package event is the single registry of athletic test events: key, display
// name, unit, polarity, physiological bounds and the aliases scoring tables use.
package event

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Key identifies an athletic test event.
type Key string

// Known event keys.
const (
	StandingLongJump  Key = "standing_long_jump"
	VerticalJump      Key = "vertical_jump"
	VerticalJumpTouch Key = "vertical_jump_touch"
	GripStrength      Key = "grip_strength"
	SitUp             Key = "sit_up"
	FrontBend         Key = "front_bend"
	Dash10m           Key = "10m_dash"
	Dash20m           Key = "20m_dash"
	LongRun           Key = "long_run"
	MedicineBallThrow Key = "medicine_ball_throw"
)

// Polarity tells whether larger raw values mean a better performance.
type Polarity int

const (
	HigherIsBetter Polarity = iota
	LowerIsBetter
)

// String implements fmt.Stringer.
func (p Polarity) String() string {
	if p == LowerIsBetter {
		return "lower_is_better"
	}
	return "higher_is_better"
}

// Bounds is an inclusive [Min, Max] window.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the window.
func (b Bounds) Contains(v float64) bool { return v >= b.Min && v <= b.Max }

// Domain is the raw-record range a basic normaliser maps onto 0..100.
// For lower-is-better events Worst > Best.
type Domain struct {
	Worst float64
	Best  float64
}

// Definition describes one event.
type Definition struct {
	Key      Key      `json:"key"`
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
	Polarity Polarity `json:"-"`
	Bounds   Bounds   `json:"bounds"`
	// Sentinel drops values strictly above it before any statistics run
	// (misentered units). Zero disables it.
	Sentinel float64 `json:"-"`
	// Normalizer is nil for events the basic normaliser does not map.
	Normalizer *Domain `json:"-"`
	// Aliases are additional names found in scoring tables and region files.
	Aliases []string `json:"-"`
	// Integer marks events recorded as whole counts.
	Integer bool `json:"integer"`
}

// HigherIsBetter is a convenience for Polarity == HigherIsBetter.
func (d Definition) HigherIsBetter() bool { return d.Polarity == HigherIsBetter }

// Registry is an immutable lookup over event definitions.
type Registry struct {
	defs   []Definition
	byKey  map[Key]int
	byName map[string]int
}

// NewRegistry builds a registry from defs. Later definitions win on name
// collisions.
func NewRegistry(defs []Definition) *Registry {
	r := &Registry{
		defs:   make([]Definition, len(defs)),
		byKey:  make(map[Key]int, len(defs)),
		byName: make(map[string]int, len(defs)*3),
	}
	copy(r.defs, defs)
	for i, d := range r.defs {
		r.byKey[d.Key] = i
		r.byName[NormalizeName(string(d.Key))] = i
		r.byName[NormalizeName(d.Name)] = i
		for _, a := range d.Aliases {
			r.byName[NormalizeName(a)] = i
		}
	}
	return r
}

// Lookup returns the definition for k.
func (r *Registry) Lookup(k Key) (Definition, bool) {
	i, ok := r.byKey[k]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// ByName resolves a display name, alias or key spelling to a definition.
func (r *Registry) ByName(name string) (Definition, bool) {
	i, ok := r.byName[NormalizeName(name)]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Parse resolves a key or name and reports whether it is known.
func (r *Registry) Parse(s string) (Key, bool) {
	if d, ok := r.Lookup(Key(s)); ok {
		return d.Key, true
	}
	d, ok := r.ByName(s)
	return d.Key, ok
}

// Keys returns all keys in registry order.
func (r *Registry) Keys() []Key {
	out := make([]Key, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.Key
	}
	return out
}

// Definitions returns a copy of all definitions in registry order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Name returns the display name of k, or the key itself when unknown.
func (r *Registry) Name(k Key) string {
	if d, ok := r.Lookup(k); ok {
		return d.Name
	}
	return string(k)
}

// Names maps keys to display names, preserving order.
func (r *Registry) Names(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.Name(k)
	}
	return out
}

// HigherIsBetter reports the polarity of k. Unknown keys count as
// higher-is-better.
func (r *Registry) HigherIsBetter(k Key) bool {
	d, ok := r.Lookup(k)
	return !ok || d.HigherIsBetter()
}

// NormalizeName folds a name for matching: NFC, lower case, no whitespace.
// Source files mix composed and decomposed Hangul and inconsistent spacing
// ("10m 달리기" vs "10m달리기").
func NormalizeName(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

var defaultDefinitions = []Definition{
	{
		Key: StandingLongJump, Name: "제자리멀리뛰기", Unit: "cm",
		Polarity:   HigherIsBetter,
		Bounds:     Bounds{Min: 50, Max: 350},
		Normalizer: &Domain{Worst: 200, Best: 300},
	},
	{
		Key: VerticalJump, Name: "서전트점프(MD)", Unit: "cm",
		Polarity:   HigherIsBetter,
		Bounds:     Bounds{Min: 20, Max: 120},
		Normalizer: &Domain{Worst: 40, Best: 100},
		Aliases:    []string{"서전트점프"},
	},
	{
		Key: VerticalJumpTouch, Name: "서전트점프(터치)", Unit: "cm",
		Polarity: HigherIsBetter,
		Bounds:   Bounds{Min: 20, Max: 120},
	},
	{
		Key: GripStrength, Name: "배근력", Unit: "kg",
		Polarity:   HigherIsBetter,
		Bounds:     Bounds{Min: 20, Max: 300},
		Normalizer: &Domain{Worst: 40, Best: 120},
	},
	{
		Key: SitUp, Name: "윗몸일으키기", Unit: "회",
		Polarity: HigherIsBetter,
		Bounds:   Bounds{Min: 1, Max: 200},
		Integer:  true,
		Aliases:  []string{"싯업"},
	},
	{
		Key: FrontBend, Name: "앉아윗몸앞으로굽히기", Unit: "cm",
		Polarity: HigherIsBetter,
		Bounds:   Bounds{Min: -20, Max: 50},
		Aliases:  []string{"좌전굴"},
	},
	{
		Key: Dash10m, Name: "10m 달리기", Unit: "초",
		Polarity:   LowerIsBetter,
		Bounds:     Bounds{Min: 5, Max: 20},
		Sentinel:   20,
		Normalizer: &Domain{Worst: 12, Best: 8},
		Aliases:    []string{"10m왕복달리기"},
	},
	{
		Key: Dash20m, Name: "20m 달리기", Unit: "초",
		Polarity: LowerIsBetter,
		Bounds:   Bounds{Min: 10, Max: 30},
		Aliases:  []string{"20m왕복달리기"},
	},
	{
		Key: LongRun, Name: "오래달리기", Unit: "초",
		Polarity: LowerIsBetter,
		Bounds:   Bounds{Min: 100, Max: 1200},
	},
	{
		Key: MedicineBallThrow, Name: "메디신볼던지기", Unit: "m",
		Polarity: HigherIsBetter,
		Bounds:   Bounds{Min: 1, Max: 20},
	},
}

// Default returns the registry of the ten standard events.
func Default() *Registry {
	return NewRegistry(defaultDefinitions)
}
