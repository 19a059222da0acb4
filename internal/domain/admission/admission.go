// Package admission classifies universities by admission likelihood for one
// student and orders them for counseling.
package admission

import (
	"sort"

	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/internal/domain/scoring"
)

// Tier is an admission-likelihood band. Lower values are safer.
type Tier int

const (
	Safe Tier = iota
	Expected
	Average
	Reach
)

var tierLabels = map[Tier]string{
	Safe:     "안정",
	Expected: "기대",
	Average:  "보통",
	Reach:    "도전",
}

var tierCodes = map[Tier]string{
	Safe:     "safe",
	Expected: "expected",
	Average:  "average",
	Reach:    "reach",
}

// Label returns the Korean label shown to students.
func (t Tier) Label() string { return tierLabels[t] }

// String implements fmt.Stringer.
func (t Tier) String() string { return tierCodes[t] }

// MarshalText encodes the code form.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Classify compares total against u's thresholds in order safe, expected,
// average. Unset thresholds are 0.
func Classify(total float64, u model.University) Tier {
	switch {
	case total >= u.SafeScore:
		return Safe
	case total >= u.ExpectedScore:
		return Expected
	case total >= u.AvgScore:
		return Average
	default:
		return Reach
	}
}

// Assessment is one university row of a counseling report.
type Assessment struct {
	Region          string         `json:"region"`
	Name            string         `json:"name"`
	AcademicScore   float64        `json:"academic_score"`
	AthleticScore   float64        `json:"athletic_score"`
	TotalScore      float64        `json:"total_score"`
	ScoreDiff       float64        `json:"score_diff"`
	Method          scoring.Method `json:"method"`
	Tier            Tier           `json:"tier"`
	TierLabel       string         `json:"tier_label"`
	AvgScore        float64        `json:"avg_score"`
	SafeScore       float64        `json:"safe_score"`
	ExpectedScore   float64        `json:"expected_score"`
	RecruitmentYear string         `json:"recruitment_year,omitempty"`
	Recruitment     int            `json:"recruitment,omitempty"`
	CompetitionYear string         `json:"competition_year,omitempty"`
	Competition     float64        `json:"competition,omitempty"`
	Eligible        bool           `json:"eligible"`
	Required        []event.Key    `json:"required"`
	Matched         []event.Key    `json:"matched"`
	Missing         []event.Key    `json:"missing"`
	RequiredNames   []string       `json:"required_names"`
	MatchedNames    []string       `json:"matched_names"`
	MissingNames    []string       `json:"missing_names"`
}

// Report holds both presentation sets, each sorted by tier then total.
type Report struct {
	Student  string       `json:"student"`
	Gender   model.Gender `json:"gender"`
	Academic float64      `json:"academic_score"`
	Events   []event.Key  `json:"events"`
	Eligible []Assessment `json:"eligible"`
	All      []Assessment `json:"all"`
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithUniversities sets the universities to assess.
func WithUniversities(us []model.University) Option {
	return func(e *Engine) {
		e.universities = make([]model.University, len(us))
		copy(e.universities, us)
	}
}

// WithFallback replaces the static required-event mapping used for
// universities without a scoring table.
func WithFallback(m map[string]map[model.Gender][]event.Key) Option {
	return func(e *Engine) {
		if m != nil {
			e.fallback = m
		}
	}
}

// Engine evaluates a student profile against the configured universities.
// It holds no session state and is safe for concurrent use.
type Engine struct {
	registry     *event.Registry
	converter    *scoring.Converter
	universities []model.University
	fallback     map[string]map[model.Gender][]event.Key
}

// DefaultFallback returns the built-in required events for universities
// whose tables are not published.
func DefaultFallback() map[string]map[model.Gender][]event.Key {
	jumpOnly := map[model.Gender][]event.Key{
		model.Male:   {event.StandingLongJump},
		model.Female: {event.StandingLongJump},
	}
	m := make(map[string]map[model.Gender][]event.Key)
	m["가천대 체육"] = jumpOnly
	m["가톨릭관동대 체육교육"] = jumpOnly
	return m
}

// NewEngine creates an engine scoring through conv.
func NewEngine(reg *event.Registry, conv *scoring.Converter, opts ...Option) *Engine {
	e := &Engine{
		registry:  reg,
		converter: conv,
		fallback:  DefaultFallback(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Universities returns the configured universities.
func (e *Engine) Universities() []model.University {
	out := make([]model.University, len(e.universities))
	copy(out, e.universities)
	return out
}

// RequiredEvents resolves the events u requires from gender g: the events of
// its scoring table, else its configured list, else the static mapping, else
// every known event.
func (e *Engine) RequiredEvents(u model.University, g model.Gender) []event.Key {
	if keys := e.converter.Tables().Events(u.Name, g); len(keys) > 0 {
		return keys
	}
	if keys := u.Required[g]; len(keys) > 0 {
		return e.ordered(keys)
	}
	if keys := e.fallback[u.Name][g]; len(keys) > 0 {
		return e.ordered(keys)
	}
	return e.registry.Keys()
}

// ordered returns the distinct keys in registry order, unknown keys last.
func (e *Engine) ordered(keys []event.Key) []event.Key {
	want := make(map[event.Key]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}
	out := make([]event.Key, 0, len(want))
	for _, k := range e.registry.Keys() {
		if want[k] {
			out = append(out, k)
			delete(want, k)
		}
	}
	rest := make([]event.Key, 0, len(want))
	for k := range want {
		rest = append(rest, k)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

// Assess scores one university for p. p must already be complete.
func (e *Engine) Assess(u model.University, p model.StudentProfile) Assessment {
	var academic float64
	if p.AcademicScore != nil {
		academic = *p.AcademicScore
	}
	res := e.converter.ScoreForUniversity(u.Name, p.Gender, p.SportsScores)
	total := academic + res.Score
	tier := Classify(total, u)

	required := e.RequiredEvents(u, p.Gender)
	matched := make([]event.Key, 0, len(required))
	missing := make([]event.Key, 0, len(required))
	for _, k := range required {
		if _, ok := p.SportsScores[k]; ok {
			matched = append(matched, k)
		} else {
			missing = append(missing, k)
		}
	}

	a := Assessment{
		Region:        u.Region,
		Name:          u.Name,
		AcademicScore: academic,
		AthleticScore: res.Score,
		TotalScore:    total,
		ScoreDiff:     total - u.AvgScore,
		Method:        res.Method,
		Tier:          tier,
		TierLabel:     tier.Label(),
		AvgScore:      u.AvgScore,
		SafeScore:     u.SafeScore,
		ExpectedScore: u.ExpectedScore,
		Eligible:      len(missing) == 0,
		Required:      required,
		Matched:       matched,
		Missing:       missing,
		RequiredNames: e.registry.Names(required),
		MatchedNames:  e.registry.Names(matched),
		MissingNames:  e.registry.Names(missing),
	}
	a.RecruitmentYear, a.Recruitment, _ = u.LatestRecruitment()
	a.CompetitionYear, a.Competition, _ = u.LatestCompetition()
	return a
}

// Evaluate assesses every university for p and returns both sorted sets.
// An incomplete profile yields an *IncompleteProfileError; a profile without
// events yields ErrNoEvents.
func (e *Engine) Evaluate(p model.StudentProfile) (Report, error) {
	if missing := p.Missing(); len(missing) > 0 {
		return Report{}, &IncompleteProfileError{Missing: missing}
	}
	if len(p.SportsScores) == 0 {
		return Report{}, ErrNoEvents
	}

	r := Report{
		Student:  p.Name,
		Gender:   p.Gender,
		Academic: *p.AcademicScore,
		Events:   p.SubmittedEvents(),
		Eligible: make([]Assessment, 0, len(e.universities)),
		All:      make([]Assessment, 0, len(e.universities)),
	}
	for _, u := range e.universities {
		a := e.Assess(u, p)
		r.All = append(r.All, a)
		if a.Eligible {
			r.Eligible = append(r.Eligible, a)
		}
	}
	Sort(r.Eligible)
	Sort(r.All)
	return r, nil
}

// Sort orders assessments by tier (safe first), then total score
// descending, then name.
func Sort(as []Assessment) {
	sort.SliceStable(as, func(i, j int) bool {
		a, b := as[i], as[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		return a.Name < b.Name
	})
}
