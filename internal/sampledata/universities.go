package sampledata

import (
	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
	"github.com/okian/pecounsel/internal/domain/scoring"
)

// Names the loader reads the admissions configuration from.
const (
	UniversitiesFile = "universities.json"
	ScoringTableFile = "scoring_table.json"
)

// tableSteps is the number of intervals in a generated scoring table.
const tableSteps = 10

// tableUniversity publishes official tables in the sample configuration.
const tableUniversity = "한국체육대학교"

// SampleUniversities returns a small admissions configuration covering a
// scoring-table university, explicit requirements and the static fallbacks.
func SampleUniversities() []model.University {
	return []model.University{
		{
			Name: tableUniversity, Region: "서울",
			AvgScore: 420, ExpectedScore: 480, SafeScore: 540,
			Recruitment: map[string]int{"2024": 120, "2025": 118},
			Competition: map[string]float64{"2024": 6.2, "2025": 7.1},
		},
		{
			Name: "용인대학교 체육학과", Region: "경기",
			AvgScore: 320, ExpectedScore: 350, SafeScore: 380,
			Recruitment: map[string]int{"2025": 40},
			Competition: map[string]float64{"2025": 9.4},
			Required: map[model.Gender][]event.Key{
				model.Male:   {event.StandingLongJump, event.GripStrength, event.Dash10m},
				model.Female: {event.StandingLongJump, event.Dash10m},
			},
		},
		{
			Name: "가천대 체육", Region: "경기",
			AvgScore: 300, ExpectedScore: 330, SafeScore: 360,
			Recruitment: map[string]int{"2024": 30, "2025": 0},
		},
		{
			Name: "가톨릭관동대 체육교육", Region: "강원",
			AvgScore: 270, ExpectedScore: 300, SafeScore: 330,
		},
	}
}

// SampleScoringTables publishes linear tables for the scoring-table
// university, derived from each event's normalisation domain.
func SampleScoringTables() scoring.RawTables {
	reg := event.Default()
	keys := []event.Key{event.StandingLongJump, event.GripStrength, event.Dash10m}
	genders := map[string]model.Gender{"남": model.Male, "여": model.Female}

	byGender := make(map[string]map[string][]model.ScoringEntry, len(genders))
	for label, g := range genders {
		events := make(map[string][]model.ScoringEntry, len(keys))
		for _, k := range keys {
			def, _ := reg.Lookup(k)
			events[def.Name] = linearTable(def, g)
		}
		byGender[label] = events
	}
	return scoring.RawTables{Universities: map[string]map[string]map[string][]model.ScoringEntry{
		tableUniversity: byGender,
	}}
}

// linearTable spans the event's domain, scaled to g's mean relative to the
// male mean, in tableSteps equal steps from 0 to 100 points.
func linearTable(def event.Definition, g model.Gender) []model.ScoringEntry {
	scale := performance[def.Key][g].mean / performance[def.Key][model.Male].mean
	worst, best := def.Normalizer.Worst*scale, def.Normalizer.Best*scale
	rows := make([]model.ScoringEntry, 0, tableSteps+1)
	for i := 0; i <= tableSteps; i++ {
		f := float64(i) / tableSteps
		places := defaultDecimals
		if def.Polarity == event.LowerIsBetter {
			places = dashDecimals
		}
		rows = append(rows, model.ScoringEntry{
			Record: round(worst+(best-worst)*f, places),
			Score:  100 * f,
		})
	}
	return rows
}
