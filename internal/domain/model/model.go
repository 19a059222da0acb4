// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/pecounsel/internal/domain/event"
)

// Gender of a test taker or a scoring table partition.
type Gender int

const (
	Unknown Gender = iota
	Male
	Female
)

// String returns the Korean label used by the source datasets.
func (g Gender) String() string {
	switch g {
	case Male:
		return "남"
	case Female:
		return "여"
	default:
		return "미상"
	}
}

// Code returns the configuration spelling ("male", "female", "unknown").
func (g Gender) Code() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	default:
		return "unknown"
	}
}

// ParseGender accepts the dataset and configuration spellings.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "남", "남자", "남성", "m", "male":
		return Male
	case "여", "여자", "여성", "f", "female":
		return Female
	default:
		return Unknown
	}
}

// MarshalJSON encodes the configuration spelling.
func (g Gender) MarshalJSON() ([]byte, error) { return json.Marshal(g.Code()) }

// UnmarshalJSON accepts any spelling ParseGender does.
func (g *Gender) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("gender: %w", err)
	}
	*g = ParseGender(s)
	return nil
}

// MarshalText lets Gender be used as a JSON map key.
func (g Gender) MarshalText() ([]byte, error) { return []byte(g.Code()), nil }

// UnmarshalText lets Gender be used as a JSON map key.
func (g *Gender) UnmarshalText(b []byte) error {
	*g = ParseGender(string(b))
	return nil
}

// GenderFilter selects a population partition.
type GenderFilter string

const (
	FilterAll    GenderFilter = "all"
	FilterMale   GenderFilter = "male"
	FilterFemale GenderFilter = "female"
)

// ParseGenderFilter maps "", "all" and "전체" to FilterAll.
func ParseGenderFilter(s string) (GenderFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "전체":
		return FilterAll, true
	}
	switch ParseGender(s) {
	case Male:
		return FilterMale, true
	case Female:
		return FilterFemale, true
	}
	return "", false
}

// FilterFor returns the single-gender filter of g.
func FilterFor(g Gender) GenderFilter {
	switch g {
	case Male:
		return FilterMale
	case Female:
		return FilterFemale
	default:
		return FilterAll
	}
}

// Match reports whether a record of gender g belongs to the partition.
func (f GenderFilter) Match(g Gender) bool {
	switch f {
	case FilterMale:
		return g == Male
	case FilterFemale:
		return g == Female
	default:
		return true
	}
}

// AthleticRecord is one row of a regional dataset. Immutable once ingested.
type AthleticRecord struct {
	Region    string                `json:"region"`
	StudentID int                   `json:"student_id"`
	Gender    Gender                `json:"gender"`
	Events    map[event.Key]float64 `json:"events"`
}

// ScoringEntry maps a raw record to awarded points.
type ScoringEntry struct {
	Record float64 `json:"record"`
	Score  float64 `json:"score"`
}

// University is read-only configuration for one admissions track.
type University struct {
	Name          string                 `json:"name"`
	Region        string                 `json:"region"`
	AvgScore      float64                `json:"avg_score"`
	SafeScore     float64                `json:"safe_score"`
	ExpectedScore float64                `json:"expected_score"`
	Recruitment   map[string]int         `json:"recruitment,omitempty"`
	Competition   map[string]float64     `json:"competition,omitempty"`
	Required      map[Gender][]event.Key `json:"required_events,omitempty"`
}

// LatestRecruitment returns the quota of the most recent year on file.
func (u University) LatestRecruitment() (year string, quota int, ok bool) {
	year, ok = latestYear(u.Recruitment)
	if ok {
		quota = u.Recruitment[year]
	}
	return year, quota, ok
}

// LatestCompetition returns the competition ratio of the most recent year.
func (u University) LatestCompetition() (year string, ratio float64, ok bool) {
	year, ok = latestYear(u.Competition)
	if ok {
		ratio = u.Competition[year]
	}
	return year, ratio, ok
}

func latestYear[V int | float64](m map[string]V) (string, bool) {
	years := make([]string, 0, len(m))
	for y, v := range m {
		if v != 0 {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return "", false
	}
	sort.Strings(years)
	return years[len(years)-1], true
}

// StudentProfile is the single counseling session's student.
type StudentProfile struct {
	Name          string                `json:"name"`
	Gender        Gender                `json:"gender"`
	AcademicScore *float64              `json:"academicScore"`
	SportsScores  map[event.Key]float64 `json:"sportsScores"`
}

// Missing lists the profile fields counseling still needs.
func (p StudentProfile) Missing() []string {
	var out []string
	if strings.TrimSpace(p.Name) == "" {
		out = append(out, "name")
	}
	if p.Gender == Unknown {
		out = append(out, "gender")
	}
	if p.AcademicScore == nil || *p.AcademicScore <= 0 {
		out = append(out, "academic_score")
	}
	return out
}

// SubmittedEvents returns the keys with a recorded value, sorted.
func (p StudentProfile) SubmittedEvents() []event.Key {
	out := make([]event.Key, 0, len(p.SportsScores))
	for k := range p.SportsScores {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
