// Package dataset turns raw regional test sheets into athletic records.
//
// Every region publishes its own spreadsheet export with its own column
// names, so each region carries a fixed column table mapping event keys to
// the column holding that event.
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
)

// genderColumns are tried in order; the first non-empty value wins.
var genderColumns = []string{"성별", "gender", "Gender"}

// Region describes one regional dataset.
type Region struct {
	Code    string               `json:"code"`
	Name    string               `json:"name"`
	Columns map[event.Key]string `json:"columns"`
}

var defaultRegions = []Region{
	{Code: "seoul", Name: "서울", Columns: map[event.Key]string{
		event.StandingLongJump:  "제자리멀리뛰기",
		event.SitUp:             "앉아윗몸앞으로굽히기",
		event.Dash10m:           "10m왕복달리기",
		event.VerticalJump:      "서전트점프",
		event.Dash20m:           "20m왕복달리기",
		event.GripStrength:      "배근력",
		event.MedicineBallThrow: "메디신볼던지기",
	}},
	{Code: "inchoen", Name: "인천", Columns: map[event.Key]string{
		event.StandingLongJump:  "제자리멀리뛰기",
		event.SitUp:             "윗몸일으키기",
		event.Dash10m:           "10m 왕복달리기",
		event.GripStrength:      "배근력",
		event.MedicineBallThrow: "메디신볼던지기",
		event.FrontBend:         "좌전굴",
	}},
	{Code: "jeju", Name: "제주", Columns: map[event.Key]string{
		event.StandingLongJump: "제자리멀리뛰기",
		event.SitUp:            "윗몸일으키기",
		event.Dash20m:          "20m달리기",
		event.GripStrength:     "배근력",
	}},
	{Code: "chungnam", Name: "충남", Columns: map[event.Key]string{
		event.StandingLongJump:  "제자리멀리뛰기",
		event.VerticalJump:      "서전트점프",
		event.GripStrength:      "배근력",
		event.Dash10m:           "10M왕복달리기",
		event.MedicineBallThrow: "메디신볼던지기",
		event.SitUp:             "앉아윗몸앞으로굽히기",
	}},
	{Code: "chungbuk", Name: "충북", Columns: map[event.Key]string{
		event.StandingLongJump:  "제자리멀리뛰기",
		event.GripStrength:      "배근력",
		event.Dash10m:           "10m왕복달리기",
		event.MedicineBallThrow: "메디신볼던지기",
		event.SitUp:             "앉아윗몸앞으로굽히기",
	}},
	{Code: "deajeon", Name: "대전", Columns: map[event.Key]string{
		event.StandingLongJump:  "제자리멀리뛰기",
		event.SitUp:             "싯업",
		event.FrontBend:         "앉아윗몸앞으로굽히기",
		event.Dash10m:           "10M왕복달리기",
		event.MedicineBallThrow: "메디신볼던지기",
	}},
	{Code: "kwangju", Name: "광주", Columns: map[event.Key]string{
		event.Dash10m:           "10M 왕복 기록",
		event.StandingLongJump:  "제자리멀리뛰기 기록",
		event.GripStrength:      "배근력 기록",
		event.FrontBend:         "좌전굴 기록",
		event.MedicineBallThrow: "메디신볼던지기 기록",
	}},
}

// DefaultRegions returns the seven known regions in load order.
func DefaultRegions() []Region {
	out := make([]Region, len(defaultRegions))
	copy(out, defaultRegions)
	return out
}

// FindRegion returns the region with the given code.
func FindRegion(regions []Region, code string) (Region, error) {
	for _, r := range regions {
		if r.Code == code {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("%w: %q", ErrUnknownRegion, code)
}

// IngestReport counts what happened to a region's rows.
type IngestReport struct {
	Region      string `json:"region"`
	Rows        int    `json:"rows"`
	Kept        int    `json:"kept"`
	Discarded   int    `json:"discarded"`
	Malformed   int    `json:"malformed_values"`
	NonPositive int    `json:"non_positive_values"`
}

// Ingest converts decoded JSON rows into records. Values that are not
// numeric count as malformed and only that value is skipped; values ≤ 0 are
// dropped; rows left with no event are discarded. StudentID is the 1-based
// row position.
func Ingest(region Region, rows []any) ([]model.AthleticRecord, IngestReport) {
	rep := IngestReport{Region: region.Code, Rows: len(rows)}
	out := make([]model.AthleticRecord, 0, len(rows))
	for i, raw := range rows {
		row, ok := raw.(map[string]any)
		if !ok {
			rep.Discarded++
			continue
		}
		cols := indexColumns(row)
		rec := model.AthleticRecord{
			Region:    region.Code,
			StudentID: i + 1,
			Gender:    extractGender(row),
			Events:    make(map[event.Key]float64, len(region.Columns)),
		}
		for k, col := range region.Columns {
			v, present := lookup(row, cols, col)
			if !present {
				continue
			}
			f, err := parseValue(v)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				rep.Malformed++
				continue
			}
			if f <= 0 {
				rep.NonPositive++
				continue
			}
			rec.Events[k] = f
		}
		if len(rec.Events) == 0 {
			rep.Discarded++
			continue
		}
		out = append(out, rec)
	}
	rep.Kept = len(out)
	return out, rep
}

// indexColumns folds the row's column names so that spacing and case
// differences between exports still match.
func indexColumns(row map[string]any) map[string]string {
	idx := make(map[string]string, len(row))
	for name := range row {
		idx[event.NormalizeName(name)] = name
	}
	return idx
}

func lookup(row map[string]any, cols map[string]string, col string) (any, bool) {
	v, ok := row[col]
	if !ok {
		name, found := cols[event.NormalizeName(col)]
		if !found {
			return nil, false
		}
		v = row[name]
	}
	if v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func extractGender(row map[string]any) model.Gender {
	for _, col := range genderColumns {
		v, ok := row[col]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			continue
		}
		return model.ParseGender(s)
	}
	return model.Unknown
}

func parseValue(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	case int:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("unsupported value %T", v)
	}
}
