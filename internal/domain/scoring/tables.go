package scoring

import (
	"sort"

	"github.com/okian/pecounsel/internal/domain/event"
	"github.com/okian/pecounsel/internal/domain/model"
)

// RawTables is the scoring table configuration as published:
// university → gender → event display name → rows.
type RawTables struct {
	Universities map[string]map[string]map[string][]model.ScoringEntry `json:"universities"`
}

// Unresolved names a table entry whose gender or event could not be mapped.
type Unresolved struct {
	University string `json:"university"`
	Gender     string `json:"gender"`
	Event      string `json:"event"`
}

// Tables indexes official scoring tables by university, gender and event.
type Tables struct {
	registry *event.Registry
	byUniv   map[string]map[model.Gender]map[event.Key][]model.ScoringEntry
}

// NewTables resolves raw's gender and event names through reg. Entries that
// do not resolve are skipped and returned for reporting.
func NewTables(reg *event.Registry, raw RawTables) (*Tables, []Unresolved) {
	t := &Tables{
		registry: reg,
		byUniv:   make(map[string]map[model.Gender]map[event.Key][]model.ScoringEntry, len(raw.Universities)),
	}
	var skipped []Unresolved
	for univ, genders := range raw.Universities {
		for gname, events := range genders {
			g := model.ParseGender(gname)
			if g == model.Unknown {
				for ename := range events {
					skipped = append(skipped, Unresolved{University: univ, Gender: gname, Event: ename})
				}
				continue
			}
			for ename, rows := range events {
				def, ok := reg.ByName(ename)
				if !ok {
					skipped = append(skipped, Unresolved{University: univ, Gender: gname, Event: ename})
					continue
				}
				t.put(univ, g, def.Key, rows)
			}
		}
	}
	sort.Slice(skipped, func(i, j int) bool {
		a, b := skipped[i], skipped[j]
		if a.University != b.University {
			return a.University < b.University
		}
		if a.Gender != b.Gender {
			return a.Gender < b.Gender
		}
		return a.Event < b.Event
	})
	return t, skipped
}

func (t *Tables) put(univ string, g model.Gender, k event.Key, rows []model.ScoringEntry) {
	genders, ok := t.byUniv[univ]
	if !ok {
		genders = make(map[model.Gender]map[event.Key][]model.ScoringEntry)
		t.byUniv[univ] = genders
	}
	events, ok := genders[g]
	if !ok {
		events = make(map[event.Key][]model.ScoringEntry)
		genders[g] = events
	}
	cp := make([]model.ScoringEntry, len(rows))
	copy(cp, rows)
	events[k] = cp
}

// Lookup returns the event tables of (univ, g). ok is false when the
// university publishes nothing for that gender.
func (t *Tables) Lookup(univ string, g model.Gender) (map[event.Key][]model.ScoringEntry, bool) {
	if t == nil {
		return nil, false
	}
	events := t.byUniv[univ][g]
	return events, len(events) > 0
}

// Events lists the events covered for (univ, g) in registry order.
func (t *Tables) Events(univ string, g model.Gender) []event.Key {
	events, ok := t.Lookup(univ, g)
	if !ok {
		return nil
	}
	out := make([]event.Key, 0, len(events))
	for _, k := range t.registry.Keys() {
		if _, ok := events[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Universities lists universities with at least one table, sorted.
func (t *Tables) Universities() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.byUniv))
	for u := range t.byUniv {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}
