package filter

import (
	"strings"
	"time"

	"github.com/mwantia/tomodb/pkg/dataset"
)

// matcher is a Spec prepared for repeated evaluation.
type matcher struct {
	text       string
	categories map[Field]string
	start      *time.Time
	end        *time.Time
	tags       map[string]struct{}
}

func compile(spec Spec) matcher {
	m := matcher{
		text: strings.ToLower(spec.Text),
	}

	for field, value := range spec.Categories {
		if value == "" {
			continue
		}
		if m.categories == nil {
			m.categories = make(map[Field]string)
		}
		m.categories[field] = value
	}

	if t, ok := CompleteDate(spec.DateRange.Start); ok {
		m.start = &t
	}
	if t, ok := CompleteDate(spec.DateRange.End); ok {
		m.end = &t
	}

	if len(spec.Tags) > 0 {
		m.tags = make(map[string]struct{}, len(spec.Tags))
		for _, tag := range spec.Tags {
			m.tags[tag] = struct{}{}
		}
	}
	return m
}

// Apply returns the records matching every active dimension of spec, in their
// original order. The input slice is not modified.
func Apply(records []dataset.Record, spec Spec) []dataset.Record {
	m := compile(spec)

	out := make([]dataset.Record, 0, len(records))
	for i := range records {
		if m.match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Matches reports whether a single record satisfies spec.
func Matches(r dataset.Record, spec Spec) bool {
	m := compile(spec)
	return m.match(&r)
}

func (m *matcher) match(r *dataset.Record) bool {
	return m.matchText(r) &&
		m.matchCategories(r) &&
		m.matchDates(r) &&
		m.matchTags(r)
}

func (m *matcher) matchText(r *dataset.Record) bool {
	if m.text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), m.text) ||
		strings.Contains(strings.ToLower(r.Description), m.text)
}

func (m *matcher) matchCategories(r *dataset.Record) bool {
	for field, want := range m.categories {
		got, ok := fieldValue(r, field)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func fieldValue(r *dataset.Record, field Field) (string, bool) {
	switch field {
	case FieldOrganism:
		return r.Organism, true
	case FieldInstrument:
		return r.Instrument, true
	default:
		return "", false
	}
}

func (m *matcher) matchDates(r *dataset.Record) bool {
	if m.start == nil && m.end == nil {
		return true
	}
	if r.CreatedAt.IsZero() {
		return false
	}

	created := day(r.CreatedAt)
	if m.start != nil && created.Before(*m.start) {
		return false
	}
	if m.end != nil && created.After(*m.end) {
		return false
	}
	return true
}

func (m *matcher) matchTags(r *dataset.Record) bool {
	if len(m.tags) == 0 {
		return true
	}
	for _, tag := range r.Tags {
		if _, ok := m.tags[tag]; ok {
			return true
		}
	}
	return false
}
