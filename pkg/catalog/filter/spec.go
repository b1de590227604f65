// Package filter narrows an in-memory list of dataset records by free text,
// categorical fields, a creation date range and file types.
package filter

import (
	"maps"
	"slices"
	"strings"
)

// Field names a categorical record attribute that can be matched exactly.
type Field string

const (
	FieldOrganism   Field = "organism"
	FieldInstrument Field = "instrument"
)

// Fields lists the supported categorical fields.
func Fields() []Field {
	return []Field{FieldOrganism, FieldInstrument}
}

// ParseField resolves a field name or one of its aliases.
func ParseField(name string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "organism", "species":
		return FieldOrganism, true
	case "instrument", "microscope", "microscope_type":
		return FieldInstrument, true
	default:
		return "", false
	}
}

// DateRange bounds the creation date. Each side is a YYYY-MM-DD string and is
// ignored until it is a complete calendar date.
type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end"   yaml:"end"`
}

// Spec is a filter request. The zero value matches every record.
//
// A Spec is treated as a value: the With* helpers return modified copies and
// leave the receiver untouched.
type Spec struct {
	Text       string           `json:"text"       yaml:"text"`
	Categories map[Field]string `json:"categories" yaml:"categories"`
	DateRange  DateRange        `json:"date_range" yaml:"date_range"`
	Tags       []string         `json:"tags"       yaml:"tags"`
}

func (s Spec) clone() Spec {
	s.Categories = maps.Clone(s.Categories)
	s.Tags = slices.Clone(s.Tags)
	return s
}

func (s Spec) WithText(text string) Spec {
	c := s.clone()
	c.Text = text
	return c
}

// WithCategory sets the exact value required for field. An empty value
// removes the constraint.
func (s Spec) WithCategory(field Field, value string) Spec {
	c := s.clone()
	if value == "" {
		delete(c.Categories, field)
		return c
	}
	if c.Categories == nil {
		c.Categories = make(map[Field]string)
	}
	c.Categories[field] = value
	return c
}

func (s Spec) WithDateRange(start, end string) Spec {
	c := s.clone()
	c.DateRange = DateRange{Start: start, End: end}
	return c
}

func (s Spec) WithTags(tags ...string) Spec {
	c := s.clone()
	c.Tags = slices.Clone(tags)
	return c
}

// ToggleTag adds tag to the selection, or removes it when already selected.
func (s Spec) ToggleTag(tag string) Spec {
	c := s.clone()
	if i := slices.Index(c.Tags, tag); i >= 0 {
		c.Tags = slices.Delete(c.Tags, i, i+1)
		return c
	}
	c.Tags = append(c.Tags, tag)
	return c
}

// Clear returns a Spec with every dimension inactive.
func (s Spec) Clear() Spec {
	return Spec{}
}

// Active reports whether at least one dimension constrains the result.
func (s Spec) Active() bool {
	if s.Text != "" || len(s.Tags) > 0 {
		return true
	}
	for _, v := range s.Categories {
		if v != "" {
			return true
		}
	}
	if _, ok := CompleteDate(s.DateRange.Start); ok {
		return true
	}
	_, ok := CompleteDate(s.DateRange.End)
	return ok
}
