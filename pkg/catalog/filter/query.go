package filter

import (
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/mwantia/tomodb/pkg/dataset"
)

// Query parameter names shared by the HTTP API and saved filters.
const (
	ParamText  = "q"
	ParamStart = "start"
	ParamEnd   = "end"
	ParamTags  = "tags"
)

// ParseTags splits a comma separated tag selection.
func ParseTags(csv string) []string {
	return dataset.SplitList(csv)
}

// FromQuery builds a Spec from URL query values. Category fields accept their
// aliases ("species", "microscope"); when both are present the canonical name
// wins, then the alphabetically first alias. Repeated tags parameters are
// merged.
func FromQuery(values url.Values) Spec {
	spec := Spec{
		Text: values.Get(ParamText),
		DateRange: DateRange{
			Start: strings.TrimSpace(values.Get(ParamStart)),
			End:   strings.TrimSpace(values.Get(ParamEnd)),
		},
	}

	canonical := make(map[Field]bool)
	for _, key := range slices.Sorted(maps.Keys(values)) {
		field, ok := ParseField(key)
		if !ok || canonical[field] {
			continue
		}
		value := values.Get(key)
		if value == "" {
			continue
		}
		if key == string(field) {
			canonical[field] = true
		} else if spec.Categories[field] != "" {
			continue
		}
		spec = spec.WithCategory(field, value)
	}

	var tags []string
	for _, v := range values[ParamTags] {
		tags = append(tags, ParseTags(v)...)
	}
	spec.Tags = dataset.NormalizeList(tags)

	return spec
}

// ParseQuery decodes an encoded query string such as a saved filter.
func ParseQuery(raw string) (Spec, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Spec{}, err
	}
	return FromQuery(values), nil
}

// Encode renders the active parts of the Spec as a query string.
func (s Spec) Encode() string {
	values := url.Values{}
	if s.Text != "" {
		values.Set(ParamText, s.Text)
	}
	for field, value := range s.Categories {
		if value != "" {
			values.Set(string(field), value)
		}
	}
	if s.DateRange.Start != "" {
		values.Set(ParamStart, s.DateRange.Start)
	}
	if s.DateRange.End != "" {
		values.Set(ParamEnd, s.DateRange.End)
	}
	if len(s.Tags) > 0 {
		values.Set(ParamTags, strings.Join(s.Tags, ","))
	}
	return values.Encode()
}
