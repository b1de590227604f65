package client

import (
	"bytes"
	"testing"

	"github.com/mwantia/tomodb/pkg/catalog/filter"
	"github.com/stretchr/testify/assert"
)

func TestFilterFlags_Spec(t *testing.T) {
	flags := filterFlags{
		query:    "motor",
		organism: "Vibrio cholerae",
		start:    "20240101",
		tags:     []string{" .mrc", ".rec", ".mrc"},
	}

	var warn bytes.Buffer
	spec := flags.spec(&warn)
	assert.Empty(t, warn.String())
	assert.Equal(t, "motor", spec.Text)
	assert.Equal(t, "Vibrio cholerae", spec.Categories[filter.FieldOrganism])
	assert.Equal(t, "2024-01-01", spec.DateRange.Start)
	assert.Equal(t, []string{".mrc", ".rec"}, spec.Tags)
}

func TestFilterFlags_IncompleteDatesAreNotConstraints(t *testing.T) {
	var warn bytes.Buffer
	spec := (&filterFlags{start: "2023-05", end: "2023-13-40"}).spec(&warn)

	assert.Equal(t, filter.DateRange{Start: "2023-05", End: "2023-13-40"}, spec.DateRange)
	assert.False(t, spec.Active())
	assert.Contains(t, warn.String(), "--start")
	assert.Contains(t, warn.String(), "--end")

	warn.Reset()
	spec = (&filterFlags{start: "2023-05-01-02", organism: "Vibrio cholerae"}).spec(&warn)
	assert.Empty(t, spec.DateRange.Start)
	assert.True(t, spec.Active())
	assert.Contains(t, warn.String(), "is not a date")
}

func TestMerge(t *testing.T) {
	base := filter.Spec{}.
		WithCategory(filter.FieldOrganism, "Escherichia coli").
		WithDateRange("2024-01-01", "2024-12-31").
		WithTags(".mrc")
	override := filter.Spec{}.
		WithText("array").
		WithDateRange("", "2024-06-30")

	got := merge(base, override)
	assert.Equal(t, "array", got.Text)
	assert.Equal(t, "Escherichia coli", got.Categories[filter.FieldOrganism])
	assert.Equal(t, filter.DateRange{Start: "2024-01-01", End: "2024-06-30"}, got.DateRange)
	assert.Equal(t, []string{".mrc"}, got.Tags)
	assert.Empty(t, base.Text, "base is not modified")
}
