package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_WithHelpersDoNotMutate(t *testing.T) {
	base := Spec{}.WithCategory(FieldOrganism, "Vibrio cholerae").WithTags(".mrc")

	changed := base.
		WithCategory(FieldInstrument, "Titan Krios 300kV").
		ToggleTag(".mp4").
		WithText("cell")

	assert.Equal(t, map[Field]string{FieldOrganism: "Vibrio cholerae"}, base.Categories)
	assert.Equal(t, []string{".mrc"}, base.Tags)
	assert.Empty(t, base.Text)

	assert.Equal(t, "Titan Krios 300kV", changed.Categories[FieldInstrument])
	assert.Equal(t, []string{".mrc", ".mp4"}, changed.Tags)
}

func TestSpec_ToggleTag(t *testing.T) {
	s := Spec{}.ToggleTag(".mrc").ToggleTag(".tif").ToggleTag(".mrc")
	assert.Equal(t, []string{".tif"}, s.Tags)
}

func TestSpec_Active(t *testing.T) {
	assert.False(t, Spec{}.Active())
	assert.False(t, Spec{}.WithDateRange("2023-05", "").Active())
	assert.False(t, Spec{Categories: map[Field]string{FieldOrganism: ""}}.Active())
	assert.True(t, Spec{}.WithDateRange("2023-05-01", "").Active())
	assert.True(t, Spec{Text: "x"}.Active())
	assert.False(t, Spec{Text: "x"}.Clear().Active())
}

func TestParseField(t *testing.T) {
	f, ok := ParseField("Species")
	require.True(t, ok)
	assert.Equal(t, FieldOrganism, f)

	f, ok = ParseField("microscope")
	require.True(t, ok)
	assert.Equal(t, FieldInstrument, f)

	_, ok = ParseField("strain")
	assert.False(t, ok)
}

func TestCompleteDate(t *testing.T) {
	_, ok := CompleteDate("2023-05-15")
	assert.True(t, ok)

	for _, s := range []string{"", "2023", "2023-05", "2023-5-15", "2023-13-40", "2023-02-29", "2023-05-15T00:00"} {
		_, ok := CompleteDate(s)
		assert.False(t, ok, "CompleteDate(%q)", s)
	}

	_, ok = CompleteDate("2024-02-29")
	assert.True(t, ok, "leap day")
}

func TestNormalizeDateInput(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"", "", true},
		{"2023", "2023", true},
		{"20230", "2023-0", true},
		{"202305", "2023-05", true},
		{"2023051", "2023-05-1", true},
		{"20230515", "2023-05-15", true},
		{"2023-05-15", "2023-05-15", true},
		{"2023-", "2023-", true},
		{"2023-05-", "2023-05-", true},
		{"2023/05/15", "2023-05-15", true},
		{"abc2023", "2023", true},
		{"202305150", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeDateInput(tt.input)
		assert.Equal(t, tt.ok, ok, "NormalizeDateInput(%q) ok", tt.input)
		assert.Equal(t, tt.want, got, "NormalizeDateInput(%q)", tt.input)
	}
}

func TestFromQuery(t *testing.T) {
	values := url.Values{
		"q":          {"cell"},
		"species":    {"Vibrio cholerae"},
		"microscope": {""},
		"start":      {"2023-01-01"},
		"end":        {" 2023-12-31 "},
		"tags":       {".mrc,.mp4", ".mrc"},
		"unknown":    {"ignored"},
	}

	spec := FromQuery(values)
	assert.Equal(t, "cell", spec.Text)
	assert.Equal(t, map[Field]string{FieldOrganism: "Vibrio cholerae"}, spec.Categories)
	assert.Equal(t, DateRange{Start: "2023-01-01", End: "2023-12-31"}, spec.DateRange)
	assert.Equal(t, []string{".mrc", ".mp4"}, spec.Tags)
}

func TestFromQuery_CanonicalNameWins(t *testing.T) {
	values := url.Values{
		"species":         {"Escherichia coli"},
		"organism":        {"Vibrio cholerae"},
		"microscope_type": {"FEI Polara 300kV"},
		"microscope":      {"Titan Krios 300kV"},
	}

	for range 20 {
		spec := FromQuery(values)
		assert.Equal(t, map[Field]string{
			FieldOrganism:   "Vibrio cholerae",
			FieldInstrument: "Titan Krios 300kV",
		}, spec.Categories)
	}
}

func TestSpec_EncodeParseQuery(t *testing.T) {
	spec := Spec{}.
		WithText("flagellar motor").
		WithCategory(FieldInstrument, "Titan Krios 300kV").
		WithDateRange("2023-01-01", "").
		WithTags(".mrc", ".tif")

	decoded, err := ParseQuery(spec.Encode())
	require.NoError(t, err)
	assert.Equal(t, spec, decoded)

	_, err = ParseQuery("%zz")
	assert.Error(t, err)
}

func TestCollectOptions(t *testing.T) {
	opts := CollectOptions(sampleRecords())

	assert.Equal(t, []string{"Vibrio cholerae", "Caulobacter crescentus", "Haloferax volcanii"}, opts.Organisms)
	assert.Equal(t, []string{"FEI Polara 300kV", "Titan Krios 300kV"}, opts.Instruments)
	assert.Equal(t, []string{".mrc", ".rec", ".mod", ".tif", ".mp4", ".star"}, opts.Tags)
	assert.Empty(t, CollectOptions(nil).Organisms)
}
