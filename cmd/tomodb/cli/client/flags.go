package client

import (
	"fmt"
	"io"

	"github.com/mwantia/tomodb/pkg/catalog/filter"
	"github.com/mwantia/tomodb/pkg/dataset"
	"github.com/spf13/cobra"
)

// filterFlags are the filter dimensions shared by listing and saving.
type filterFlags struct {
	query      string
	organism   string
	instrument string
	start      string
	end        string
	tags       []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "case-insensitive text matched against title and description")
	cmd.Flags().StringVar(&f.organism, "organism", "", "exact organism")
	cmd.Flags().StringVar(&f.instrument, "microscope", "", "exact microscope")
	cmd.Flags().StringVar(&f.start, "start", "", "earliest creation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "latest creation date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "file types, matches datasets having any of them (e.g. .mrc,.rec)")
}

// spec builds the filter. Date bounds that are not yet a complete
// YYYY-MM-DD date are kept but do not constrain the result; a notice is
// written to warn for each of them.
func (f *filterFlags) spec(warn io.Writer) filter.Spec {
	return filter.Spec{}.
		WithText(f.query).
		WithCategory(filter.FieldOrganism, f.organism).
		WithCategory(filter.FieldInstrument, f.instrument).
		WithDateRange(dateFlag(warn, "start", f.start), dateFlag(warn, "end", f.end)).
		WithTags(dataset.NormalizeList(f.tags)...)
}

func dateFlag(warn io.Writer, name, raw string) string {
	if raw == "" {
		return ""
	}

	normalized, ok := filter.NormalizeDateInput(raw)
	if !ok {
		fmt.Fprintf(warn, "Ignoring --%s: %q is not a date\n", name, raw)
		return ""
	}
	if _, ok := filter.CompleteDate(normalized); !ok {
		fmt.Fprintf(warn, "Ignoring --%s: %q is not a complete YYYY-MM-DD date yet\n", name, normalized)
	}
	return normalized
}
