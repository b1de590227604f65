package filter

import "github.com/mwantia/tomodb/pkg/dataset"

// Options are the distinct values offered by the categorical and tag controls.
type Options struct {
	Organisms   []string `json:"organisms"   yaml:"organisms"`
	Instruments []string `json:"instruments" yaml:"instruments"`
	Tags        []string `json:"file_types"  yaml:"file_types"`
}

// CollectOptions gathers distinct non-empty values in order of first appearance.
func CollectOptions(records []dataset.Record) Options {
	var organisms, instruments, tags []string
	for _, r := range records {
		organisms = append(organisms, r.Organism)
		instruments = append(instruments, r.Instrument)
		tags = append(tags, r.Tags...)
	}

	return Options{
		Organisms:   dataset.NormalizeList(organisms),
		Instruments: dataset.NormalizeList(instruments),
		Tags:        dataset.NormalizeList(tags),
	}
}
