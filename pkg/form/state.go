// Package form holds the add-dataset form: its state, validation, draft
// recovery and submission.
package form

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mwantia/tomodb/pkg/dataset"
)

// State is the editable content of the add-dataset form. Authors and
// cellular features are typed as delimited text and split on submission.
type State struct {
	Title       string `json:"title"       validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Species     string `json:"species"     validate:"notblank"`
	CellType    string `json:"cellType"`
	Strain      string `json:"strain"      validate:"notblank"`

	MicroscopeType      string  `json:"microscopeType"`
	AcceleratingVoltage int     `json:"acceleratingVoltage" validate:"min=100,max=400"`
	Magnification       int     `json:"magnification"       validate:"min=1000,max=100000"`
	PixelSize           float64 `json:"pixelSize"           validate:"min=0.1,max=10"`
	TiltRange           string  `json:"tiltRange"`

	PreparationMethod      string `json:"preparationMethod"`
	ContrastMethod         string `json:"contrastMethod"`
	FiducialType           string `json:"fiducialType"`
	ReconstructionSoftware string `json:"reconstructionSoftware"`
	Binning                int    `json:"binning"        validate:"min=1,max=8"`
	Reconstruction         string `json:"reconstruction"`
	Alignment              string `json:"alignment"`

	DatasetSize      string   `json:"datasetSize"      validate:"datasetsize"`
	FileTypes        []string `json:"fileTypes"        validate:"min=1"`
	Authors          string   `json:"authors"`
	PublicationDate  string   `json:"publicationDate"`
	Lab              string   `json:"lab"`
	CellularFeatures string   `json:"cellularFeatures"`
}

// NewState returns a blank form with the usual acquisition defaults.
func NewState(now time.Time) State {
	return State{
		CellType:               "Bacterial cell",
		MicroscopeType:         dataset.DefaultInstrument,
		AcceleratingVoltage:    dataset.DefaultAccelerationVoltage,
		Magnification:          dataset.DefaultMagnification,
		PixelSize:              dataset.DefaultPixelSize,
		TiltRange:              dataset.DefaultTiltSeriesRange,
		PreparationMethod:      dataset.DefaultSamplePreparation,
		ContrastMethod:         dataset.DefaultStaining,
		FiducialType:           "10nm gold beads",
		ReconstructionSoftware: dataset.DefaultReconstructionSoftware,
		Binning:                dataset.DefaultBinning,
		Reconstruction:         dataset.DefaultReconstructionMethod,
		Alignment:              "fiducial-based",
		FileTypes:              dataset.DefaultTags(),
		PublicationDate:        now.Format("2006-01-02"),
		Lab:                    "UChicago Research Laboratory",
	}
}

// Set assigns a field by its JSON name. Numeric fields must parse.
func (s *State) Set(field, value string) error {
	switch field {
	case "title":
		s.Title = value
	case "description":
		s.Description = value
	case "species":
		s.Species = value
	case "cellType":
		s.CellType = value
	case "strain":
		s.Strain = value
	case "microscopeType":
		s.MicroscopeType = value
	case "acceleratingVoltage":
		return setInt(&s.AcceleratingVoltage, field, value)
	case "magnification":
		return setInt(&s.Magnification, field, value)
	case "pixelSize":
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", field, err)
		}
		s.PixelSize = v
	case "tiltRange":
		s.TiltRange = value
	case "preparationMethod":
		s.PreparationMethod = value
	case "contrastMethod":
		s.ContrastMethod = value
	case "fiducialType":
		s.FiducialType = value
	case "reconstructionSoftware":
		s.ReconstructionSoftware = value
	case "binning":
		return setInt(&s.Binning, field, value)
	case "reconstruction":
		s.Reconstruction = value
	case "alignment":
		s.Alignment = value
	case "datasetSize":
		s.DatasetSize = value
	case "fileTypes":
		s.FileTypes = dataset.SplitList(value)
	case "authors":
		s.Authors = value
	case "publicationDate":
		s.PublicationDate = value
	case "lab":
		s.Lab = value
	case "cellularFeatures":
		s.CellularFeatures = value
	default:
		return fmt.Errorf("unknown form field %q", field)
	}
	return nil
}

func setInt(dst *int, field, value string) error {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%s must be a whole number: %w", field, err)
	}
	*dst = v
	return nil
}

// ToggleFileType checks or unchecks a file type.
func (s *State) ToggleFileType(fileType string) {
	if i := slices.Index(s.FileTypes, fileType); i >= 0 {
		s.FileTypes = slices.Delete(slices.Clone(s.FileTypes), i, i+1)
		return
	}
	s.FileTypes = append(slices.Clone(s.FileTypes), fileType)
}

// Record converts the form into a catalog record without an identifier.
func (s State) Record() dataset.Record {
	return dataset.Record{
		Title:                  strings.TrimSpace(s.Title),
		Description:            strings.TrimSpace(s.Description),
		Organism:               strings.TrimSpace(s.Species),
		Strain:                 strings.TrimSpace(s.Strain),
		CellularComponent:      s.CellType,
		Keywords:               dataset.SplitList(s.CellularFeatures),
		Instrument:             s.MicroscopeType,
		AccelerationVoltage:    s.AcceleratingVoltage,
		Magnification:          s.Magnification,
		PixelSize:              s.PixelSize,
		TiltSeriesRange:        s.TiltRange,
		SamplePreparation:      s.PreparationMethod,
		Staining:               s.ContrastMethod,
		ReconstructionSoftware: s.ReconstructionSoftware,
		ReconstructionMethod:   s.Reconstruction,
		FiducialType:           s.FiducialType,
		AlignmentMethod:        s.Alignment,
		Binning:                s.Binning,
		DatasetSize:            strings.TrimSpace(s.DatasetSize),
		Tags:                   dataset.NormalizeList(s.FileTypes),
		Authors:                dataset.SplitList(s.Authors),
		Lab:                    s.Lab,
		PublicationDate:        s.PublicationDate,
	}
}
