// Package dataset defines the catalog record for one tomography dataset and
// converts it to and from its storage and input representations.
package dataset

import (
	"fmt"
	"time"
)

// Record is one tomography dataset as seen by the catalog.
type Record struct {
	ID          string `json:"tomogram_id"           yaml:"tomogram_id"`
	Title       string `json:"title"                 yaml:"title"`
	Description string `json:"description"           yaml:"description"`

	Organism          string   `json:"organism"           yaml:"organism"`
	Strain            string   `json:"strain"             yaml:"strain"`
	CellularComponent string   `json:"cellular_component" yaml:"cellular_component"`
	MolecularFunction string   `json:"molecular_function" yaml:"molecular_function"`
	BiologicalProcess string   `json:"biological_process" yaml:"biological_process"`
	Keywords          []string `json:"keywords"           yaml:"keywords"`

	Instrument          string  `json:"microscope"           yaml:"microscope"`
	Detector            string  `json:"detector"             yaml:"detector"`
	AccelerationVoltage int     `json:"acceleration_voltage" yaml:"acceleration_voltage"`
	Magnification       int     `json:"magnification"        yaml:"magnification"`
	PixelSize           float64 `json:"pixel_size"           yaml:"pixel_size"`
	TiltSeriesRange     string  `json:"tilt_series_range"    yaml:"tilt_series_range"`

	SamplePreparation      string `json:"sample_preparation"      yaml:"sample_preparation"`
	Staining               string `json:"staining"                yaml:"staining"`
	ReconstructionSoftware string `json:"reconstruction_software" yaml:"reconstruction_software"`
	ReconstructionMethod   string `json:"reconstruction_method"   yaml:"reconstruction_method"`
	FiducialType           string `json:"fiducial_type"           yaml:"fiducial_type"`
	AlignmentMethod        string `json:"alignment_method"        yaml:"alignment_method"`
	Binning                int    `json:"binning"                 yaml:"binning"`

	DatasetSize string   `json:"dataset_size" yaml:"dataset_size"`
	Tags        []string `json:"file_types"   yaml:"file_types"`

	RawDataPath        string `json:"raw_data_path"       yaml:"raw_data_path"`
	ProcessedDataPath  string `json:"processed_data_path" yaml:"processed_data_path"`
	ThumbnailPath      string `json:"thumbnail_path"      yaml:"thumbnail_path"`
	ReconstructionPath string `json:"reconstruction_path" yaml:"reconstruction_path"`

	Authors         []string `json:"authors"          yaml:"authors"`
	Lab             string   `json:"lab"              yaml:"lab"`
	PublicationDate string   `json:"publication_date" yaml:"publication_date"`
	DOI             string   `json:"doi"              yaml:"doi"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Default values applied to newly created datasets when the caller leaves them empty.
const (
	DefaultInstrument             = "FEI Polara 300kV"
	DefaultAccelerationVoltage    = 300
	DefaultMagnification          = 30000
	DefaultPixelSize              = 0.68
	DefaultTiltSeriesRange        = "-60° to +60°"
	DefaultSamplePreparation      = "Cryo-fixation"
	DefaultStaining               = "Vitreous ice"
	DefaultReconstructionSoftware = "IMOD"
	DefaultReconstructionMethod   = "weighted back-projection"
	DefaultBinning                = 4
	DefaultLab                    = "University of Chicago"
)

// DefaultTags are the file types offered when none were selected.
func DefaultTags() []string {
	return []string{".mrc", ".rec", ".mod", ".tif"}
}

// ApplyDefaults fills empty acquisition and processing fields.
func (r *Record) ApplyDefaults() {
	if r.Instrument == "" {
		r.Instrument = DefaultInstrument
	}
	if r.AccelerationVoltage == 0 {
		r.AccelerationVoltage = DefaultAccelerationVoltage
	}
	if r.Magnification == 0 {
		r.Magnification = DefaultMagnification
	}
	if r.PixelSize == 0 {
		r.PixelSize = DefaultPixelSize
	}
	if r.TiltSeriesRange == "" {
		r.TiltSeriesRange = DefaultTiltSeriesRange
	}
	if r.SamplePreparation == "" {
		r.SamplePreparation = DefaultSamplePreparation
	}
	if r.Staining == "" {
		r.Staining = DefaultStaining
	}
	if r.ReconstructionSoftware == "" {
		r.ReconstructionSoftware = DefaultReconstructionSoftware
	}
	if r.ReconstructionMethod == "" {
		r.ReconstructionMethod = DefaultReconstructionMethod
	}
	if r.Binning == 0 {
		r.Binning = DefaultBinning
	}
	if len(r.Tags) == 0 {
		r.Tags = DefaultTags()
	}
	if len(r.Authors) == 0 {
		r.Authors = []string{DefaultLab}
	}
}

// AssignID sets the identifier and the data paths derived from it.
func (r *Record) AssignID(id string) {
	r.ID = id
	r.RawDataPath = fmt.Sprintf("/data/raw/%s/", id)
	r.ProcessedDataPath = fmt.Sprintf("/data/processed/%s/", id)
	r.ThumbnailPath = fmt.Sprintf("/images/tomograms/%s_thumb.jpg", id)
	r.ReconstructionPath = fmt.Sprintf("/data/reconstructions/%s_reconstruction.mrc", id)
}
