package models

import (
	"time"

	"gorm.io/gorm"
)

// Dataset represents one tomography dataset row in the catalog table
type Dataset struct {
	ID          string `gorm:"primaryKey;type:text"`
	Title       string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`

	// Scientific metadata
	Organism          string     `gorm:"type:text;index:idx_dataset_organism"`
	Strain            string     `gorm:"type:text"`
	CellularComponent string     `gorm:"type:text"`
	MolecularFunction string     `gorm:"type:text"`
	BiologicalProcess string     `gorm:"type:text"`
	Keywords          StringList `gorm:"type:text"`

	// Acquisition parameters
	Instrument          string  `gorm:"type:text;index:idx_dataset_instrument"`
	Detector            string  `gorm:"type:text"`
	AccelerationVoltage int     `gorm:"default:300"`
	Magnification       int     `gorm:"default:30000"`
	PixelSize           float64 `gorm:"default:0.68"`
	TiltSeriesRange     string  `gorm:"type:text"`

	// Sample preparation and processing
	SamplePreparation      string `gorm:"type:text"`
	Staining               string `gorm:"type:text"`
	ReconstructionSoftware string `gorm:"type:text"`
	ReconstructionMethod   string `gorm:"type:text"`
	FiducialType           string `gorm:"type:text"`
	AlignmentMethod        string `gorm:"type:text"`
	Binning                int    `gorm:"default:4"`

	// Data organization
	DatasetSize        string `gorm:"type:text"`
	RawDataPath        string `gorm:"type:text"`
	ProcessedDataPath  string `gorm:"type:text"`
	ThumbnailPath      string `gorm:"type:text"`
	ReconstructionPath string `gorm:"type:text"`

	// Publication
	Authors         StringList `gorm:"type:text"`
	Lab             string     `gorm:"type:text"`
	PublicationDate string     `gorm:"type:text"`
	DOI             string     `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index:idx_dataset_created"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// Relationships
	FileTypes []FileType `gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE"`
}

// FileType is one file extension (".mrc", ".mp4", ...) offered by a dataset
type FileType struct {
	ID        uint   `gorm:"primaryKey"`
	DatasetID string `gorm:"type:text;not null;index:idx_dataset_file_types"`
	Name      string `gorm:"type:text;not null;index:idx_file_type_name"`
	Position  int    `gorm:"not null;default:0"`

	CreatedAt time.Time
}

// FileTypeNames returns the file type names in their stored order
func (d *Dataset) FileTypeNames() []string {
	if d.FileTypes == nil {
		return nil
	}

	names := make([]string, 0, len(d.FileTypes))
	for _, ft := range d.FileTypes {
		names = append(names, ft.Name)
	}
	return names
}
