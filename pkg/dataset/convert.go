package dataset

import "github.com/mwantia/tomodb/pkg/db/models"

// FromModel converts a stored row into a Record.
func FromModel(m *models.Dataset) Record {
	return Record{
		ID:                     m.ID,
		Title:                  m.Title,
		Description:            m.Description,
		Organism:               m.Organism,
		Strain:                 m.Strain,
		CellularComponent:      m.CellularComponent,
		MolecularFunction:      m.MolecularFunction,
		BiologicalProcess:      m.BiologicalProcess,
		Keywords:               []string(m.Keywords),
		Instrument:             m.Instrument,
		Detector:               m.Detector,
		AccelerationVoltage:    m.AccelerationVoltage,
		Magnification:          m.Magnification,
		PixelSize:              m.PixelSize,
		TiltSeriesRange:        m.TiltSeriesRange,
		SamplePreparation:      m.SamplePreparation,
		Staining:               m.Staining,
		ReconstructionSoftware: m.ReconstructionSoftware,
		ReconstructionMethod:   m.ReconstructionMethod,
		FiducialType:           m.FiducialType,
		AlignmentMethod:        m.AlignmentMethod,
		Binning:                m.Binning,
		DatasetSize:            m.DatasetSize,
		Tags:                   m.FileTypeNames(),
		RawDataPath:            m.RawDataPath,
		ProcessedDataPath:      m.ProcessedDataPath,
		ThumbnailPath:          m.ThumbnailPath,
		ReconstructionPath:     m.ReconstructionPath,
		Authors:                []string(m.Authors),
		Lab:                    m.Lab,
		PublicationDate:        m.PublicationDate,
		DOI:                    m.DOI,
		CreatedAt:              m.CreatedAt,
	}
}

// FromModels converts rows while keeping their order.
func FromModels(rows []models.Dataset) []Record {
	records := make([]Record, 0, len(rows))
	for i := range rows {
		records = append(records, FromModel(&rows[i]))
	}
	return records
}

// ToModel converts a Record into a storable row.
func ToModel(r Record) *models.Dataset {
	m := &models.Dataset{
		ID:                     r.ID,
		Title:                  r.Title,
		Description:            r.Description,
		Organism:               r.Organism,
		Strain:                 r.Strain,
		CellularComponent:      r.CellularComponent,
		MolecularFunction:      r.MolecularFunction,
		BiologicalProcess:      r.BiologicalProcess,
		Keywords:               models.StringList(r.Keywords),
		Instrument:             r.Instrument,
		Detector:               r.Detector,
		AccelerationVoltage:    r.AccelerationVoltage,
		Magnification:          r.Magnification,
		PixelSize:              r.PixelSize,
		TiltSeriesRange:        r.TiltSeriesRange,
		SamplePreparation:      r.SamplePreparation,
		Staining:               r.Staining,
		ReconstructionSoftware: r.ReconstructionSoftware,
		ReconstructionMethod:   r.ReconstructionMethod,
		FiducialType:           r.FiducialType,
		AlignmentMethod:        r.AlignmentMethod,
		Binning:                r.Binning,
		DatasetSize:            r.DatasetSize,
		RawDataPath:            r.RawDataPath,
		ProcessedDataPath:      r.ProcessedDataPath,
		ThumbnailPath:          r.ThumbnailPath,
		ReconstructionPath:     r.ReconstructionPath,
		Authors:                models.StringList(r.Authors),
		Lab:                    r.Lab,
		PublicationDate:        r.PublicationDate,
		DOI:                    r.DOI,
		CreatedAt:              r.CreatedAt,
	}

	for _, tag := range NormalizeList(r.Tags) {
		m.FileTypes = append(m.FileTypes, models.FileType{DatasetID: r.ID, Name: tag})
	}
	return m
}
