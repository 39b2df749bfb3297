package mapping

import (
	"encoding/json"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/models"
)

// ToModelIntakeResponse converts a domain IntakeResponse to a model IntakeResponse
func ToModelIntakeResponse(d domain.IntakeResponse) models.IntakeResponse {
	reqs := d.DataPreservationRequirements
	if reqs == nil {
		reqs = []string{}
	}
	return models.IntakeResponse{
		IntakeID:                     d.IntakeID,
		MigrationID:                  d.MigrationID,
		CurrentSoftware:              d.CurrentSoftware,
		TargetSoftware:               d.TargetSoftware,
		Urgency:                      string(d.Urgency),
		DataPreservationRequirements: reqs,
		AdditionalNotes:              d.AdditionalNotes,
		CreatedAt:                    d.CreatedAt,
	}
}

// ToDomainIntakeResponse converts a model IntakeResponse to a domain IntakeResponse
func ToDomainIntakeResponse(m models.IntakeResponse) domain.IntakeResponse {
	return domain.IntakeResponse{
		IntakeID:                     m.IntakeID,
		MigrationID:                  m.MigrationID,
		CurrentSoftware:              m.CurrentSoftware,
		TargetSoftware:               m.TargetSoftware,
		Urgency:                      domain.Urgency(m.Urgency),
		DataPreservationRequirements: m.DataPreservationRequirements,
		AdditionalNotes:              m.AdditionalNotes,
		CreatedAt:                    m.CreatedAt,
	}
}

// ToModelExportFile converts a domain ExportFile to a model ExportFile
func ToModelExportFile(d domain.ExportFile) models.ExportFile {
	return models.ExportFile{
		FileID:       d.FileID,
		MigrationID:  d.MigrationID,
		Filename:     d.Filename,
		FileSize:     d.FileSize,
		ContentType:  d.ContentType,
		StorageKey:   d.StorageKey,
		UploadStatus: string(d.UploadStatus),
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainExportFile converts a model ExportFile to a domain ExportFile
func ToDomainExportFile(m models.ExportFile) domain.ExportFile {
	return domain.ExportFile{
		FileID:       m.FileID,
		MigrationID:  m.MigrationID,
		Filename:     m.Filename,
		FileSize:     m.FileSize,
		ContentType:  m.ContentType,
		StorageKey:   m.StorageKey,
		UploadStatus: domain.FileUploadStatus(m.UploadStatus),
		CreatedAt:    m.CreatedAt,
	}
}

// ToDomainExportFileSlice converts a slice of model files to domain files
func ToDomainExportFileSlice(ms []models.ExportFile) []domain.ExportFile {
	ds := make([]domain.ExportFile, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainExportFile(m)
	}
	return ds
}

// ToModelAnalysis converts a domain Analysis to a model Analysis
func ToModelAnalysis(d domain.Analysis) models.Analysis {
	return models.Analysis{
		AnalysisID:   d.AnalysisID,
		MigrationID:  d.MigrationID,
		AnalysisType: string(d.AnalysisType),
		Content:      d.Content,
		CreatedAt:    d.CreatedAt,
	}
}

// ToDomainAnalysis converts a model Analysis to a domain Analysis
func ToDomainAnalysis(m models.Analysis) domain.Analysis {
	return domain.Analysis{
		AnalysisID:   m.AnalysisID,
		MigrationID:  m.MigrationID,
		AnalysisType: domain.AnalysisType(m.AnalysisType),
		Content:      json.RawMessage(m.Content),
		CreatedAt:    m.CreatedAt,
	}
}

// ToDomainAnalysisSlice converts a slice of model analyses to domain analyses
func ToDomainAnalysisSlice(ms []models.Analysis) []domain.Analysis {
	ds := make([]domain.Analysis, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAnalysis(m)
	}
	return ds
}
