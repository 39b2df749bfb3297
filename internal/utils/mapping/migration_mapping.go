package mapping

import (
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/models"
)

// ToModelMigrationJob converts a domain MigrationJob to a model MigrationJob
func ToModelMigrationJob(d domain.MigrationJob) models.MigrationJob {
	return models.MigrationJob{
		MigrationID:         d.MigrationID,
		UserID:              d.UserID,
		Status:              string(d.Status),
		SourceSoftware:      d.SourceSoftware,
		TargetSoftware:      d.TargetSoftware,
		Urgency:             string(d.Urgency),
		SourceFilename:      d.SourceFilename,
		TotalRows:           d.TotalRows,
		RequiresReviewCount: d.RequiresReviewCount,
		ErrorMessage:        d.ErrorMessage,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMigrationJob converts a model MigrationJob to a domain MigrationJob
func ToDomainMigrationJob(m models.MigrationJob) domain.MigrationJob {
	return domain.MigrationJob{
		MigrationID:         m.MigrationID,
		UserID:              m.UserID,
		Status:              domain.JobStatus(m.Status),
		SourceSoftware:      m.SourceSoftware,
		TargetSoftware:      m.TargetSoftware,
		Urgency:             domain.Urgency(m.Urgency),
		SourceFilename:      m.SourceFilename,
		TotalRows:           m.TotalRows,
		RequiresReviewCount: m.RequiresReviewCount,
		ErrorMessage:        m.ErrorMessage,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMigrationJobSlice converts a slice of model jobs to domain jobs
func ToDomainMigrationJobSlice(ms []models.MigrationJob) []domain.MigrationJob {
	ds := make([]domain.MigrationJob, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMigrationJob(m)
	}
	return ds
}
