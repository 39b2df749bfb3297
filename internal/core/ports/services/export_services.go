package services

import (
	"context"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/dto"
)

// ExportNormalizerSvc turns raw export text into validated entities and a summary.
// It persists nothing.
type ExportNormalizerSvc interface {
	// Normalize calls the extractor once and validates every row in order.
	// Extractor failures are returned as *apperrors.ParseFailure.
	Normalize(ctx context.Context, migrationID string, rawText string) ([]domain.MigrationEntity, domain.ParseSummary, error)
}

// ExportReaderSvc defines read operations over parsed exports
type ExportReaderSvc interface {
	// ListEntities retrieves a page of a migration's entities ordered by row index.
	ListEntities(ctx context.Context, migrationID string, userID string, params dto.ListEntitiesParams) (*dto.ListEntitiesResponse, error)

	// AssessMigration recomputes the complexity assessment from the stored entities.
	AssessMigration(ctx context.Context, migrationID string, userID string) (*domain.ComplexityAssessment, error)
}

// ExportWriterSvc defines write operations over exports
type ExportWriterSvc interface {
	// UploadExport stores an export file and records it against the migration.
	UploadExport(ctx context.Context, migrationID string, userID string, upload dto.ExportUpload) (*domain.ExportFile, error)

	// ParseExport normalizes an uploaded file and persists the result atomically.
	ParseExport(ctx context.Context, migrationID string, fileID string, userID string) (*dto.ParseExportResponse, error)

	// ResolveReview clears the review flag of one entity.
	ResolveReview(ctx context.Context, migrationID string, entityID string, userID string, req dto.ResolveReviewRequest) (*dto.ResolveReviewResponse, error)
}

// ExportSvcFacade combines all export-related service interfaces
type ExportSvcFacade interface {
	ExportReaderSvc
	ExportWriterSvc
}
