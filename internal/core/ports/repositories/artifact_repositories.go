package repositories

import (
	"context"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

// ArtifactReader defines read operations for lifecycle artifacts
type ArtifactReader interface {
	// FindIntakeByMigrationID retrieves the intake record of a migration.
	FindIntakeByMigrationID(ctx context.Context, migrationID string) (*domain.IntakeResponse, error)

	// FindExportFile retrieves one uploaded file of a migration.
	FindExportFile(ctx context.Context, migrationID string, fileID string) (*domain.ExportFile, error)

	// ListExportFiles retrieves the uploaded files of a migration, oldest first.
	ListExportFiles(ctx context.Context, migrationID string) ([]domain.ExportFile, error)

	// ListAnalyses retrieves the analysis records of a migration, oldest first.
	ListAnalyses(ctx context.Context, migrationID string) ([]domain.Analysis, error)
}

// ArtifactWriter defines write operations for lifecycle artifacts
type ArtifactWriter interface {
	// SaveExportFile persists an uploaded file record.
	SaveExportFile(ctx context.Context, file domain.ExportFile) error
}

// ArtifactRepositoryFacade combines all artifact-related repository interfaces
type ArtifactRepositoryFacade interface {
	ArtifactReader
	ArtifactWriter
}
