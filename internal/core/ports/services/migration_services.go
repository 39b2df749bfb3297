package services

import (
	"context"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/dto"
)

// MigrationReaderSvc defines read operations for migration jobs
type MigrationReaderSvc interface {
	// GetMigration retrieves a migration owned by the requesting user.
	GetMigration(ctx context.Context, migrationID string, userID string) (*domain.MigrationJob, error)

	// GetMigrationDetail retrieves a migration with its intake, files, analyses and progress.
	GetMigrationDetail(ctx context.Context, migrationID string, userID string) (*domain.MigrationDetail, error)

	// ListMigrations retrieves the user's migrations with derived progress.
	ListMigrations(ctx context.Context, userID string, params dto.ListMigrationsParams) ([]domain.MigrationWithProgress, error)

	// GetProgress recomputes the lifecycle progress of a migration.
	GetProgress(ctx context.Context, migrationID string, userID string) (*domain.Progress, error)
}

// MigrationWriterSvc defines write operations for migration jobs
type MigrationWriterSvc interface {
	// CreateMigration opens a migration from an intake questionnaire.
	CreateMigration(ctx context.Context, req dto.CreateMigrationRequest, userID string) (*domain.MigrationJob, error)

	// CompleteMigration marks a parsed migration as completed.
	CompleteMigration(ctx context.Context, migrationID string, userID string) (*domain.MigrationJob, error)
}

// MigrationSvcFacade combines all migration-related service interfaces
type MigrationSvcFacade interface {
	MigrationReaderSvc
	MigrationWriterSvc
}
