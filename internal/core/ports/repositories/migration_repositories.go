package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

// MigrationReader defines read operations for migration jobs
type MigrationReader interface {
	// FindMigrationByID retrieves a migration job by its ID.
	FindMigrationByID(ctx context.Context, migrationID string) (*domain.MigrationJob, error)

	// ListMigrationsByUser retrieves a user's migrations, newest first.
	ListMigrationsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.MigrationJob, error)

	// GetArtifactPresence reports which lifecycle artifacts exist for a migration.
	GetArtifactPresence(ctx context.Context, migrationID string) (domain.ArtifactPresence, error)

	// ListArtifactPresence is GetArtifactPresence for many migrations in one round trip.
	ListArtifactPresence(ctx context.Context, migrationIDs []string) (map[string]domain.ArtifactPresence, error)
}

// MigrationWriter defines write operations for migration jobs
type MigrationWriter interface {
	// CreateMigrationWithIntake persists a new job and its intake record atomically.
	CreateMigrationWithIntake(ctx context.Context, job domain.MigrationJob, intake domain.IntakeResponse) error

	// BeginParsing moves the job into parsing with a conditional update.
	// A job left in parsing since before staleBefore is taken over; a zero
	// staleBefore never takes over. Returns ErrConflict if the job is still
	// parsing and ErrInvalidTransition for any other status that may not start a parse.
	BeginParsing(ctx context.Context, migrationID string, userID string, staleBefore time.Time) error

	// SaveParseOutcome inserts the entities, updates status and counters, marks the
	// source file processed and stores the analysis, all in one transaction.
	SaveParseOutcome(ctx context.Context, outcome domain.ParseOutcome, analysis domain.Analysis) error

	// MarkParseFailed sets the job to error with the message verbatim and marks the file failed.
	MarkParseFailed(ctx context.Context, migrationID string, fileID string, message string, userID string) error

	// TransitionStatus performs a conditional status change from one status to another.
	TransitionStatus(ctx context.Context, migrationID string, from domain.JobStatus, to domain.JobStatus, userID string) error
}

// MigrationRepositoryFacade combines all migration-related repository interfaces
// This is a facade for clients that need access to all operations
type MigrationRepositoryFacade interface {
	MigrationReader
	MigrationWriter
}

// MigrationRepositoryWithTx extends MigrationRepositoryFacade with transaction capabilities
type MigrationRepositoryWithTx interface {
	MigrationRepositoryFacade
	TransactionManager
}
