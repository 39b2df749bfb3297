package repositories

import (
	"context"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

// EntityQuery selects a page of entities ordered by row index.
type EntityQuery struct {
	AfterRowIndex *int
	Limit         int
	OnlyFlagged   bool
}

// EntityReader defines read operations for migration entities
type EntityReader interface {
	// ListEntities retrieves one page of a migration's entities ordered by row index.
	ListEntities(ctx context.Context, migrationID string, query EntityQuery) ([]domain.MigrationEntity, error)

	// ListAllEntities retrieves every entity of a migration ordered by row index.
	ListAllEntities(ctx context.Context, migrationID string) ([]domain.MigrationEntity, error)

	// FindEntityByID retrieves one entity of a migration.
	FindEntityByID(ctx context.Context, migrationID string, entityID string) (*domain.MigrationEntity, error)
}

// EntityWriter defines write operations for migration entities
type EntityWriter interface {
	// ResolveEntityReview clears the entity's review flag, decrements the job's
	// review counter and moves a review_required job to parsed once no flags remain.
	ResolveEntityReview(ctx context.Context, migrationID string, entityID string, notes *string, userID string) (*domain.MigrationEntity, error)
}

// EntityRepositoryFacade combines all entity-related repository interfaces
type EntityRepositoryFacade interface {
	EntityReader
	EntityWriter
}

// EntityRepositoryWithTx extends EntityRepositoryFacade with transaction capabilities
type EntityRepositoryWithTx interface {
	EntityRepositoryFacade
	TransactionManager
}
