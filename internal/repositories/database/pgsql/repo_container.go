package pgsql

import (
	portsrepo "github.com/SscSPs/ledger_migrator/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	migrationRepo := newPgxMigrationRepository(dbPool)
	entityRepo := newPgxEntityRepository(dbPool)
	artifactRepo := newPgxArtifactRepository(dbPool)

	return portsrepo.RepositoryProvider{
		MigrationRepo: migrationRepo,
		EntityRepo:    entityRepo,
		ArtifactRepo:  artifactRepo,
	}
}
