package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	MigrationRepo MigrationRepositoryFacade
	EntityRepo    EntityRepositoryFacade
	ArtifactRepo  ArtifactRepositoryFacade
}
