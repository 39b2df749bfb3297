package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_migrator/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_migrator/internal/models"
	"github.com/SscSPs/ledger_migrator/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxEntityRepository struct {
	BaseRepository
}

// newPgxEntityRepository creates a new repository for migration entities.
func newPgxEntityRepository(pool *pgxpool.Pool) portsrepo.EntityRepositoryWithTx {
	return &PgxEntityRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.EntityRepositoryWithTx = (*PgxEntityRepository)(nil)

const entityColumns = `
	e.entity_id, e.migration_id, e.row_index, e.entity_type, e.legacy_id, e.name,
	e.mapped_account, e.amount, e.entity_date, e.memo, e.notes, e.requires_review,
	e.review_reason, e.raw
`

const selectEntityQuery = `SELECT ` + entityColumns + ` FROM migration_entities e `

func (r *PgxEntityRepository) getEntities(ctx context.Context, filterQuery string, args ...any) ([]domain.MigrationEntity, error) {
	rows, err := r.Pool.Query(ctx, selectEntityQuery+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query migration entities", err)
	}
	defer rows.Close()
	modelEntities, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.MigrationEntity])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect migration entity rows", err)
	}
	return mapping.ToDomainMigrationEntitySlice(modelEntities), nil
}

func (r *PgxEntityRepository) ListEntities(ctx context.Context, migrationID string, query portsrepo.EntityQuery) ([]domain.MigrationEntity, error) {
	after := -1
	if query.AfterRowIndex != nil {
		after = *query.AfterRowIndex
	}
	return r.getEntities(ctx, `
		WHERE e.migration_id = $1 AND e.row_index > $2 AND (NOT $3 OR e.requires_review)
		ORDER BY e.row_index
		LIMIT $4`,
		migrationID, after, query.OnlyFlagged, query.Limit)
}

func (r *PgxEntityRepository) ListAllEntities(ctx context.Context, migrationID string) ([]domain.MigrationEntity, error) {
	return r.getEntities(ctx, `WHERE e.migration_id = $1 ORDER BY e.row_index`, migrationID)
}

func (r *PgxEntityRepository) FindEntityByID(ctx context.Context, migrationID string, entityID string) (*domain.MigrationEntity, error) {
	entities, err := r.getEntities(ctx, `WHERE e.migration_id = $1 AND e.entity_id = $2`, migrationID, entityID)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("entity %s: %w", entityID, apperrors.ErrNotFound)
	}
	return &entities[0], nil
}

func (r *PgxEntityRepository) ResolveEntityReview(ctx context.Context, migrationID string, entityID string, notes *string, userID string) (*domain.MigrationEntity, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	rows, err := tx.Query(ctx, `
		UPDATE migration_entities e
		SET requires_review = FALSE,
			review_reason = NULL,
			notes = CASE
				WHEN $3::text IS NULL OR $3::text = '' THEN e.notes
				WHEN e.notes IS NULL OR e.notes = '' THEN $3::text
				ELSE e.notes || E'\n' || $3::text
			END
		WHERE e.migration_id = $1 AND e.entity_id = $2 AND e.requires_review
		RETURNING `+entityColumns, migrationID, entityID, notes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to resolve entity "+entityID, err)
	}
	resolved, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.MigrationEntity])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect resolved entity", err)
	}
	if len(resolved) == 0 {
		var flagged bool
		err := tx.QueryRow(ctx, `SELECT requires_review FROM migration_entities WHERE migration_id = $1 AND entity_id = $2`, migrationID, entityID).Scan(&flagged)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("entity %s: %w", entityID, apperrors.ErrNotFound)
		}
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to read entity "+entityID, err)
		}
		return nil, fmt.Errorf("entity %s is not flagged for review: %w", entityID, apperrors.ErrValidation)
	}

	_, err = tx.Exec(ctx, `
		UPDATE migrations
		SET requires_review_count = GREATEST(requires_review_count - 1, 0),
			status = CASE
				WHEN status = $2 AND requires_review_count <= 1 THEN $3
				ELSE status
			END,
			last_updated_at = $4,
			last_updated_by = $5
		WHERE migration_id = $1;
	`, migrationID, string(domain.JobStatusReviewRequired), string(domain.JobStatusParsed), time.Now().UTC(), userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update review count of migration "+migrationID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	entity := mapping.ToDomainMigrationEntity(resolved[0])
	return &entity, nil
}
