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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxMigrationRepository struct {
	BaseRepository
}

// newPgxMigrationRepository creates a new repository for migration jobs.
func newPgxMigrationRepository(pool *pgxpool.Pool) portsrepo.MigrationRepositoryWithTx {
	return &PgxMigrationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxMigrationRepository implements portsrepo.MigrationRepositoryWithTx
var _ portsrepo.MigrationRepositoryWithTx = (*PgxMigrationRepository)(nil)

const selectMigrationQuery = `
SELECT
	m.migration_id, m.user_id, m.status, m.source_software, m.target_software, m.urgency,
	m.source_filename, m.total_rows, m.requires_review_count, m.error_message,
	m.created_at, m.created_by, m.last_updated_at, m.last_updated_by
FROM migrations m
`

// artifactPresenceColumns yields has_intake, file_count and analysis_count for alias m.
const artifactPresenceColumns = `
	EXISTS (SELECT 1 FROM intake_responses i WHERE i.migration_id = m.migration_id) AS has_intake,
	(SELECT COUNT(*) FROM export_files f WHERE f.migration_id = m.migration_id) AS file_count,
	(SELECT COUNT(*) FROM migration_analyses a WHERE a.migration_id = m.migration_id) AS analysis_count
`

var entityCopyColumns = []string{
	"entity_id", "migration_id", "row_index", "entity_type", "legacy_id", "name",
	"mapped_account", "amount", "entity_date", "memo", "notes", "requires_review",
	"review_reason", "raw",
}

func (r *PgxMigrationRepository) getMigrations(ctx context.Context, filterQuery string, args ...any) ([]domain.MigrationJob, error) {
	rows, err := r.Pool.Query(ctx, selectMigrationQuery+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query migrations", err)
	}
	defer rows.Close()
	modelJobs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.MigrationJob])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect migration rows", err)
	}
	return mapping.ToDomainMigrationJobSlice(modelJobs), nil
}

func (r *PgxMigrationRepository) FindMigrationByID(ctx context.Context, migrationID string) (*domain.MigrationJob, error) {
	jobs, err := r.getMigrations(ctx, `WHERE m.migration_id = $1`, migrationID)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("migration %s: %w", migrationID, apperrors.ErrNotFound)
	}
	return &jobs[0], nil
}

func (r *PgxMigrationRepository) ListMigrationsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.MigrationJob, error) {
	return r.getMigrations(ctx, `WHERE m.user_id = $1 ORDER BY m.created_at DESC, m.migration_id LIMIT $2 OFFSET $3`, userID, limit, offset)
}

func (r *PgxMigrationRepository) GetArtifactPresence(ctx context.Context, migrationID string) (domain.ArtifactPresence, error) {
	query := `SELECT ` + artifactPresenceColumns + ` FROM migrations m WHERE m.migration_id = $1`
	var presence domain.ArtifactPresence
	err := r.Pool.QueryRow(ctx, query, migrationID).Scan(&presence.HasIntake, &presence.FileCount, &presence.AnalysisCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ArtifactPresence{}, fmt.Errorf("migration %s: %w", migrationID, apperrors.ErrNotFound)
		}
		return domain.ArtifactPresence{}, apperrors.NewAppError(500, "failed to load artifact presence for "+migrationID, err)
	}
	return presence, nil
}

func (r *PgxMigrationRepository) ListArtifactPresence(ctx context.Context, migrationIDs []string) (map[string]domain.ArtifactPresence, error) {
	out := make(map[string]domain.ArtifactPresence, len(migrationIDs))
	if len(migrationIDs) == 0 {
		return out, nil
	}

	query := `SELECT m.migration_id, ` + artifactPresenceColumns + ` FROM migrations m WHERE m.migration_id = ANY($1)`
	rows, err := r.Pool.Query(ctx, query, migrationIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query artifact presence", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var presence domain.ArtifactPresence
		if err := rows.Scan(&id, &presence.HasIntake, &presence.FileCount, &presence.AnalysisCount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan artifact presence", err)
		}
		out[id] = presence
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating artifact presence rows", err)
	}
	return out, nil
}

func (r *PgxMigrationRepository) CreateMigrationWithIntake(ctx context.Context, job domain.MigrationJob, intake domain.IntakeResponse) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelMigrationJob(job)
	_, err = tx.Exec(ctx, `
		INSERT INTO migrations (
			migration_id, user_id, status, source_software, target_software, urgency,
			source_filename, total_rows, requires_review_count, error_message,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`,
		m.MigrationID, m.UserID, m.Status, m.SourceSoftware, m.TargetSoftware, m.Urgency,
		m.SourceFilename, m.TotalRows, m.RequiresReviewCount, m.ErrorMessage,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("migration %s: %w", m.MigrationID, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert migration "+m.MigrationID, err)
	}

	in := mapping.ToModelIntakeResponse(intake)
	_, err = tx.Exec(ctx, `
		INSERT INTO intake_responses (
			intake_id, migration_id, current_software, target_software, urgency,
			data_preservation_requirements, additional_notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`,
		in.IntakeID, in.MigrationID, in.CurrentSoftware, in.TargetSoftware, in.Urgency,
		in.DataPreservationRequirements, in.AdditionalNotes, in.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert intake for migration "+m.MigrationID, err)
	}

	return r.Commit(ctx, tx)
}

// currentStatus reads the status of a migration. found is false when it does not exist.
func currentStatus(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, migrationID string) (domain.JobStatus, bool, error) {
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM migrations WHERE migration_id = $1`, migrationID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, apperrors.NewAppError(500, "failed to read status of migration "+migrationID, err)
	}
	return domain.JobStatus(status), true, nil
}

func (r *PgxMigrationRepository) BeginParsing(ctx context.Context, migrationID string, userID string, staleBefore time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE migrations
		SET status = $2, error_message = NULL, last_updated_at = $3, last_updated_by = $4
		WHERE migration_id = $1
			AND (status = ANY($5) OR (status = $2 AND $6::timestamptz IS NOT NULL AND last_updated_at < $6));
	`, migrationID, string(domain.JobStatusParsing), time.Now().UTC(), userID,
		statusStrings(domain.ParseSourceStatuses()), staleCutoff(staleBefore))
	if err != nil {
		return apperrors.NewAppError(500, "failed to start parsing migration "+migrationID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	status, found, err := currentStatus(ctx, r.Pool, migrationID)
	if err != nil {
		return err
	}
	return statusMissError(migrationID, status, found, domain.JobStatusParsing)
}

func (r *PgxMigrationRepository) SaveParseOutcome(ctx context.Context, outcome domain.ParseOutcome, analysis domain.Analysis) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := time.Now().UTC()

	// leftovers of an earlier attempt would collide on (migration_id, row_index)
	if _, err := tx.Exec(ctx, `DELETE FROM migration_entities WHERE migration_id = $1`, outcome.MigrationID); err != nil {
		return apperrors.NewAppError(500, "failed to clear entities of migration "+outcome.MigrationID, err)
	}

	rows := make([][]any, len(outcome.Entities))
	for i, e := range outcome.Entities {
		m := mapping.ToModelMigrationEntity(e)
		rows[i] = []any{
			m.EntityID, m.MigrationID, m.RowIndex, m.EntityType, m.LegacyID, m.Name,
			m.MappedAccount, m.Amount, m.EntityDate, m.Memo, m.Notes, m.RequiresReview,
			m.ReviewReason, m.Raw,
		}
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{"migration_entities"}, entityCopyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert entities of migration "+outcome.MigrationID, err)
	}
	if int(copied) != len(rows) {
		return apperrors.NewAppError(500, fmt.Sprintf("inserted %d of %d entities", copied, len(rows)), nil)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE migrations
		SET status = $2, total_rows = $3, requires_review_count = $4, source_filename = $5,
			error_message = NULL, last_updated_at = $6, last_updated_by = $7
		WHERE migration_id = $1 AND status = $8;
	`,
		outcome.MigrationID, string(outcome.FinalStatus()), outcome.Summary.TotalRows,
		outcome.Summary.RequiresReview, outcome.SourceFilename, now, outcome.UserID,
		string(domain.JobStatusParsing),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update migration "+outcome.MigrationID, err)
	}
	if tag.RowsAffected() != 1 {
		status, found, err := currentStatus(ctx, tx, outcome.MigrationID)
		if err != nil {
			return err
		}
		return statusMissError(outcome.MigrationID, status, found, outcome.FinalStatus())
	}

	if _, err := tx.Exec(ctx, `
		UPDATE export_files SET upload_status = $3 WHERE file_id = $1 AND migration_id = $2;
	`, outcome.FileID, outcome.MigrationID, string(domain.FileStatusProcessed)); err != nil {
		return apperrors.NewAppError(500, "failed to mark file "+outcome.FileID+" processed", err)
	}

	a := mapping.ToModelAnalysis(analysis)
	if _, err := tx.Exec(ctx, `
		INSERT INTO migration_analyses (analysis_id, migration_id, analysis_type, content, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`, a.AnalysisID, a.MigrationID, a.AnalysisType, a.Content, a.CreatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to insert analysis for migration "+outcome.MigrationID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxMigrationRepository) MarkParseFailed(ctx context.Context, migrationID string, fileID string, message string, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `
		UPDATE migrations
		SET status = $2, error_message = $3, last_updated_at = $4, last_updated_by = $5
		WHERE migration_id = $1 AND status = $6;
	`, migrationID, string(domain.JobStatusError), message, time.Now().UTC(), userID, string(domain.JobStatusParsing)); err != nil {
		return apperrors.NewAppError(500, "failed to mark migration "+migrationID+" as failed", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE export_files SET upload_status = $3 WHERE file_id = $1 AND migration_id = $2;
	`, fileID, migrationID, string(domain.FileStatusFailed)); err != nil {
		return apperrors.NewAppError(500, "failed to mark file "+fileID+" failed", err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxMigrationRepository) TransitionStatus(ctx context.Context, migrationID string, from domain.JobStatus, to domain.JobStatus, userID string) error {
	if !from.CanTransition(to) {
		return statusMissError(migrationID, from, true, to)
	}
	tag, err := r.Pool.Exec(ctx, `
		UPDATE migrations
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE migration_id = $1 AND status = $2;
	`, migrationID, string(from), string(to), time.Now().UTC(), userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of migration "+migrationID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	status, found, err := currentStatus(ctx, r.Pool, migrationID)
	if err != nil {
		return err
	}
	return statusMissError(migrationID, status, found, to)
}
