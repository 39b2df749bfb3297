package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_migrator/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_migrator/internal/models"
	"github.com/SscSPs/ledger_migrator/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxArtifactRepository struct {
	BaseRepository
}

// newPgxArtifactRepository creates a new repository for intake, file and analysis artifacts.
func newPgxArtifactRepository(pool *pgxpool.Pool) portsrepo.ArtifactRepositoryFacade {
	return &PgxArtifactRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ArtifactRepositoryFacade = (*PgxArtifactRepository)(nil)

const (
	selectIntakeQuery = `
		SELECT intake_id, migration_id, current_software, target_software, urgency,
			data_preservation_requirements, additional_notes, created_at
		FROM intake_responses
	`
	selectExportFileQuery = `
		SELECT file_id, migration_id, filename, file_size, content_type, storage_key,
			upload_status, created_at
		FROM export_files
	`
	selectAnalysisQuery = `
		SELECT analysis_id, migration_id, analysis_type, content, created_at
		FROM migration_analyses
	`
)

func (r *PgxArtifactRepository) FindIntakeByMigrationID(ctx context.Context, migrationID string) (*domain.IntakeResponse, error) {
	rows, err := r.Pool.Query(ctx, selectIntakeQuery+`WHERE migration_id = $1`, migrationID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query intake", err)
	}
	intake, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.IntakeResponse])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("intake for migration %s: %w", migrationID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to collect intake row", err)
	}
	d := mapping.ToDomainIntakeResponse(intake)
	return &d, nil
}

func (r *PgxArtifactRepository) FindExportFile(ctx context.Context, migrationID string, fileID string) (*domain.ExportFile, error) {
	rows, err := r.Pool.Query(ctx, selectExportFileQuery+`WHERE migration_id = $1 AND file_id = $2`, migrationID, fileID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query export file", err)
	}
	file, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.ExportFile])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("export file %s: %w", fileID, apperrors.ErrNotFound)
		}
		return nil, apperrors.NewAppError(500, "failed to collect export file row", err)
	}
	d := mapping.ToDomainExportFile(file)
	return &d, nil
}

func (r *PgxArtifactRepository) ListExportFiles(ctx context.Context, migrationID string) ([]domain.ExportFile, error) {
	rows, err := r.Pool.Query(ctx, selectExportFileQuery+`WHERE migration_id = $1 ORDER BY created_at, file_id`, migrationID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query export files", err)
	}
	files, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ExportFile])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect export file rows", err)
	}
	return mapping.ToDomainExportFileSlice(files), nil
}

func (r *PgxArtifactRepository) ListAnalyses(ctx context.Context, migrationID string) ([]domain.Analysis, error) {
	rows, err := r.Pool.Query(ctx, selectAnalysisQuery+`WHERE migration_id = $1 ORDER BY created_at, analysis_id`, migrationID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query analyses", err)
	}
	analyses, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Analysis])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect analysis rows", err)
	}
	return mapping.ToDomainAnalysisSlice(analyses), nil
}

func (r *PgxArtifactRepository) SaveExportFile(ctx context.Context, file domain.ExportFile) error {
	m := mapping.ToModelExportFile(file)
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO export_files (
			file_id, migration_id, filename, file_size, content_type, storage_key,
			upload_status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`, m.FileID, m.MigrationID, m.Filename, m.FileSize, m.ContentType, m.StorageKey, m.UploadStatus, m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return fmt.Errorf("export file %s: %w", m.FileID, apperrors.ErrDuplicate)
			case "23503": // foreign_key_violation
				return fmt.Errorf("migration %s: %w", m.MigrationID, apperrors.ErrNotFound)
			}
		}
		return apperrors.NewAppError(500, "failed to save export file "+m.FileID, err)
	}
	return nil
}
