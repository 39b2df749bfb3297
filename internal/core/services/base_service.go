package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_migrator/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_migrator/internal/middleware"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ledger_migrator/services")

// BaseService provides common functionality for all services
type BaseService struct{}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// loadOwnedMigration returns the migration if it belongs to userID.
// Migrations of other users are reported as not found.
func (s *BaseService) loadOwnedMigration(ctx context.Context, repo portsrepo.MigrationReader, migrationID, userID string) (*domain.MigrationJob, error) {
	job, err := repo.FindMigrationByID(ctx, migrationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find migration", slog.String("migration_id", migrationID))
		return nil, err
	}
	if job.UserID != userID {
		s.LogDebug(ctx, "Migration belongs to another user", slog.String("migration_id", migrationID))
		return nil, fmt.Errorf("migration %s: %w", migrationID, apperrors.ErrNotFound)
	}
	return job, nil
}
