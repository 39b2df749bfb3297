package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_migrator/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/core/rules"
	"github.com/SscSPs/ledger_migrator/internal/dto"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultMigrationPageSize = 20

type migrationService struct {
	BaseService
	migrationRepo portsrepo.MigrationRepositoryFacade
	artifactRepo  portsrepo.ArtifactReader
	tracker       *rules.LifecycleTracker
}

// NewMigrationService creates the service that owns the migration lifecycle.
func NewMigrationService(migrationRepo portsrepo.MigrationRepositoryFacade, artifactRepo portsrepo.ArtifactReader, tracker *rules.LifecycleTracker) portssvc.MigrationSvcFacade {
	return &migrationService{
		migrationRepo: migrationRepo,
		artifactRepo:  artifactRepo,
		tracker:       tracker,
	}
}

var _ portssvc.MigrationSvcFacade = (*migrationService)(nil)

func (s *migrationService) CreateMigration(ctx context.Context, req dto.CreateMigrationRequest, userID string) (*domain.MigrationJob, error) {
	urgency := domain.ParseUrgency(req.Urgency)
	if !urgency.IsValid() {
		return nil, fmt.Errorf("unknown urgency %q: %w", req.Urgency, apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	job := domain.MigrationJob{
		MigrationID:    uuid.NewString(),
		UserID:         userID,
		Status:         domain.JobStatusPending,
		SourceSoftware: req.CurrentSoftware,
		TargetSoftware: req.TargetSoftware,
		Urgency:        urgency,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	intake := domain.IntakeResponse{
		IntakeID:                     uuid.NewString(),
		MigrationID:                  job.MigrationID,
		CurrentSoftware:              req.CurrentSoftware,
		TargetSoftware:               req.TargetSoftware,
		Urgency:                      urgency,
		DataPreservationRequirements: req.DataPreservationRequirements,
		AdditionalNotes:              req.AdditionalNotes,
		CreatedAt:                    now,
	}

	if err := s.migrationRepo.CreateMigrationWithIntake(ctx, job, intake); err != nil {
		s.LogError(ctx, err, "Failed to create migration", slog.String("migration_id", job.MigrationID))
		return nil, err
	}

	s.LogInfo(ctx, "Migration created",
		slog.String("migration_id", job.MigrationID),
		slog.String("urgency", string(urgency)))
	return &job, nil
}

func (s *migrationService) GetMigration(ctx context.Context, migrationID string, userID string) (*domain.MigrationJob, error) {
	return s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID)
}

func (s *migrationService) GetMigrationDetail(ctx context.Context, migrationID string, userID string) (*domain.MigrationDetail, error) {
	job, err := s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID)
	if err != nil {
		return nil, err
	}

	var (
		intake   *domain.IntakeResponse
		files    []domain.ExportFile
		analyses []domain.Analysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.artifactRepo.FindIntakeByMigrationID(gctx, migrationID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		intake = found
		return err
	})
	g.Go(func() error {
		var err error
		files, err = s.artifactRepo.ListExportFiles(gctx, migrationID)
		return err
	})
	g.Go(func() error {
		var err error
		analyses, err = s.artifactRepo.ListAnalyses(gctx, migrationID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to load migration artifacts", slog.String("migration_id", migrationID))
		return nil, err
	}

	presence := domain.ArtifactPresence{
		HasIntake:     intake != nil,
		FileCount:     len(files),
		AnalysisCount: len(analyses),
	}
	return &domain.MigrationDetail{
		Migration: *job,
		Intake:    intake,
		Files:     files,
		Analyses:  analyses,
		Progress:  s.tracker.Compute(*job, presence),
	}, nil
}

func (s *migrationService) ListMigrations(ctx context.Context, userID string, params dto.ListMigrationsParams) ([]domain.MigrationWithProgress, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultMigrationPageSize
	}

	jobs, err := s.migrationRepo.ListMigrationsByUser(ctx, userID, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list migrations")
		return nil, err
	}
	if len(jobs) == 0 {
		return []domain.MigrationWithProgress{}, nil
	}

	ids := make([]string, len(jobs))
	for i := range jobs {
		ids[i] = jobs[i].MigrationID
	}
	presence, err := s.migrationRepo.ListArtifactPresence(ctx, ids)
	if err != nil {
		s.LogError(ctx, err, "Failed to load artifact presence", slog.Int("migration_count", len(ids)))
		return nil, err
	}

	out := make([]domain.MigrationWithProgress, len(jobs))
	for i := range jobs {
		out[i] = domain.MigrationWithProgress{
			Migration: jobs[i],
			Progress:  s.tracker.Compute(jobs[i], presence[jobs[i].MigrationID]),
		}
	}
	return out, nil
}

func (s *migrationService) GetProgress(ctx context.Context, migrationID string, userID string) (*domain.Progress, error) {
	job, err := s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID)
	if err != nil {
		return nil, err
	}
	presence, err := s.migrationRepo.GetArtifactPresence(ctx, migrationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load artifact presence", slog.String("migration_id", migrationID))
		return nil, err
	}
	progress := s.tracker.Compute(*job, presence)
	return &progress, nil
}

func (s *migrationService) CompleteMigration(ctx context.Context, migrationID string, userID string) (*domain.MigrationJob, error) {
	job, err := s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID)
	if err != nil {
		return nil, err
	}
	if !job.Status.CanTransition(domain.JobStatusCompleted) {
		return nil, fmt.Errorf("cannot complete migration in status %s: %w", job.Status, apperrors.ErrInvalidTransition)
	}

	if err := s.migrationRepo.TransitionStatus(ctx, migrationID, job.Status, domain.JobStatusCompleted, userID); err != nil {
		s.LogError(ctx, err, "Failed to complete migration", slog.String("migration_id", migrationID))
		return nil, err
	}

	s.LogInfo(ctx, "Migration completed", slog.String("migration_id", migrationID))
	return s.migrationRepo.FindMigrationByID(ctx, migrationID)
}
