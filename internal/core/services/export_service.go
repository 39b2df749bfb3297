package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/ledger_migrator/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/core/rules"
	"github.com/SscSPs/ledger_migrator/internal/dto"
	"github.com/SscSPs/ledger_migrator/internal/platform/observability"
	"github.com/SscSPs/ledger_migrator/internal/utils/pagination"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultEntityPageSize = 100
	defaultContentType    = "application/octet-stream"
)

type exportService struct {
	BaseService
	migrationRepo  portsrepo.MigrationRepositoryFacade
	entityRepo     portsrepo.EntityRepositoryFacade
	artifactRepo   portsrepo.ArtifactRepositoryFacade
	store          gateways.ExportStore
	decoder        gateways.ExportDecoder
	normalizer     portssvc.ExportNormalizerSvc
	analyzer       *rules.ComplexityAnalyzer
	metrics        *observability.Metrics
	maxUploadBytes int64
	parseLease     time.Duration
}

// ExportServiceOption configures optional export service settings.
type ExportServiceOption func(*exportService)

// WithMaxUploadBytes caps the size of uploaded exports. Zero means no cap.
func WithMaxUploadBytes(n int64) ExportServiceOption {
	return func(s *exportService) {
		s.maxUploadBytes = n
	}
}

// WithParseLease lets a parse take over a job that has been parsing for longer
// than d, e.g. after a crash mid-parse. Zero never takes over.
func WithParseLease(d time.Duration) ExportServiceOption {
	return func(s *exportService) {
		s.parseLease = d
	}
}

// WithExportMetrics records parse conflicts in m.
func WithExportMetrics(m *observability.Metrics) ExportServiceOption {
	return func(s *exportService) {
		s.metrics = m
	}
}

// NewExportService creates the service that uploads, parses and reviews exports.
func NewExportService(
	repos portsrepo.RepositoryProvider,
	store gateways.ExportStore,
	decoder gateways.ExportDecoder,
	normalizer portssvc.ExportNormalizerSvc,
	analyzer *rules.ComplexityAnalyzer,
	options ...ExportServiceOption,
) portssvc.ExportSvcFacade {
	svc := &exportService{
		migrationRepo: repos.MigrationRepo,
		entityRepo:    repos.EntityRepo,
		artifactRepo:  repos.ArtifactRepo,
		store:         store,
		decoder:       decoder,
		normalizer:    normalizer,
		analyzer:      analyzer,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExportSvcFacade = (*exportService)(nil)

// exportObjectKey is migrations/<migrationID>/<fileID>/<base filename>.
func exportObjectKey(migrationID, fileID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "export"
	}
	return fmt.Sprintf("migrations/%s/%s/%s", migrationID, fileID, name)
}

func (s *exportService) UploadExport(ctx context.Context, migrationID string, userID string, upload dto.ExportUpload) (*domain.ExportFile, error) {
	job, err := s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID)
	if err != nil {
		return nil, err
	}
	if job.Status == domain.JobStatusCompleted {
		return nil, fmt.Errorf("migration %s is completed: %w", migrationID, apperrors.ErrInvalidTransition)
	}
	if strings.TrimSpace(upload.Filename) == "" || upload.Content == nil {
		return nil, fmt.Errorf("export file is required: %w", apperrors.ErrValidation)
	}
	if s.maxUploadBytes > 0 && upload.Size > s.maxUploadBytes {
		return nil, fmt.Errorf("export file is %d bytes, limit is %d: %w", upload.Size, s.maxUploadBytes, apperrors.ErrValidation)
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	fileID := uuid.NewString()
	key := exportObjectKey(migrationID, fileID, upload.Filename)
	if err := s.store.Put(ctx, key, upload.Content, upload.Size, contentType); err != nil {
		s.LogError(ctx, err, "Failed to store export file",
			slog.String("migration_id", migrationID),
			slog.String("storage_key", key))
		return nil, fmt.Errorf("failed to store export file: %w", err)
	}

	file := domain.ExportFile{
		FileID:       fileID,
		MigrationID:  migrationID,
		Filename:     upload.Filename,
		FileSize:     upload.Size,
		ContentType:  contentType,
		StorageKey:   key,
		UploadStatus: domain.FileStatusUploaded,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.artifactRepo.SaveExportFile(ctx, file); err != nil {
		s.LogError(ctx, err, "Failed to record export file", slog.String("file_id", fileID))
		return nil, err
	}

	s.LogInfo(ctx, "Export file uploaded",
		slog.String("migration_id", migrationID),
		slog.String("file_id", fileID),
		slog.Int64("file_size", upload.Size))
	return &file, nil
}

func (s *exportService) ParseExport(ctx context.Context, migrationID string, fileID string, userID string) (*dto.ParseExportResponse, error) {
	ctx, span := tracer.Start(ctx, "ExportService.ParseExport")
	defer span.End()
	span.SetAttributes(attribute.String("migration.id", migrationID), attribute.String("file.id", fileID))

	job, err := s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID)
	if err != nil {
		return nil, err
	}
	file, err := s.artifactRepo.FindExportFile(ctx, migrationID, fileID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find export file", slog.String("file_id", fileID))
		return nil, err
	}

	var staleBefore time.Time
	if s.parseLease > 0 {
		staleBefore = time.Now().Add(-s.parseLease)
	}
	if err := s.migrationRepo.BeginParsing(ctx, migrationID, userID, staleBefore); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.metrics.RecordNormalization(observability.OutcomeConflict, 0)
		}
		s.LogError(ctx, err, "Cannot start parsing",
			slog.String("migration_id", migrationID),
			slog.String("status", string(job.Status)))
		return nil, err
	}

	outcome, err := s.runParse(ctx, job, file, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// the job must not stay in parsing even if the request was cancelled
		failCtx := context.WithoutCancel(ctx)
		if markErr := s.migrationRepo.MarkParseFailed(failCtx, migrationID, fileID, err.Error(), userID); markErr != nil {
			s.LogError(failCtx, markErr, "Failed to record parse failure", slog.String("migration_id", migrationID))
		}
		return nil, err
	}

	updated, err := s.migrationRepo.FindMigrationByID(ctx, migrationID)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Export parsed",
		slog.String("migration_id", migrationID),
		slog.String("file_id", fileID),
		slog.String("status", string(updated.Status)),
		slog.String("complexity", string(outcome.Assessment.Complexity)))

	return &dto.ParseExportResponse{
		Migration:  dto.ToMigrationResponse(updated),
		Summary:    outcome.Summary,
		Assessment: outcome.Assessment,
	}, nil
}

// runParse does everything after the job entered parsing. Any error it returns
// moves the job to error.
func (s *exportService) runParse(ctx context.Context, job *domain.MigrationJob, file *domain.ExportFile, userID string) (*domain.ParseOutcome, error) {
	data, err := s.store.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, apperrors.NewParseFailure(job.MigrationID, fmt.Errorf("failed to read export file: %w", err))
	}
	rawText, err := s.decoder.Decode(file.Filename, file.ContentType, data)
	if err != nil {
		return nil, apperrors.NewParseFailure(job.MigrationID, err)
	}

	entities, summary, err := s.normalizer.Normalize(ctx, job.MigrationID, rawText)
	if err != nil {
		return nil, err
	}

	assessment := s.analyzer.Assess(entities)
	content, err := json.Marshal(assessment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode complexity assessment: %w", err)
	}

	outcome := domain.ParseOutcome{
		MigrationID:    job.MigrationID,
		FileID:         file.FileID,
		SourceFilename: file.Filename,
		Entities:       entities,
		Summary:        summary,
		Assessment:     assessment,
		UserID:         userID,
	}
	analysis := domain.Analysis{
		AnalysisID:   uuid.NewString(),
		MigrationID:  job.MigrationID,
		AnalysisType: domain.AnalysisTypeComplexity,
		Content:      content,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.migrationRepo.SaveParseOutcome(ctx, outcome, analysis); err != nil {
		s.LogError(ctx, err, "Failed to save parse outcome",
			slog.String("migration_id", job.MigrationID),
			slog.Int("entity_count", len(entities)))
		return nil, fmt.Errorf("failed to save parse outcome: %w", err)
	}
	return &outcome, nil
}

func (s *exportService) ListEntities(ctx context.Context, migrationID string, userID string, params dto.ListEntitiesParams) (*dto.ListEntitiesResponse, error) {
	if _, err := s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultEntityPageSize
	}
	query := portsrepo.EntityQuery{Limit: limit + 1, OnlyFlagged: params.RequiresReview}
	if params.NextToken != nil && *params.NextToken != "" {
		after, err := pagination.DecodeRowIndexToken(*params.NextToken, migrationID)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, apperrors.ErrValidation)
		}
		query.AfterRowIndex = &after
	}

	entities, err := s.entityRepo.ListEntities(ctx, migrationID, query)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entities", slog.String("migration_id", migrationID))
		return nil, err
	}

	resp := &dto.ListEntitiesResponse{}
	if len(entities) > limit {
		entities = entities[:limit]
		token := pagination.EncodeRowIndexToken(migrationID, entities[limit-1].RowIndex)
		resp.NextToken = &token
	}
	resp.Entities = dto.ToEntityResponses(entities)
	return resp, nil
}

func (s *exportService) AssessMigration(ctx context.Context, migrationID string, userID string) (*domain.ComplexityAssessment, error) {
	if _, err := s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID); err != nil {
		return nil, err
	}
	entities, err := s.entityRepo.ListAllEntities(ctx, migrationID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load entities for assessment", slog.String("migration_id", migrationID))
		return nil, err
	}
	assessment := s.analyzer.Assess(entities)
	return &assessment, nil
}

func (s *exportService) ResolveReview(ctx context.Context, migrationID string, entityID string, userID string, req dto.ResolveReviewRequest) (*dto.ResolveReviewResponse, error) {
	if _, err := s.loadOwnedMigration(ctx, s.migrationRepo, migrationID, userID); err != nil {
		return nil, err
	}

	entity, err := s.entityRepo.FindEntityByID(ctx, migrationID, entityID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find entity", slog.String("entity_id", entityID))
		return nil, err
	}
	if !entity.RequiresReview {
		return nil, fmt.Errorf("entity %s is not flagged for review: %w", entityID, apperrors.ErrValidation)
	}

	resolved, err := s.entityRepo.ResolveEntityReview(ctx, migrationID, entityID, req.Notes, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve entity review", slog.String("entity_id", entityID))
		return nil, err
	}
	updated, err := s.migrationRepo.FindMigrationByID(ctx, migrationID)
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Entity review resolved",
		slog.String("migration_id", migrationID),
		slog.String("entity_id", entityID),
		slog.Int("remaining_reviews", updated.RequiresReviewCount))
	return &dto.ResolveReviewResponse{
		Entity:    dto.ToEntityResponse(resolved),
		Migration: dto.ToMigrationResponse(updated),
	}, nil
}
