package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/core/ports/gateways"
	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/core/rules"
	"github.com/SscSPs/ledger_migrator/internal/platform/observability"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type exportNormalizer struct {
	BaseService
	extractor gateways.Extractor
	validator *rules.EntityValidator
	metrics   *observability.Metrics
}

// NewExportNormalizer creates the normalizer over an extraction collaborator.
// metrics may be nil.
func NewExportNormalizer(extractor gateways.Extractor, validator *rules.EntityValidator, metrics *observability.Metrics) portssvc.ExportNormalizerSvc {
	return &exportNormalizer{
		extractor: extractor,
		validator: validator,
		metrics:   metrics,
	}
}

var _ portssvc.ExportNormalizerSvc = (*exportNormalizer)(nil)

func (s *exportNormalizer) Normalize(ctx context.Context, migrationID string, rawText string) ([]domain.MigrationEntity, domain.ParseSummary, error) {
	ctx, span := tracer.Start(ctx, "ExportNormalizer.Normalize")
	defer span.End()
	span.SetAttributes(
		attribute.String("migration.id", migrationID),
		attribute.String("extractor", s.extractor.Name()),
	)
	start := time.Now()

	rows, err := s.extractor.Extract(ctx, rawText)
	if err != nil {
		s.metrics.IncrExtractionError(s.extractor.Name())
		s.metrics.RecordNormalization(observability.OutcomeFailure, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.LogError(ctx, err, "Extraction failed",
			slog.String("migration_id", migrationID),
			slog.String("extractor", s.extractor.Name()))
		return nil, domain.ParseSummary{}, apperrors.NewParseFailure(migrationID, err)
	}

	entities := make([]domain.MigrationEntity, 0, len(rows))
	for i, row := range rows {
		entity := s.validator.ValidateRow(migrationID, i, row)
		entity.EntityID = uuid.NewString()
		entities = append(entities, entity)
	}
	summary := rules.BuildSummary(entities)

	s.metrics.RecordSummary(summary)
	s.metrics.RecordNormalization(observability.OutcomeSuccess, time.Since(start))
	span.SetAttributes(
		attribute.Int("entities.total", summary.TotalRows),
		attribute.Int("entities.flagged", summary.RequiresReview),
	)
	s.LogInfo(ctx, "Export normalized",
		slog.String("migration_id", migrationID),
		slog.Int("entity_count", summary.TotalRows),
		slog.Int("requires_review", summary.RequiresReview))

	return entities, summary, nil
}
