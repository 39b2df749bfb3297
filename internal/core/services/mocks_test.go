package services_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_migrator/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock MigrationRepository ---
type MockMigrationRepository struct {
	mock.Mock
}

func (m *MockMigrationRepository) FindMigrationByID(ctx context.Context, migrationID string) (*domain.MigrationJob, error) {
	args := m.Called(ctx, migrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MigrationJob), args.Error(1)
}

func (m *MockMigrationRepository) ListMigrationsByUser(ctx context.Context, userID string, limit int, offset int) ([]domain.MigrationJob, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MigrationJob), args.Error(1)
}

func (m *MockMigrationRepository) GetArtifactPresence(ctx context.Context, migrationID string) (domain.ArtifactPresence, error) {
	args := m.Called(ctx, migrationID)
	return args.Get(0).(domain.ArtifactPresence), args.Error(1)
}

func (m *MockMigrationRepository) ListArtifactPresence(ctx context.Context, migrationIDs []string) (map[string]domain.ArtifactPresence, error) {
	args := m.Called(ctx, migrationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ArtifactPresence), args.Error(1)
}

func (m *MockMigrationRepository) CreateMigrationWithIntake(ctx context.Context, job domain.MigrationJob, intake domain.IntakeResponse) error {
	return m.Called(ctx, job, intake).Error(0)
}

func (m *MockMigrationRepository) BeginParsing(ctx context.Context, migrationID string, userID string, staleBefore time.Time) error {
	return m.Called(ctx, migrationID, userID, staleBefore).Error(0)
}

func (m *MockMigrationRepository) SaveParseOutcome(ctx context.Context, outcome domain.ParseOutcome, analysis domain.Analysis) error {
	return m.Called(ctx, outcome, analysis).Error(0)
}

func (m *MockMigrationRepository) MarkParseFailed(ctx context.Context, migrationID string, fileID string, message string, userID string) error {
	return m.Called(ctx, migrationID, fileID, message, userID).Error(0)
}

func (m *MockMigrationRepository) TransitionStatus(ctx context.Context, migrationID string, from domain.JobStatus, to domain.JobStatus, userID string) error {
	return m.Called(ctx, migrationID, from, to, userID).Error(0)
}

// --- Mock EntityRepository ---
type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) ListEntities(ctx context.Context, migrationID string, query portsrepo.EntityQuery) ([]domain.MigrationEntity, error) {
	args := m.Called(ctx, migrationID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MigrationEntity), args.Error(1)
}

func (m *MockEntityRepository) ListAllEntities(ctx context.Context, migrationID string) ([]domain.MigrationEntity, error) {
	args := m.Called(ctx, migrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MigrationEntity), args.Error(1)
}

func (m *MockEntityRepository) FindEntityByID(ctx context.Context, migrationID string, entityID string) (*domain.MigrationEntity, error) {
	args := m.Called(ctx, migrationID, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MigrationEntity), args.Error(1)
}

func (m *MockEntityRepository) ResolveEntityReview(ctx context.Context, migrationID string, entityID string, notes *string, userID string) (*domain.MigrationEntity, error) {
	args := m.Called(ctx, migrationID, entityID, notes, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MigrationEntity), args.Error(1)
}

// --- Mock ArtifactRepository ---
type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) FindIntakeByMigrationID(ctx context.Context, migrationID string) (*domain.IntakeResponse, error) {
	args := m.Called(ctx, migrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntakeResponse), args.Error(1)
}

func (m *MockArtifactRepository) FindExportFile(ctx context.Context, migrationID string, fileID string) (*domain.ExportFile, error) {
	args := m.Called(ctx, migrationID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportFile), args.Error(1)
}

func (m *MockArtifactRepository) ListExportFiles(ctx context.Context, migrationID string) ([]domain.ExportFile, error) {
	args := m.Called(ctx, migrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExportFile), args.Error(1)
}

func (m *MockArtifactRepository) ListAnalyses(ctx context.Context, migrationID string) ([]domain.Analysis, error) {
	args := m.Called(ctx, migrationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Analysis), args.Error(1)
}

func (m *MockArtifactRepository) SaveExportFile(ctx context.Context, file domain.ExportFile) error {
	return m.Called(ctx, file).Error(0)
}

// --- Mock ExportStore ---
type MockExportStore struct {
	mock.Mock
}

func (m *MockExportStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, content, size, contentType).Error(0)
}

func (m *MockExportStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExportStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// --- Mock Extractor ---
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, rawText string) ([]domain.RawRow, error) {
	args := m.Called(ctx, rawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRow), args.Error(1)
}

func (m *MockExtractor) Name() string {
	return "mock"
}
