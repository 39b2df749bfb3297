package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
)

const testJWTSecret = "test-secret-key-that-is-long-enough"

// generateTestToken creates a signed HS256 token for userID.
func generateTestToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    "ledger-migrator-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
}

// --- Mock MigrationService ---
type MockMigrationService struct {
	mock.Mock
}

func (m *MockMigrationService) CreateMigration(ctx context.Context, req dto.CreateMigrationRequest, userID string) (*domain.MigrationJob, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MigrationJob), args.Error(1)
}

func (m *MockMigrationService) GetMigration(ctx context.Context, migrationID string, userID string) (*domain.MigrationJob, error) {
	args := m.Called(ctx, migrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MigrationJob), args.Error(1)
}

func (m *MockMigrationService) GetMigrationDetail(ctx context.Context, migrationID string, userID string) (*domain.MigrationDetail, error) {
	args := m.Called(ctx, migrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MigrationDetail), args.Error(1)
}

func (m *MockMigrationService) ListMigrations(ctx context.Context, userID string, params dto.ListMigrationsParams) ([]domain.MigrationWithProgress, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MigrationWithProgress), args.Error(1)
}

func (m *MockMigrationService) GetProgress(ctx context.Context, migrationID string, userID string) (*domain.Progress, error) {
	args := m.Called(ctx, migrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Progress), args.Error(1)
}

func (m *MockMigrationService) CompleteMigration(ctx context.Context, migrationID string, userID string) (*domain.MigrationJob, error) {
	args := m.Called(ctx, migrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MigrationJob), args.Error(1)
}

var _ portssvc.MigrationSvcFacade = (*MockMigrationService)(nil)

// --- Mock ExportService ---
type MockExportService struct {
	mock.Mock
	uploaded []byte
}

func (m *MockExportService) UploadExport(ctx context.Context, migrationID string, userID string, upload dto.ExportUpload) (*domain.ExportFile, error) {
	if upload.Content != nil {
		m.uploaded, _ = io.ReadAll(upload.Content)
	}
	upload.Content = nil
	args := m.Called(ctx, migrationID, userID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportFile), args.Error(1)
}

func (m *MockExportService) ParseExport(ctx context.Context, migrationID string, fileID string, userID string) (*dto.ParseExportResponse, error) {
	args := m.Called(ctx, migrationID, fileID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ParseExportResponse), args.Error(1)
}

func (m *MockExportService) ListEntities(ctx context.Context, migrationID string, userID string, params dto.ListEntitiesParams) (*dto.ListEntitiesResponse, error) {
	args := m.Called(ctx, migrationID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntitiesResponse), args.Error(1)
}

func (m *MockExportService) AssessMigration(ctx context.Context, migrationID string, userID string) (*domain.ComplexityAssessment, error) {
	args := m.Called(ctx, migrationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ComplexityAssessment), args.Error(1)
}

func (m *MockExportService) ResolveReview(ctx context.Context, migrationID string, entityID string, userID string, req dto.ResolveReviewRequest) (*dto.ResolveReviewResponse, error) {
	args := m.Called(ctx, migrationID, entityID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ResolveReviewResponse), args.Error(1)
}

var _ portssvc.ExportSvcFacade = (*MockExportService)(nil)
