package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/dto"
	"github.com/SscSPs/ledger_migrator/internal/handlers"
	"github.com/SscSPs/ledger_migrator/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ExportHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockExportService
	userID      string
	token       string
}

func (suite *ExportHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.Use(middleware.AuthMiddleware(testJWTSecret))

	suite.mockService = new(MockExportService)
	handlers.RegisterExportRoutes(suite.router.Group("/api/v1"), suite.mockService, 1024)

	suite.userID = uuid.NewString()
	token, err := generateTestToken(suite.userID)
	suite.Require().NoError(err)
	suite.token = token
}

func (suite *ExportHandlerTestSuite) doJSON(method, url string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Authorization", "Bearer "+suite.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ExportHandlerTestSuite) doUpload(filename string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/migrations/mig-1/files", &buf)
	req.Header.Set("Authorization", "Bearer "+suite.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ExportHandlerTestSuite) TestUploadExport_Success() {
	content := []byte("!ACCNT\tNAME\nACCNT\tChecking\n")
	suite.mockService.On("UploadExport", mock.Anything, "mig-1", suite.userID,
		mock.MatchedBy(func(u dto.ExportUpload) bool {
			return u.Filename == "books.iif" && u.Size == int64(len(content))
		}),
	).Return(&domain.ExportFile{FileID: "file-1", MigrationID: "mig-1", Filename: "books.iif", UploadStatus: domain.FileStatusUploaded}, nil).Once()

	w := suite.doUpload("books.iif", content)

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal(content, suite.mockService.uploaded)
	suite.Contains(w.Body.String(), `"uploadStatus":"uploaded"`)
}

func (suite *ExportHandlerTestSuite) TestUploadExport_MissingFile() {
	w := suite.doJSON(http.MethodPost, "/api/v1/migrations/mig-1/files", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "UploadExport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExportHandlerTestSuite) TestUploadExport_TooLarge() {
	suite.mockService.On("UploadExport", mock.Anything, "mig-1", suite.userID, mock.Anything).
		Return(nil, fmt.Errorf("export file is 2048 bytes, limit is 1024: %w", apperrors.ErrValidation)).Maybe()

	w := suite.doUpload("big.csv", bytes.Repeat([]byte("a"), 2<<20))

	suite.Equal(http.StatusRequestEntityTooLarge, w.Code)
}

func (suite *ExportHandlerTestSuite) TestParseExport_Success() {
	fileID := uuid.NewString()
	suite.mockService.On("ParseExport", mock.Anything, "mig-1", fileID, suite.userID).Return(&dto.ParseExportResponse{
		Migration:  dto.MigrationResponse{MigrationID: "mig-1", Status: string(domain.JobStatusParsed)},
		Summary:    domain.ParseSummary{TotalRows: 3, EntityTypes: map[domain.EntityType]int{domain.EntityTypeCustomer: 3}, Warnings: []string{}},
		Assessment: domain.ComplexityAssessment{Complexity: domain.ComplexitySimple, EstimatedHours: 2},
	}, nil).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/migrations/mig-1/parse", dto.ParseExportRequest{FileID: fileID})

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"complexity":"simple"`)
}

func (suite *ExportHandlerTestSuite) TestParseExport_ErrorMapping() {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", fmt.Errorf("migration mig-1: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"already parsing", fmt.Errorf("busy: %w", apperrors.ErrConflict), http.StatusConflict},
		{"completed job", fmt.Errorf("done: %w", apperrors.ErrInvalidTransition), http.StatusConflict},
		{"duplicate file", fmt.Errorf("export file f-1: %w", apperrors.ErrDuplicate), http.StatusConflict},
		{"unauthorized", fmt.Errorf("token revoked: %w", apperrors.ErrUnauthorized), http.StatusUnauthorized},
		{"extraction failed", apperrors.NewParseFailure("mig-1", errors.New("upstream timeout")), http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			fileID := uuid.NewString()
			suite.mockService.On("ParseExport", mock.Anything, "mig-1", fileID, suite.userID).Return(nil, tt.err).Once()

			w := suite.doJSON(http.MethodPost, "/api/v1/migrations/mig-1/parse", dto.ParseExportRequest{FileID: fileID})

			suite.Equal(tt.code, w.Code)
		})
	}
}

func (suite *ExportHandlerTestSuite) TestParseExport_FailureCarriesMessage() {
	fileID := uuid.NewString()
	suite.mockService.On("ParseExport", mock.Anything, "mig-1", fileID, suite.userID).
		Return(nil, apperrors.NewParseFailure("mig-1", errors.New("extraction output is not a list of rows"))).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/migrations/mig-1/parse", dto.ParseExportRequest{FileID: fileID})

	suite.Equal(http.StatusBadGateway, w.Code)
	suite.Contains(w.Body.String(), "extraction output is not a list of rows")
}

func (suite *ExportHandlerTestSuite) TestParseExport_RequiresFileID() {
	w := suite.doJSON(http.MethodPost, "/api/v1/migrations/mig-1/parse", map[string]string{})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ExportHandlerTestSuite) TestListEntities_BindsQuery() {
	token := "abc"
	params := dto.ListEntitiesParams{Limit: 50, NextToken: &token, RequiresReview: true}
	suite.mockService.On("ListEntities", mock.Anything, "mig-1", suite.userID, params).
		Return(&dto.ListEntitiesResponse{Entities: []dto.EntityResponse{{EntityID: "e1", RequiresReview: true}}}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/migrations/mig-1/entities?limit=50&nextToken=abc&requiresReview=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *ExportHandlerTestSuite) TestListEntities_LimitOutOfRange() {
	w := suite.doJSON(http.MethodGet, "/api/v1/migrations/mig-1/entities?limit=5000", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ExportHandlerTestSuite) TestResolveReview_WithoutBody() {
	suite.mockService.On("ResolveReview", mock.Anything, "mig-1", "ent-1", suite.userID, dto.ResolveReviewRequest{}).
		Return(&dto.ResolveReviewResponse{Entity: dto.EntityResponse{EntityID: "ent-1"}}, nil).Once()

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/migrations/mig-1/entities/ent-1/resolve", nil)
	req.Header.Set("Authorization", "Bearer "+suite.token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
}

func (suite *ExportHandlerTestSuite) TestResolveReview_NotFlagged() {
	notes := "checked"
	suite.mockService.On("ResolveReview", mock.Anything, "mig-1", "ent-1", suite.userID, dto.ResolveReviewRequest{Notes: &notes}).
		Return(nil, fmt.Errorf("entity ent-1 is not flagged for review: %w", apperrors.ErrValidation)).Once()

	w := suite.doJSON(http.MethodPost, "/api/v1/migrations/mig-1/entities/ent-1/resolve", dto.ResolveReviewRequest{Notes: &notes})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ExportHandlerTestSuite) TestGetAssessment() {
	suite.mockService.On("AssessMigration", mock.Anything, "mig-1", suite.userID).
		Return(&domain.ComplexityAssessment{Complexity: domain.ComplexityModerate, EstimatedHours: 4, Risks: []string{}, Recommendations: []string{}}, nil).Once()

	w := suite.doJSON(http.MethodGet, "/api/v1/migrations/mig-1/assessment", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"estimatedHours":4`)
}

func TestExportHandler(t *testing.T) {
	suite.Run(t, new(ExportHandlerTestSuite))
}
