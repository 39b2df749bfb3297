package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/core/rules"
	"github.com/SscSPs/ledger_migrator/internal/core/services"
	"github.com/SscSPs/ledger_migrator/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MigrationServiceTestSuite struct {
	suite.Suite
	migrationRepo *MockMigrationRepository
	artifactRepo  *MockArtifactRepository
	service       portssvc.MigrationSvcFacade
	ctx           context.Context
	userID        string
}

func (suite *MigrationServiceTestSuite) SetupTest() {
	suite.migrationRepo = new(MockMigrationRepository)
	suite.artifactRepo = new(MockArtifactRepository)
	suite.service = services.NewMigrationService(suite.migrationRepo, suite.artifactRepo, rules.NewLifecycleTracker(rules.DefaultTrackerConfig()))
	suite.ctx = context.Background()
	suite.userID = "user-1"
}

func (suite *MigrationServiceTestSuite) TestCreateMigration_Success() {
	req := dto.CreateMigrationRequest{
		CurrentSoftware:              "QuickBooks Desktop",
		TargetSoftware:               "Xero",
		Urgency:                      " High ",
		DataPreservationRequirements: []string{"invoices", "customers"},
	}
	suite.migrationRepo.On("CreateMigrationWithIntake", suite.ctx,
		mock.MatchedBy(func(job domain.MigrationJob) bool {
			return job.Status == domain.JobStatusPending &&
				job.Urgency == domain.UrgencyHigh &&
				job.UserID == suite.userID &&
				job.SourceSoftware == "QuickBooks Desktop"
		}),
		mock.MatchedBy(func(intake domain.IntakeResponse) bool {
			return intake.Urgency == domain.UrgencyHigh && len(intake.DataPreservationRequirements) == 2
		}),
	).Return(nil).Once()

	job, err := suite.service.CreateMigration(suite.ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.NotEmpty(job.MigrationID)
	suite.Equal(domain.JobStatusPending, job.Status)
	suite.Equal(0, job.TotalRows)
	suite.migrationRepo.AssertExpectations(suite.T())
}

func (suite *MigrationServiceTestSuite) TestCreateMigration_InvalidUrgency() {
	_, err := suite.service.CreateMigration(suite.ctx, dto.CreateMigrationRequest{Urgency: "yesterday"}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.migrationRepo.AssertNotCalled(suite.T(), "CreateMigrationWithIntake", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *MigrationServiceTestSuite) TestGetMigration_OtherUserIsNotFound() {
	suite.migrationRepo.On("FindMigrationByID", suite.ctx, "mig-1").
		Return(&domain.MigrationJob{MigrationID: "mig-1", UserID: "user-2"}, nil).Once()

	job, err := suite.service.GetMigration(suite.ctx, "mig-1", suite.userID)

	suite.Nil(job)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *MigrationServiceTestSuite) TestGetMigrationDetail_WithoutIntake() {
	job := &domain.MigrationJob{MigrationID: "mig-1", UserID: suite.userID, Status: domain.JobStatusParsed, Urgency: domain.UrgencyMedium}
	suite.migrationRepo.On("FindMigrationByID", suite.ctx, "mig-1").Return(job, nil).Once()
	suite.artifactRepo.On("FindIntakeByMigrationID", mock.Anything, "mig-1").Return(nil, apperrors.ErrNotFound).Once()
	suite.artifactRepo.On("ListExportFiles", mock.Anything, "mig-1").Return([]domain.ExportFile{{FileID: "file-1"}}, nil).Once()
	suite.artifactRepo.On("ListAnalyses", mock.Anything, "mig-1").Return([]domain.Analysis{}, nil).Once()

	detail, err := suite.service.GetMigrationDetail(suite.ctx, "mig-1", suite.userID)

	suite.Require().NoError(err)
	suite.Nil(detail.Intake)
	suite.Len(detail.Files, 1)
	suite.Equal(1, detail.Progress.CompletedSteps)
	suite.Equal(domain.StepFilesUploaded, detail.Progress.CurrentStep)
}

func (suite *MigrationServiceTestSuite) TestGetMigrationDetail_ArtifactFailure() {
	job := &domain.MigrationJob{MigrationID: "mig-1", UserID: suite.userID}
	suite.migrationRepo.On("FindMigrationByID", suite.ctx, "mig-1").Return(job, nil).Once()
	suite.artifactRepo.On("FindIntakeByMigrationID", mock.Anything, "mig-1").Return(&domain.IntakeResponse{}, nil).Maybe()
	suite.artifactRepo.On("ListExportFiles", mock.Anything, "mig-1").Return(nil, errDBUnavailable).Once()
	suite.artifactRepo.On("ListAnalyses", mock.Anything, "mig-1").Return([]domain.Analysis{}, nil).Maybe()

	_, err := suite.service.GetMigrationDetail(suite.ctx, "mig-1", suite.userID)

	suite.ErrorIs(err, errDBUnavailable)
}

func (suite *MigrationServiceTestSuite) TestListMigrations_ComputesProgress() {
	jobs := []domain.MigrationJob{
		{MigrationID: "mig-1", UserID: suite.userID, Status: domain.JobStatusCompleted, Urgency: domain.UrgencyLow},
		{MigrationID: "mig-2", UserID: suite.userID, Status: domain.JobStatusPending, Urgency: domain.UrgencyMedium},
	}
	suite.migrationRepo.On("ListMigrationsByUser", suite.ctx, suite.userID, 20, 0).Return(jobs, nil).Once()
	suite.migrationRepo.On("ListArtifactPresence", suite.ctx, []string{"mig-1", "mig-2"}).Return(map[string]domain.ArtifactPresence{
		"mig-1": {HasIntake: true, FileCount: 1, AnalysisCount: 1},
		"mig-2": {HasIntake: true},
	}, nil).Once()

	items, err := suite.service.ListMigrations(suite.ctx, suite.userID, dto.ListMigrationsParams{})

	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal(100, items[0].Progress.Percentage)
	suite.Nil(items[0].Progress.EstimatedTimeRemaining)
	suite.Equal(25, items[1].Progress.Percentage)
	suite.Equal(domain.StepIntakeSubmitted, items[1].Progress.CurrentStep)
}

func (suite *MigrationServiceTestSuite) TestListMigrations_Empty() {
	suite.migrationRepo.On("ListMigrationsByUser", suite.ctx, suite.userID, 5, 10).Return([]domain.MigrationJob{}, nil).Once()

	items, err := suite.service.ListMigrations(suite.ctx, suite.userID, dto.ListMigrationsParams{Limit: 5, Offset: 10})

	suite.Require().NoError(err)
	suite.NotNil(items)
	suite.Empty(items)
	suite.migrationRepo.AssertNotCalled(suite.T(), "ListArtifactPresence", mock.Anything, mock.Anything)
}

func (suite *MigrationServiceTestSuite) TestGetProgress() {
	job := &domain.MigrationJob{MigrationID: "mig-1", UserID: suite.userID, Status: domain.JobStatusParsed, Urgency: domain.UrgencyHigh}
	suite.migrationRepo.On("FindMigrationByID", suite.ctx, "mig-1").Return(job, nil).Once()
	suite.migrationRepo.On("GetArtifactPresence", suite.ctx, "mig-1").Return(domain.ArtifactPresence{HasIntake: true, FileCount: 2}, nil).Once()

	progress, err := suite.service.GetProgress(suite.ctx, "mig-1", suite.userID)

	suite.Require().NoError(err)
	suite.Equal(50, progress.Percentage)
	suite.Equal("3 days", *progress.EstimatedTimeRemaining)
}

func (suite *MigrationServiceTestSuite) TestCompleteMigration_Success() {
	job := &domain.MigrationJob{MigrationID: "mig-1", UserID: suite.userID, Status: domain.JobStatusParsed}
	done := *job
	done.Status = domain.JobStatusCompleted
	suite.migrationRepo.On("FindMigrationByID", suite.ctx, "mig-1").Return(job, nil).Once()
	suite.migrationRepo.On("TransitionStatus", suite.ctx, "mig-1", domain.JobStatusParsed, domain.JobStatusCompleted, suite.userID).Return(nil).Once()
	suite.migrationRepo.On("FindMigrationByID", suite.ctx, "mig-1").Return(&done, nil).Once()

	completed, err := suite.service.CompleteMigration(suite.ctx, "mig-1", suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.JobStatusCompleted, completed.Status)
	suite.migrationRepo.AssertExpectations(suite.T())
}

func (suite *MigrationServiceTestSuite) TestCompleteMigration_RejectsUnparsed() {
	for _, status := range []domain.JobStatus{domain.JobStatusPending, domain.JobStatusParsing, domain.JobStatusReviewRequired, domain.JobStatusError, domain.JobStatusCompleted} {
		suite.migrationRepo.On("FindMigrationByID", suite.ctx, "mig-1").
			Return(&domain.MigrationJob{MigrationID: "mig-1", UserID: suite.userID, Status: status}, nil).Once()

		_, err := suite.service.CompleteMigration(suite.ctx, "mig-1", suite.userID)

		suite.ErrorIs(err, apperrors.ErrInvalidTransition, string(status))
	}
	suite.migrationRepo.AssertNotCalled(suite.T(), "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMigrationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MigrationServiceTestSuite))
}
