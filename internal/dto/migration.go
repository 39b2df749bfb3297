package dto

import (
	"time"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

// CreateMigrationRequest is the intake questionnaire that opens a migration.
type CreateMigrationRequest struct {
	CurrentSoftware              string   `json:"currentSoftware" binding:"required,max=200"`
	TargetSoftware               string   `json:"targetSoftware" binding:"required,max=200"`
	Urgency                      string   `json:"urgency" binding:"required,urgency"`
	DataPreservationRequirements []string `json:"dataPreservationRequirements" binding:"required,min=1,dive,required"`
	AdditionalNotes              *string  `json:"additionalNotes,omitempty" binding:"omitempty,max=4000"`
}

// MigrationResponse defines the data returned for a migration job.
type MigrationResponse struct {
	MigrationID         string    `json:"migrationID"`
	Status              string    `json:"status"`
	SourceSoftware      string    `json:"sourceSoftware"`
	TargetSoftware      string    `json:"targetSoftware"`
	Urgency             string    `json:"urgency"`
	SourceFilename      *string   `json:"sourceFilename,omitempty"`
	TotalRows           int       `json:"totalRows"`
	RequiresReviewCount int       `json:"requiresReviewCount"`
	ErrorMessage        *string   `json:"errorMessage,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	LastUpdatedAt       time.Time `json:"lastUpdatedAt"`
}

// ToMigrationResponse converts a domain.MigrationJob to MigrationResponse DTO.
func ToMigrationResponse(m *domain.MigrationJob) MigrationResponse {
	return MigrationResponse{
		MigrationID:         m.MigrationID,
		Status:              string(m.Status),
		SourceSoftware:      m.SourceSoftware,
		TargetSoftware:      m.TargetSoftware,
		Urgency:             string(m.Urgency),
		SourceFilename:      m.SourceFilename,
		TotalRows:           m.TotalRows,
		RequiresReviewCount: m.RequiresReviewCount,
		ErrorMessage:        m.ErrorMessage,
		CreatedAt:           m.CreatedAt,
		LastUpdatedAt:       m.LastUpdatedAt,
	}
}

// MigrationWithProgressResponse is one row of the migrations listing.
type MigrationWithProgressResponse struct {
	Migration MigrationResponse `json:"migration"`
	Progress  domain.Progress   `json:"progress"`
}

// ListMigrationsParams defines paging for the migrations listing.
type ListMigrationsParams struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ListMigrationsResponse wraps the migrations listing.
type ListMigrationsResponse struct {
	Migrations []MigrationWithProgressResponse `json:"migrations"`
}

// ToListMigrationsResponse converts domain rows to the listing DTO.
func ToListMigrationsResponse(items []domain.MigrationWithProgress) ListMigrationsResponse {
	res := ListMigrationsResponse{Migrations: make([]MigrationWithProgressResponse, len(items))}
	for i := range items {
		res.Migrations[i] = MigrationWithProgressResponse{
			Migration: ToMigrationResponse(&items[i].Migration),
			Progress:  items[i].Progress,
		}
	}
	return res
}

// MigrationDetailResponse is the full lifecycle view of one migration.
type MigrationDetailResponse struct {
	Migration MigrationResponse      `json:"migration"`
	Intake    *domain.IntakeResponse `json:"intake,omitempty"`
	Files     []domain.ExportFile    `json:"files"`
	Analyses  []domain.Analysis      `json:"analyses"`
	Progress  domain.Progress        `json:"progress"`
}

// ToMigrationDetailResponse converts a domain.MigrationDetail to its DTO.
func ToMigrationDetailResponse(d *domain.MigrationDetail) MigrationDetailResponse {
	files := d.Files
	if files == nil {
		files = []domain.ExportFile{}
	}
	analyses := d.Analyses
	if analyses == nil {
		analyses = []domain.Analysis{}
	}
	return MigrationDetailResponse{
		Migration: ToMigrationResponse(&d.Migration),
		Intake:    d.Intake,
		Files:     files,
		Analyses:  analyses,
		Progress:  d.Progress,
	}
}
