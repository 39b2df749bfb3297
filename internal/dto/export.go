package dto

import (
	"io"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExportUpload carries an uploaded export file from the handler to the service.
type ExportUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ParseExportRequest selects which uploaded file to parse.
type ParseExportRequest struct {
	FileID string `json:"fileID" binding:"required,uuid"`
}

// ParseExportResponse is returned after a successful parse.
type ParseExportResponse struct {
	Migration  MigrationResponse           `json:"migration"`
	Summary    domain.ParseSummary         `json:"summary"`
	Assessment domain.ComplexityAssessment `json:"assessment"`
}

// EntityResponse defines the data returned for a migration entity.
type EntityResponse struct {
	EntityID       string           `json:"entityID"`
	RowIndex       int              `json:"rowIndex"`
	EntityType     string           `json:"entityType"`
	LegacyID       *string          `json:"legacyID,omitempty"`
	Name           *string          `json:"name,omitempty"`
	MappedAccount  *string          `json:"mappedAccount,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Date           *string          `json:"date,omitempty"`
	Memo           *string          `json:"memo,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	RequiresReview bool             `json:"requiresReview"`
	ReviewReason   *string          `json:"reviewReason,omitempty"`
}

// ToEntityResponse converts a domain.MigrationEntity to EntityResponse DTO.
func ToEntityResponse(e *domain.MigrationEntity) EntityResponse {
	return EntityResponse{
		EntityID:       e.EntityID,
		RowIndex:       e.RowIndex,
		EntityType:     string(e.EntityType),
		LegacyID:       e.LegacyID,
		Name:           e.Name,
		MappedAccount:  e.MappedAccount,
		Amount:         e.Amount,
		Date:           e.Date,
		Memo:           e.Memo,
		Notes:          e.Notes,
		RequiresReview: e.RequiresReview,
		ReviewReason:   e.ReviewReason,
	}
}

// ToEntityResponses converts a slice of domain entities.
func ToEntityResponses(entities []domain.MigrationEntity) []EntityResponse {
	res := make([]EntityResponse, len(entities))
	for i := range entities {
		res[i] = ToEntityResponse(&entities[i])
	}
	return res
}

// ListEntitiesParams defines cursor paging for the entity listing.
type ListEntitiesParams struct {
	Limit          int     `form:"limit" binding:"omitempty,min=1,max=1000"`
	NextToken      *string `form:"nextToken"`
	RequiresReview bool    `form:"requiresReview"`
}

// ListEntitiesResponse is one page of entities ordered by row index.
type ListEntitiesResponse struct {
	Entities  []EntityResponse `json:"entities"`
	NextToken *string          `json:"nextToken,omitempty"`
}

// ResolveReviewRequest clears an entity's review flag.
type ResolveReviewRequest struct {
	Notes *string `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// ResolveReviewResponse returns the resolved entity and the migration's updated counters.
type ResolveReviewResponse struct {
	Entity    EntityResponse    `json:"entity"`
	Migration MigrationResponse `json:"migration"`
}
