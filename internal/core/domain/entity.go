package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// EntityType classifies a normalized ledger record.
type EntityType string

const (
	EntityTypeInvoice     EntityType = "Invoice"
	EntityTypeCustomer    EntityType = "Customer"
	EntityTypeAccount     EntityType = "Account"
	EntityTypeItem        EntityType = "Item"
	EntityTypeTransaction EntityType = "Transaction"
	EntityTypeVendor      EntityType = "Vendor"
	EntityTypeEmployee    EntityType = "Employee"
	EntityTypeClass       EntityType = "Class"
	EntityTypeLocation    EntityType = "Location"

	// EntityTypeUnknown marks rows whose type could not be matched to a supported one.
	// Such rows are always flagged for review.
	EntityTypeUnknown EntityType = "Unknown"
)

// SupportedEntityTypes lists the default closed set, in display order.
var SupportedEntityTypes = []EntityType{
	EntityTypeInvoice,
	EntityTypeCustomer,
	EntityTypeAccount,
	EntityTypeItem,
	EntityTypeTransaction,
	EntityTypeVendor,
	EntityTypeEmployee,
	EntityTypeClass,
	EntityTypeLocation,
}

// RequiresAmount reports whether records of this type must carry an amount and a date.
func (t EntityType) RequiresAmount() bool {
	return t == EntityTypeTransaction || t == EntityTypeInvoice
}

// RawRow is one loosely-typed candidate record as returned by an extractor.
// Nothing about its keys or value types is guaranteed.
type RawRow map[string]any

// MigrationEntity is one normalized record extracted from a legacy export.
type MigrationEntity struct {
	EntityID      string           `json:"entityID"`
	MigrationID   string           `json:"migrationID"`
	RowIndex      int              `json:"rowIndex"`
	EntityType    EntityType       `json:"entityType"`
	LegacyID      *string          `json:"legacyID,omitempty"`
	Name          *string          `json:"name,omitempty"`
	MappedAccount *string          `json:"mappedAccount,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Date          *string          `json:"date,omitempty"` // YYYY-MM-DD
	Memo          *string          `json:"memo,omitempty"`
	Notes         *string          `json:"notes,omitempty"`

	// RequiresReview is true iff ReviewReason is non-empty.
	RequiresReview bool    `json:"requiresReview"`
	ReviewReason   *string `json:"reviewReason,omitempty"`

	// Raw is the row as returned by the extraction collaborator.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// ParseSummary aggregates one normalization run.
type ParseSummary struct {
	TotalRows      int                `json:"totalRows"`
	RequiresReview int                `json:"requiresReview"`
	EntityTypes    map[EntityType]int `json:"entityTypes"`
	Warnings       []string           `json:"warnings"`
}
