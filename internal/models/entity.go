package models

import "github.com/shopspring/decimal"

// MigrationEntity is the row shape of the migration_entities table.
type MigrationEntity struct {
	EntityID       string              `db:"entity_id"`
	MigrationID    string              `db:"migration_id"`
	RowIndex       int                 `db:"row_index"`
	EntityType     string              `db:"entity_type"`
	LegacyID       *string             `db:"legacy_id"`
	Name           *string             `db:"name"`
	MappedAccount  *string             `db:"mapped_account"`
	Amount         decimal.NullDecimal `db:"amount"`
	EntityDate     *string             `db:"entity_date"`
	Memo           *string             `db:"memo"`
	Notes          *string             `db:"notes"`
	RequiresReview bool                `db:"requires_review"`
	ReviewReason   *string             `db:"review_reason"`
	Raw            []byte              `db:"raw"`
}
