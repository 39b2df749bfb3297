package mapping

import (
	"encoding/json"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/models"
	"github.com/shopspring/decimal"
)

// ToModelMigrationEntity converts a domain MigrationEntity to a model MigrationEntity
func ToModelMigrationEntity(d domain.MigrationEntity) models.MigrationEntity {
	m := models.MigrationEntity{
		EntityID:       d.EntityID,
		MigrationID:    d.MigrationID,
		RowIndex:       d.RowIndex,
		EntityType:     string(d.EntityType),
		LegacyID:       d.LegacyID,
		Name:           d.Name,
		MappedAccount:  d.MappedAccount,
		EntityDate:     d.Date,
		Memo:           d.Memo,
		Notes:          d.Notes,
		RequiresReview: d.RequiresReview,
		ReviewReason:   d.ReviewReason,
		Raw:            d.Raw,
	}
	if d.Amount != nil {
		m.Amount = decimal.NewNullDecimal(*d.Amount)
	}
	if len(m.Raw) == 0 {
		m.Raw = []byte("{}")
	}
	return m
}

// ToDomainMigrationEntity converts a model MigrationEntity to a domain MigrationEntity
func ToDomainMigrationEntity(m models.MigrationEntity) domain.MigrationEntity {
	d := domain.MigrationEntity{
		EntityID:       m.EntityID,
		MigrationID:    m.MigrationID,
		RowIndex:       m.RowIndex,
		EntityType:     domain.EntityType(m.EntityType),
		LegacyID:       m.LegacyID,
		Name:           m.Name,
		MappedAccount:  m.MappedAccount,
		Date:           m.EntityDate,
		Memo:           m.Memo,
		Notes:          m.Notes,
		RequiresReview: m.RequiresReview,
		ReviewReason:   m.ReviewReason,
		Raw:            json.RawMessage(m.Raw),
	}
	if m.Amount.Valid {
		amount := m.Amount.Decimal
		d.Amount = &amount
	}
	return d
}

// ToDomainMigrationEntitySlice converts a slice of model entities to domain entities
func ToDomainMigrationEntitySlice(ms []models.MigrationEntity) []domain.MigrationEntity {
	ds := make([]domain.MigrationEntity, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMigrationEntity(m)
	}
	return ds
}
