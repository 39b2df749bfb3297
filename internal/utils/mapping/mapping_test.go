package mapping

import (
	"testing"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationEntityMapping_Amount(t *testing.T) {
	amount := decimal.RequireFromString("-1250.50")
	d := domain.MigrationEntity{EntityID: "e1", EntityType: domain.EntityTypeTransaction, Amount: &amount}

	m := ToModelMigrationEntity(d)
	assert.True(t, m.Amount.Valid)
	assert.Equal(t, "{}", string(m.Raw))

	back := ToDomainMigrationEntity(m)
	require.NotNil(t, back.Amount)
	assert.True(t, amount.Equal(*back.Amount))
	assert.Equal(t, domain.EntityTypeTransaction, back.EntityType)
}

func TestMigrationEntityMapping_NoAmount(t *testing.T) {
	m := ToModelMigrationEntity(domain.MigrationEntity{EntityID: "e1", Raw: []byte(`{"name":"Acme"}`)})

	assert.False(t, m.Amount.Valid)
	assert.Nil(t, ToDomainMigrationEntity(m).Amount)
	assert.JSONEq(t, `{"name":"Acme"}`, string(m.Raw))
}

func TestIntakeMapping_NilRequirements(t *testing.T) {
	m := ToModelIntakeResponse(domain.IntakeResponse{IntakeID: "i1", Urgency: domain.UrgencyHigh})

	assert.NotNil(t, m.DataPreservationRequirements)
	assert.Equal(t, "high", m.Urgency)
}
