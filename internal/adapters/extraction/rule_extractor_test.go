package extraction

import (
	"context"
	"testing"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/core/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIIF = "!ACCNT\tNAME\tACCNTTYPE\tDESC\n" +
	"ACCNT\tChecking\tBANK\tMain account\n" +
	"!TRNS\tTRNSID\tTRNSTYPE\tDATE\tACCNT\tNAME\tAMOUNT\tDOCNUM\tMEMO\n" +
	"!SPL\tSPLID\tTRNSTYPE\tDATE\tACCNT\tNAME\tAMOUNT\tDOCNUM\tMEMO\n" +
	"!ENDTRNS\n" +
	"TRNS\t1\tINVOICE\t01/15/2024\tAccounts Receivable\tAcme\t1,250.00\t1001\tJanuary work\n" +
	"SPL\t2\tINVOICE\t01/15/2024\tIncome\tAcme\t-1,250.00\t1001\t\n" +
	"ENDTRNS\n" +
	"\n" +
	"!BUD\tACCNT\tAMOUNT\n" +
	"BUD\tIncome\t500\n"

func TestRuleExtractor_IIF(t *testing.T) {
	rows, err := NewRuleExtractor(nil).Extract(context.Background(), sampleIIF)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Account", rows[0]["entityType"])
	assert.Equal(t, "Checking", rows[0]["name"])
	assert.Equal(t, "Main account", rows[0]["memo"])

	assert.Equal(t, "Invoice", rows[1]["entityType"])
	assert.Equal(t, "Acme", rows[1]["name"])
	assert.Equal(t, "1001", rows[1]["legacyId"])
	assert.Equal(t, "Accounts Receivable", rows[1]["mappedAccount"])
	assert.Equal(t, "1,250.00", rows[1]["amount"])
	assert.Equal(t, "01/15/2024", rows[1]["date"])

	assert.Equal(t, "Transaction", rows[2]["entityType"])
	assert.Equal(t, "-1,250.00", rows[2]["amount"])
	assert.NotContains(t, rows[2], "memo")

	// unknown sections pass through so the validator can flag them
	assert.Equal(t, "BUD", rows[3]["entityType"])
	assert.Equal(t, "Income", rows[3]["mappedAccount"])
	assert.Equal(t, "500", rows[3]["amount"])
}

func TestRuleExtractor_IIFKeepsSourceColumns(t *testing.T) {
	rows, err := NewRuleExtractor(nil).Extract(context.Background(), sampleIIF)
	require.NoError(t, err)

	source, ok := rows[0][sourceKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "BANK", source["ACCNTTYPE"])
	assert.Equal(t, "ACCNT", source["SECTION"])
}

func TestRuleExtractor_IIFPositionalSections(t *testing.T) {
	text := "!ACCNT\nChecking\tBank\tOperating\t$1,000.00\n!CUST\nAcme\tAcme Corp\tJane\tDoe\t555-0100\tjane@acme.test\t$250.00\n"

	rows, err := NewRuleExtractor(nil).Extract(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Account", rows[0]["entityType"])
	assert.Equal(t, "Checking", rows[0]["name"])
	assert.Equal(t, "$1,000.00", rows[0]["amount"])

	assert.Equal(t, "Customer", rows[1]["entityType"])
	assert.Equal(t, "Acme", rows[1]["name"])
	assert.Equal(t, "$250.00", rows[1]["amount"])
}

func TestRuleExtractor_TransactionCSV(t *testing.T) {
	text := "Type,Date,Num,Name,Account,Memo,Amount\r\n" +
		"Invoice,01/15/2024,1001,Acme,Accounts Receivable,Jan,\"1,250.00\"\r\n" +
		"Payment,01/20/2024,,Acme,Checking,,\"(1,250.00)\"\r\n"

	rows, err := NewRuleExtractor(nil).Extract(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Invoice", rows[0]["entityType"])
	assert.Equal(t, "1001", rows[0]["legacyId"])
	assert.Equal(t, "Accounts Receivable", rows[0]["mappedAccount"])
	assert.Equal(t, "1,250.00", rows[0]["amount"])

	assert.Equal(t, "Transaction", rows[1]["entityType"])
	assert.NotContains(t, rows[1], "legacyId")
	assert.Equal(t, "(1,250.00)", rows[1]["amount"])
}

func TestRuleExtractor_TypeColumnUsesValidatorWhitelist(t *testing.T) {
	text := "Type,Date,Num,Name,Account,Memo,Amount\n" +
		"Invoice,01/15/2024,1001,Acme,Accounts Receivable,Jan,10.00\n"
	transactionsOnly := rules.NewEntityValidator(rules.ValidatorConfig{
		SupportedTypes: []domain.EntityType{domain.EntityTypeTransaction},
	})

	rows, err := NewRuleExtractor(transactionsOnly).Extract(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Transaction", rows[0]["entityType"])
}

func TestRuleExtractor_ListCSVLayouts(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantType domain.EntityType
		wantName string
	}{
		{"accounts", "Account,Type,Balance\nChecking,Bank,\"1,000.00\"\n", domain.EntityTypeAccount, "Checking"},
		{"customers", "Customer,Email\nAcme,ap@acme.test\n", domain.EntityTypeCustomer, "Acme"},
		{"vendors", "Vendor,Phone\nPaper Co,555-0101\n", domain.EntityTypeVendor, "Paper Co"},
		{"items", "Item,Item Type,Price\nConsulting,Service,150\n", domain.EntityTypeItem, "Consulting"},
		{"tab delimited", "Customer\tEmail\nAcme\tap@acme.test\n", domain.EntityTypeCustomer, "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := NewRuleExtractor(nil).Extract(context.Background(), tt.text)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, string(tt.wantType), rows[0]["entityType"])
			assert.Equal(t, tt.wantName, rows[0]["name"])
		})
	}
}

func TestRuleExtractor_ExplicitEntityTypeColumn(t *testing.T) {
	text := "Entity Type,Name\nWidget,Blue\nVendor,Paper Co\n"

	rows, err := NewRuleExtractor(nil).Extract(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Widget", rows[0]["entityType"])
	assert.Equal(t, "Vendor", rows[1]["entityType"])
}

func TestRuleExtractor_HeaderOnlyAndBlank(t *testing.T) {
	rows, err := NewRuleExtractor(nil).Extract(context.Background(), "Customer,Email\n\n")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = NewRuleExtractor(nil).Extract(context.Background(), " \n\t\n")
	assert.ErrorIs(t, err, ErrEmptyExport)
}

func TestRuleExtractor_Name(t *testing.T) {
	assert.Equal(t, "rules", NewRuleExtractor(nil).Name())
}
