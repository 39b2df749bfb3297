package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

// DefaultTruncationThreshold is the row count past which a legacy export may have been cut off.
const DefaultTruncationThreshold = 32000

// ReasonTransactionRelationships is attached to every Transaction entity.
const ReasonTransactionRelationships = "transaction relationships may not be preserved (flat export)"

const reasonSeparator = "; "

// ValidatorConfig configures the entity validator.
type ValidatorConfig struct {
	// TruncationThreshold flags rows whose index is greater than it. Zero disables the check.
	TruncationThreshold int
	// SupportedTypes is the entity-type whitelist.
	SupportedTypes []domain.EntityType
}

// DefaultValidatorConfig returns the standard whitelist and truncation threshold.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		TruncationThreshold: DefaultTruncationThreshold,
		SupportedTypes:      append([]domain.EntityType(nil), domain.SupportedEntityTypes...),
	}
}

// ValidationError describes one problem with one candidate row. It never
// escapes the validator; it is folded into the entity's review reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// EntityValidator turns raw candidate rows into flagged MigrationEntities.
// It holds no mutable state and is safe for concurrent use.
type EntityValidator struct {
	cfg       ValidatorConfig
	supported map[string]domain.EntityType
}

// NewEntityValidator creates a validator. An empty whitelist falls back to the defaults.
func NewEntityValidator(cfg ValidatorConfig) *EntityValidator {
	if len(cfg.SupportedTypes) == 0 {
		cfg.SupportedTypes = domain.SupportedEntityTypes
	}
	supported := make(map[string]domain.EntityType, len(cfg.SupportedTypes))
	for _, t := range cfg.SupportedTypes {
		supported[strings.ToLower(string(t))] = t
	}
	return &EntityValidator{cfg: cfg, supported: supported}
}

// MatchType matches raw case-insensitively against the configured whitelist.
func (v *EntityValidator) MatchType(raw string) (domain.EntityType, bool) {
	t, ok := v.supported[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// ValidateRow coerces one raw row and flags it. It never fails: a row that
// cannot be classified becomes an Unknown entity that requires review.
func (v *EntityValidator) ValidateRow(migrationID string, rowIndex int, row domain.RawRow) domain.MigrationEntity {
	view := newRowView(row)
	entity := domain.MigrationEntity{
		MigrationID:   migrationID,
		RowIndex:      rowIndex,
		LegacyID:      view.lookupString(fieldLegacyID),
		Name:          view.lookupString(fieldName),
		MappedAccount: view.lookupString(fieldMappedAccount),
		Memo:          view.lookupString(fieldMemo),
		Notes:         view.lookupString(fieldNotes),
	}
	if raw, err := json.Marshal(row); err == nil {
		entity.Raw = raw
	}

	var problems []ValidationError

	rawType := ""
	if val, ok := view.lookup(fieldEntityType); ok {
		rawType = displayValue(val)
	}
	if t, ok := v.MatchType(rawType); ok {
		entity.EntityType = t
	} else {
		entity.EntityType = domain.EntityTypeUnknown
		shown := rawType
		if shown == "" {
			shown = "(none)"
		}
		problems = append(problems, ValidationError{Field: fieldEntityType, Reason: "unsupported entity type: " + shown})
	}

	if entity.Name == nil && entity.LegacyID == nil {
		problems = append(problems, ValidationError{Field: fieldName, Reason: "missing required field: name or legacyId"})
	}
	rawAmount, hasAmount := view.lookup(fieldAmount)
	rawDate, hasDate := view.lookup(fieldDate)
	if entity.EntityType.RequiresAmount() {
		if !hasAmount {
			problems = append(problems, ValidationError{Field: fieldAmount, Reason: "missing required field: amount"})
		}
		if !hasDate {
			problems = append(problems, ValidationError{Field: fieldDate, Reason: "missing required field: date"})
		}
	}

	if hasAmount {
		if amount, err := ParseAmount(rawAmount); err != nil {
			problems = append(problems, ValidationError{Field: fieldAmount, Reason: "invalid amount: " + displayValue(rawAmount)})
		} else {
			entity.Amount = &amount
		}
	}

	if hasDate {
		if date, err := NormalizeDate(rawDate); err != nil {
			problems = append(problems, ValidationError{Field: fieldDate, Reason: "invalid date: " + displayValue(rawDate)})
		} else {
			entity.Date = &date
		}
	}

	if entity.EntityType == domain.EntityTypeTransaction {
		problems = append(problems, ValidationError{Field: fieldEntityType, Reason: ReasonTransactionRelationships})
	}

	if v.cfg.TruncationThreshold > 0 && rowIndex > v.cfg.TruncationThreshold {
		problems = append(problems, ValidationError{
			Field:  "rowIndex",
			Reason: fmt.Sprintf("row index %d exceeds export limit (%d); export may be truncated", rowIndex, v.cfg.TruncationThreshold),
		})
	}

	if len(problems) > 0 {
		reasons := make([]string, len(problems))
		for i, p := range problems {
			reasons[i] = p.Reason
		}
		joined := strings.Join(reasons, reasonSeparator)
		entity.RequiresReview = true
		entity.ReviewReason = &joined
	}
	return entity
}
