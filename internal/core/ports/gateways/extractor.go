package gateways

import (
	"context"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

// Extractor turns raw export text into loosely-typed candidate rows.
// Implementations may be nondeterministic; callers must validate every field.
type Extractor interface {
	// Extract is called once per export with the full text.
	Extract(ctx context.Context, rawText string) ([]domain.RawRow, error)

	// Name identifies the extractor in logs and metrics.
	Name() string
}
