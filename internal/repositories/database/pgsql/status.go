package pgsql

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/apperrors"
	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

// statusMissError explains why a conditional status update touched no row.
// found is false when the migration does not exist at all.
func statusMissError(migrationID string, current domain.JobStatus, found bool, target domain.JobStatus) error {
	switch {
	case !found:
		return fmt.Errorf("migration %s: %w", migrationID, apperrors.ErrNotFound)
	case current == domain.JobStatusParsing && target == domain.JobStatusParsing:
		return fmt.Errorf("migration %s is already parsing: %w", migrationID, apperrors.ErrConflict)
	default:
		return fmt.Errorf("migration %s cannot move from %s to %s: %w", migrationID, current, target, apperrors.ErrInvalidTransition)
	}
}

func statusStrings(statuses []domain.JobStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// staleCutoff is the SQL parameter for a parse takeover cutoff. NULL disables takeover.
func staleCutoff(staleBefore time.Time) *time.Time {
	if staleBefore.IsZero() {
		return nil
	}
	utc := staleBefore.UTC()
	return &utc
}
