package rules

import "github.com/SscSPs/ledger_migrator/internal/core/domain"

// BuildSummary aggregates a normalized entity set. Warnings are the distinct
// review reasons in order of first occurrence.
func BuildSummary(entities []domain.MigrationEntity) domain.ParseSummary {
	summary := domain.ParseSummary{
		TotalRows:   len(entities),
		EntityTypes: make(map[domain.EntityType]int),
		Warnings:    []string{},
	}
	seen := make(map[string]struct{})
	for _, e := range entities {
		summary.EntityTypes[e.EntityType]++
		if !e.RequiresReview {
			continue
		}
		summary.RequiresReview++
		if e.ReviewReason == nil || *e.ReviewReason == "" {
			continue
		}
		if _, ok := seen[*e.ReviewReason]; ok {
			continue
		}
		seen[*e.ReviewReason] = struct{}{}
		summary.Warnings = append(summary.Warnings, *e.ReviewReason)
	}
	return summary
}
