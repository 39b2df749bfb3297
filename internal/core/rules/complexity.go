package rules

import (
	"fmt"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tier thresholds. A value must exceed the threshold to trigger the tier.
const (
	complexEntityThreshold  = 10000
	complexReviewThreshold  = 100
	moderateEntityThreshold = 5000
	moderateReviewThreshold = 50
	moderateTypeThreshold   = 5

	complexHours  = 8
	moderateHours = 4
	simpleHours   = 2
)

// AnalyzerConfig configures the complexity analyzer.
type AnalyzerConfig struct {
	// TruncationThreshold is the source system's export row limit.
	TruncationThreshold int
}

// DefaultAnalyzerConfig uses the standard export row limit.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{TruncationThreshold: DefaultTruncationThreshold}
}

// ComplexityAnalyzer scores an entity snapshot. It is a pure function of its
// input and safe to run concurrently.
type ComplexityAnalyzer struct {
	cfg            AnalyzerConfig
	truncationRisk string
}

// NewComplexityAnalyzer creates an analyzer.
func NewComplexityAnalyzer(cfg AnalyzerConfig) *ComplexityAnalyzer {
	if cfg.TruncationThreshold <= 0 {
		cfg.TruncationThreshold = DefaultTruncationThreshold
	}
	p := message.NewPrinter(language.English)
	return &ComplexityAnalyzer{
		cfg:            cfg,
		truncationRisk: p.Sprintf("export may be truncated (source export limit ~%d rows)", cfg.TruncationThreshold),
	}
}

// ClassifyTier applies the tier thresholds, first match wins.
func ClassifyTier(totalEntities, requiresReviewCount, distinctEntityTypeCount int) (domain.ComplexityTier, int) {
	switch {
	case totalEntities > complexEntityThreshold || requiresReviewCount > complexReviewThreshold:
		return domain.ComplexityComplex, complexHours
	case totalEntities > moderateEntityThreshold || requiresReviewCount > moderateReviewThreshold || distinctEntityTypeCount > moderateTypeThreshold:
		return domain.ComplexityModerate, moderateHours
	default:
		return domain.ComplexitySimple, simpleHours
	}
}

// Assess scores the entity set.
func (a *ComplexityAnalyzer) Assess(entities []domain.MigrationEntity) domain.ComplexityAssessment {
	flagged := 0
	hasTransactions := false
	types := make(map[domain.EntityType]struct{})
	for _, e := range entities {
		if e.RequiresReview {
			flagged++
		}
		if e.EntityType == domain.EntityTypeTransaction {
			hasTransactions = true
		}
		types[e.EntityType] = struct{}{}
	}
	total := len(entities)

	tier, hours := ClassifyTier(total, flagged, len(types))
	assessment := domain.ComplexityAssessment{
		Complexity:              tier,
		EstimatedHours:          hours,
		Risks:                   []string{},
		Recommendations:         []string{},
		TotalEntities:           total,
		RequiresReviewCount:     flagged,
		DistinctEntityTypeCount: len(types),
	}

	if flagged > 0 {
		assessment.Risks = append(assessment.Risks, fmt.Sprintf("%d items require manual review", flagged))
		assessment.Recommendations = append(assessment.Recommendations, "review flagged items before proceeding")
	}
	if total > a.cfg.TruncationThreshold {
		assessment.Risks = append(assessment.Risks, a.truncationRisk)
		assessment.Recommendations = append(assessment.Recommendations, "split into multiple exports")
	}
	if hasTransactions {
		assessment.Risks = append(assessment.Risks, "transaction relationships may not be preserved")
		assessment.Recommendations = append(assessment.Recommendations, "verify transaction matching after migration")
	}
	return assessment
}
