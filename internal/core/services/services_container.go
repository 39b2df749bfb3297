package services

import (
	"time"

	"github.com/SscSPs/ledger_migrator/internal/core/ports/gateways"
	portsrepo "github.com/SscSPs/ledger_migrator/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_migrator/internal/core/ports/services"
	"github.com/SscSPs/ledger_migrator/internal/core/rules"
	"github.com/SscSPs/ledger_migrator/internal/platform/config"
	"github.com/SscSPs/ledger_migrator/internal/platform/observability"
)

// parseLeaseMargin is added to the extractor timeout before a parsing job counts as abandoned.
const parseLeaseMargin = 2 * time.Minute

// Gateways bundles the outbound collaborators the services depend on.
type Gateways struct {
	Extractor gateways.Extractor
	Store     gateways.ExportStore
	Decoder   gateways.ExportDecoder
	Validator *rules.EntityValidator
}

// NewEntityValidator builds the validator shared by the normalizer and the rule extractor.
func NewEntityValidator(cfg *config.Config) *rules.EntityValidator {
	validatorCfg := rules.DefaultValidatorConfig()
	if cfg.TruncationThreshold > 0 {
		validatorCfg.TruncationThreshold = cfg.TruncationThreshold
	}
	return rules.NewEntityValidator(validatorCfg)
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, gw Gateways, metrics *observability.Metrics) *portssvc.ServiceContainer {
	analyzerCfg := rules.DefaultAnalyzerConfig()
	trackerCfg := rules.DefaultTrackerConfig()
	if cfg.TruncationThreshold > 0 {
		analyzerCfg.TruncationThreshold = cfg.TruncationThreshold
	}
	if len(cfg.UrgencyMultipliers) > 0 {
		trackerCfg.UrgencyMultipliers = cfg.UrgencyMultipliers
	}

	if gw.Validator == nil {
		gw.Validator = NewEntityValidator(cfg)
	}

	container := &portssvc.ServiceContainer{}
	container.Normalizer = NewExportNormalizer(gw.Extractor, gw.Validator, metrics)
	container.Migration = NewMigrationService(repos.MigrationRepo, repos.ArtifactRepo, rules.NewLifecycleTracker(trackerCfg))
	container.Export = NewExportService(
		repos,
		gw.Store,
		gw.Decoder,
		container.Normalizer,
		rules.NewComplexityAnalyzer(analyzerCfg),
		WithMaxUploadBytes(cfg.MaxUploadBytes),
		WithExportMetrics(metrics),
		WithParseLease(cfg.LLMTimeout+parseLeaseMargin),
	)
	return container
}
