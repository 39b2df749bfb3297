package main

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_migrator/internal/adapters/extraction"
	"github.com/SscSPs/ledger_migrator/internal/adapters/storage"
	"github.com/SscSPs/ledger_migrator/internal/core/ports/gateways"
	"github.com/SscSPs/ledger_migrator/internal/core/services"
	"github.com/SscSPs/ledger_migrator/internal/platform/config"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func buildGateways(ctx context.Context, cfg *config.Config) (services.Gateways, error) {
	store, err := buildExportStore(ctx, cfg)
	if err != nil {
		return services.Gateways{}, err
	}
	validator := services.NewEntityValidator(cfg)
	return services.Gateways{
		Extractor: buildExtractor(cfg, validator),
		Store:     store,
		Decoder:   extraction.NewTextDecoder(),
		Validator: validator,
	}, nil
}

func buildExtractor(cfg *config.Config, types extraction.TypeMatcher) gateways.Extractor {
	if cfg.ExtractorMode == config.ExtractorModeRules {
		return extraction.NewRuleExtractor(types)
	}
	return extraction.NewLLMExtractor(extraction.LLMConfig{
		BaseURL:   cfg.LLMBaseURL,
		APIKey:    cfg.LLMAPIKey,
		Model:     cfg.LLMModel,
		MaxTokens: cfg.LLMMaxTokens,
		Timeout:   cfg.LLMTimeout,
	}, nil)
}

func buildExportStore(ctx context.Context, cfg *config.Config) (gateways.ExportStore, error) {
	switch cfg.StorageType {
	case config.StorageTypeS3:
		return storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
	case config.StorageTypeLocal:
		return storage.NewLocalStore(cfg.StorageLocalDir)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.StorageType)
	}
}

// newRateLimiter builds the in-memory limiter for upload and parse routes.
// An empty rate disables throttling.
func newRateLimiter(formatted string) (*limiter.Limiter, error) {
	if formatted == "" {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}
