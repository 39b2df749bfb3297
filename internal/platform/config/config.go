package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Extractor modes.
const (
	ExtractorModeLLM   = "llm"
	ExtractorModeRules = "rules"
)

// Storage types.
const (
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL     string
	Port            string
	IsProduction    bool
	EnableDBCheck   bool
	MigrationsPath  string
	JWTSecret       string
	JWTIssuer       string
	FrontendBaseURL string `mapstructure:"FRONTEND_BASE_URL"`

	// Extraction collaborator
	ExtractorMode string
	LLMBaseURL    string
	LLMAPIKey     string
	LLMModel      string
	LLMMaxTokens  int
	LLMTimeout    time.Duration

	// Normalization rules
	TruncationThreshold int
	UrgencyMultipliers  map[domain.Urgency]float64

	// Export file storage
	StorageType     string
	StorageLocalDir string
	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3UseSSL        bool

	MaxUploadBytes int64
	RateLimit      string
	OTLPEndpoint   string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "ledger-migrator")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("EXTRACTOR_MODE", ExtractorModeLLM)
	viper.SetDefault("LLM_BASE_URL", "https://api.anthropic.com")
	viper.SetDefault("LLM_API_KEY", "")
	viper.SetDefault("LLM_MODEL", "claude-sonnet-4-20250514")
	viper.SetDefault("LLM_MAX_TOKENS", 8000)
	viper.SetDefault("LLM_TIMEOUT", "120s")
	viper.SetDefault("TRUNCATION_THRESHOLD", 32000)
	viper.SetDefault("URGENCY_MULTIPLIERS", "low:1.5,medium:1.0,high:0.7,critical:0.5")
	viper.SetDefault("STORAGE_TYPE", StorageTypeLocal)
	viper.SetDefault("STORAGE_LOCAL_DIR", "./data/exports")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_USE_SSL", true)
	viper.SetDefault("MAX_UPLOAD_BYTES", 50<<20)
	viper.SetDefault("RATE_LIMIT", "30-M")
	viper.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:     viper.GetString("PGSQL_URL"),
		Port:            viper.GetString("PORT"),
		IsProduction:    viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:   viper.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:  viper.GetString("MIGRATIONS_PATH"),
		JWTSecret:       viper.GetString("JWT_SECRET"),
		JWTIssuer:       viper.GetString("JWT_ISSUER"),
		FrontendBaseURL: viper.GetString("FRONTEND_BASE_URL"),

		ExtractorMode: strings.ToLower(viper.GetString("EXTRACTOR_MODE")),
		LLMBaseURL:    strings.TrimSuffix(viper.GetString("LLM_BASE_URL"), "/"),
		LLMAPIKey:     viper.GetString("LLM_API_KEY"),
		LLMModel:      viper.GetString("LLM_MODEL"),
		LLMMaxTokens:  viper.GetInt("LLM_MAX_TOKENS"),

		TruncationThreshold: viper.GetInt("TRUNCATION_THRESHOLD"),

		StorageType:     strings.ToLower(viper.GetString("STORAGE_TYPE")),
		StorageLocalDir: viper.GetString("STORAGE_LOCAL_DIR"),
		S3Endpoint:      viper.GetString("S3_ENDPOINT"),
		S3Region:        viper.GetString("S3_REGION"),
		S3Bucket:        viper.GetString("S3_BUCKET"),
		S3AccessKey:     viper.GetString("S3_ACCESS_KEY"),
		S3SecretKey:     viper.GetString("S3_SECRET_KEY"),
		S3UseSSL:        viper.GetBool("S3_USE_SSL"),

		MaxUploadBytes: viper.GetInt64("MAX_UPLOAD_BYTES"),
		RateLimit:      viper.GetString("RATE_LIMIT"),
		OTLPEndpoint:   viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	llmTimeoutStr := viper.GetString("LLM_TIMEOUT")
	llmTimeout, err := time.ParseDuration(llmTimeoutStr)
	if err != nil {
		llmTimeout = 120 * time.Second
		log.Printf("Warning: Invalid value for LLM_TIMEOUT ('%s'). Defaulting to %s.\n", llmTimeoutStr, llmTimeout)
	}
	cfg.LLMTimeout = llmTimeout

	multipliers, err := ParseUrgencyMultipliers(viper.GetString("URGENCY_MULTIPLIERS"))
	if err != nil {
		return nil, err
	}
	cfg.UrgencyMultipliers = multipliers

	switch cfg.ExtractorMode {
	case ExtractorModeLLM:
		if cfg.LLMAPIKey == "" {
			log.Println("Warning: LLM_API_KEY not set. Export parsing will fail until it is configured.")
		}
	case ExtractorModeRules:
	default:
		return nil, fmt.Errorf("unsupported EXTRACTOR_MODE %q", cfg.ExtractorMode)
	}

	switch cfg.StorageType {
	case StorageTypeLocal:
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_TYPE=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_TYPE %q", cfg.StorageType)
	}

	return cfg, nil
}

// ParseUrgencyMultipliers parses "low:1.5,medium:1.0" style pairs.
func ParseUrgencyMultipliers(raw string) (map[domain.Urgency]float64, error) {
	out := make(map[domain.Urgency]float64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid URGENCY_MULTIPLIERS entry %q", pair)
		}
		urgency := domain.Urgency(strings.ToLower(strings.TrimSpace(key)))
		if !urgency.IsValid() {
			return nil, fmt.Errorf("unknown urgency %q in URGENCY_MULTIPLIERS", key)
		}
		m, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || m <= 0 {
			return nil, fmt.Errorf("invalid multiplier %q for urgency %s", value, urgency)
		}
		out[urgency] = m
	}
	return out, nil
}
