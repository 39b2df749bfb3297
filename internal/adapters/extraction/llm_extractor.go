package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/core/ports/gateways"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const anthropicVersion = "2023-06-01"

// ErrExtractorNotConfigured is returned when the LLM extractor has no API key.
var ErrExtractorNotConfigured = errors.New("extraction service API key is not configured")

// LLMConfig configures the messages-API extraction client.
type LLMConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type messagesRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	System      string           `json:"system"`
	Messages    []messageContent `json:"messages"`
}

type messageContent struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// LLMExtractor asks a hosted model to turn raw export text into rows.
// Each Extract is a single call guarded by a circuit breaker; it is never retried.
type LLMExtractor struct {
	client *resty.Client
	cfg    LLMConfig
	cb     *gobreaker.CircuitBreaker
}

var _ gateways.Extractor = (*LLMExtractor)(nil)

// NewLLMExtractor creates an LLMExtractor. A nil breaker gets the default one.
func NewLLMExtractor(cfg LLMConfig, cb *gobreaker.CircuitBreaker) *LLMExtractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 8000
	}
	if cb == nil {
		cb = NewCircuitBreaker("llm-extractor")
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", anthropicVersion)

	return &LLMExtractor{client: client, cfg: cfg, cb: cb}
}

// Name identifies the extractor in logs and metrics.
func (e *LLMExtractor) Name() string { return "llm" }

// Extract sends the export text to the model and decodes the returned row list.
func (e *LLMExtractor) Extract(ctx context.Context, rawText string) ([]domain.RawRow, error) {
	ctx, span := tracer.Start(ctx, "LLMExtractor.Extract")
	defer span.End()
	span.SetAttributes(
		attribute.Int("export.bytes", len(rawText)),
		attribute.String("llm.model", e.cfg.Model),
	)

	if e.cfg.APIKey == "" {
		span.SetStatus(codes.Error, ErrExtractorNotConfigured.Error())
		return nil, ErrExtractorNotConfigured
	}

	result, err := e.cb.Execute(func() (any, error) {
		return e.call(ctx, rawText)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	rows := result.([]domain.RawRow)
	span.SetAttributes(attribute.Int("export.rows", len(rows)))
	return rows, nil
}

func (e *LLMExtractor) call(ctx context.Context, rawText string) ([]domain.RawRow, error) {
	var out messagesResponse
	var apiErr apiErrorResponse

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(messagesRequest{
			Model:       e.cfg.Model,
			MaxTokens:   e.cfg.MaxTokens,
			Temperature: 0,
			System:      extractionPrompt,
			Messages:    []messageContent{{Role: "user", Content: rawText}},
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return nil, fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode(), msg)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("extraction service returned no text content")
	}

	rows, err := DecodeRows(text.String())
	if err != nil {
		if out.StopReason == "max_tokens" {
			return nil, fmt.Errorf("%w (response hit the token limit)", err)
		}
		return nil, err
	}
	return rows, nil
}
