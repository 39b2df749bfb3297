package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) (*LLMExtractor, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	ext := NewLLMExtractor(LLMConfig{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		Model:     "test-model",
		MaxTokens: 1000,
		Timeout:   5 * time.Second,
	}, NewCircuitBreaker(t.Name()))
	return ext, &hits
}

func TestLLMExtractor_Extract(t *testing.T) {
	ext, hits := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, 1000, req.MaxTokens)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "!ACCNT\tNAME", req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"` + "```json\\n" +
			`[{\"entityType\":\"Invoice\",\"name\":\"Acme\",\"amount\":12.50}]` + "\\n```" +
			`"}],"stop_reason":"end_turn"}`))
	})

	rows, err := ext.Extract(context.Background(), "!ACCNT\tNAME")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Invoice", rows[0]["entityType"])
	assert.Equal(t, json.Number("12.50"), rows[0]["amount"])
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestLLMExtractor_ServiceErrorIsNotRetried(t *testing.T) {
	ext, hits := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	})

	_, err := ext.Extract(context.Background(), "data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "529")
	assert.Contains(t, err.Error(), "Overloaded")
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestLLMExtractor_UnparseableOutput(t *testing.T) {
	ext, _ := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"I could not read this file."}],"stop_reason":"end_turn"}`))
	})

	_, err := ext.Extract(context.Background(), "data")
	assert.ErrorIs(t, err, ErrNotRowList)
}

func TestLLMExtractor_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	ext, hits := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 5; i++ {
		_, err := ext.Extract(context.Background(), "data")
		require.Error(t, err)
	}

	_, err := ext.Extract(context.Background(), "data")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 5, atomic.LoadInt32(hits))
}

func TestLLMExtractor_MissingAPIKey(t *testing.T) {
	ext := NewLLMExtractor(LLMConfig{BaseURL: "http://127.0.0.1:1"}, nil)

	_, err := ext.Extract(context.Background(), "data")
	assert.ErrorIs(t, err, ErrExtractorNotConfigured)
	assert.Equal(t, "llm", ext.Name())
}
