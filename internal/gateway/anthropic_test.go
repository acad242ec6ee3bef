package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewAnthropicClient(config.AnthropicConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "claude-test",
	})
	require.NoError(t, err)
	return client
}

func TestAnthropicComplete(t *testing.T) {
	client := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, 300, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "interpret this", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": "  A dream about flight. "},
			},
		})
	})

	text, err := client.Complete(context.Background(), "interpret this", 300)
	require.NoError(t, err)
	assert.Equal(t, "A dream about flight.", text)
}

func TestAnthropicCompleteAPIError(t *testing.T) {
	client := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := client.Complete(context.Background(), "hello", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstreamUnavailable))
	assert.Contains(t, err.Error(), "claude API error 429: slow down")
}

func TestAnthropicCompleteEmptyContent(t *testing.T) {
	client := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})

	_, err := client.Complete(context.Background(), "hello", 10)
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
}

func TestAnthropicRejectsLegacyErrorText(t *testing.T) {
	called := false
	client := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Complete(context.Background(), "Error generating interpretation: boom", 10)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
	assert.False(t, called)
}

func TestNewAnthropicClientRequiresKey(t *testing.T) {
	_, err := NewAnthropicClient(config.AnthropicConfig{})
	assert.ErrorIs(t, err, config.ErrMissingAnthropicKey)
}
