package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient implements Completer over the Messages API.
type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewAnthropicClient creates a client from configuration. The key is required.
func NewAnthropicClient(cfg config.AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAnthropicKey
	}
	return &AnthropicClient{
		apiKey:     cfg.APIKey,
		httpClient: newHTTPClient(cfg.TimeoutSeconds),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one user message and joins the text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := checkPrompt("claude completion", prompt); err != nil {
		return "", err
	}

	bodyBytes, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", types.Upstream("claude completion", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", types.Upstream("claude completion",
				fmt.Errorf("claude API error %d: %s", resp.StatusCode, apiErr.Error.Message))
		}
		return "", types.Upstream("claude completion",
			fmt.Errorf("claude API error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var result messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", types.Upstream("claude completion", fmt.Errorf("decoding response: %w", err))
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "" || block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", types.Upstream("claude completion", errors.New("empty response from claude"))
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
