package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// StableDiffusionClient implements ImageGenerator against a self-hosted
// txt2img endpoint (AUTOMATIC1111 web UI API).
type StableDiffusionClient struct {
	httpClient *http.Client
	baseURL    string
	steps      int
	width      int
	height     int
}

// NewStableDiffusionClient creates a client from configuration
func NewStableDiffusionClient(cfg config.StableDiffusionConfig) *StableDiffusionClient {
	return &StableDiffusionClient{
		httpClient: &http.Client{},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		steps:      cfg.Steps,
		width:      cfg.Width,
		height:     cfg.Height,
	}
}

type txt2imgRequest struct {
	Prompt    string `json:"prompt"`
	Steps     int    `json:"steps"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	BatchSize int    `json:"batch_size"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

// GenerateImage renders prompt and returns the first image as PNG bytes.
func (c *StableDiffusionClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if err := checkPrompt("stable diffusion", prompt); err != nil {
		return nil, err
	}

	bodyBytes, err := json.Marshal(txt2imgRequest{
		Prompt:    prompt,
		Steps:     c.steps,
		Width:     c.width,
		Height:    c.height,
		BatchSize: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.Upstream("stable diffusion", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, types.Upstream("stable diffusion",
			fmt.Errorf("txt2img error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var result txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, types.Upstream("stable diffusion", fmt.Errorf("decoding response: %w", err))
	}
	if len(result.Images) == 0 {
		return nil, types.Upstream("stable diffusion", errors.New("no image in response"))
	}

	encoded := result.Images[0]
	// Some builds return a data URI.
	if i := strings.Index(encoded, ","); strings.HasPrefix(encoded, "data:") && i >= 0 {
		encoded = encoded[i+1:]
	}

	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, types.Upstream("stable diffusion", fmt.Errorf("decoding image: %w", err))
	}
	return png, nil
}
