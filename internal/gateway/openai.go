package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// OpenAIClient covers all three gateway operations against the OpenAI API.
type OpenAIClient struct {
	client             *openai.Client
	transcriptionModel string
	chatModel          string
	imageModel         string
	imageSize          string
}

// NewOpenAIClient creates a client from configuration. The key is required.
func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingOpenAIKey
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient(cfg.TimeoutSeconds)

	return &OpenAIClient{
		client:             openai.NewClientWithConfig(clientConfig),
		transcriptionModel: cfg.TranscriptionModel,
		chatModel:          cfg.ChatModel,
		imageModel:         cfg.ImageModel,
		imageSize:          cfg.ImageSize,
	}, nil
}

// Transcribe sends audio to the speech-to-text endpoint. filename carries
// the format hint through its extension.
func (c *OpenAIClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", types.InvalidInput("whisper transcription", errEmptyAudio)
	}

	req := openai.AudioRequest{
		Model:    c.transcriptionModel,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
	}

	log.Printf("Sending %d bytes to OpenAI transcription (%s)", len(audio), c.transcriptionModel)
	resp, err := c.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", types.Upstream("whisper transcription", err)
	}
	log.Println("Received transcript from OpenAI")

	return resp.Text, nil
}

// Complete runs a single-turn chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := checkPrompt("chat completion", prompt); err != nil {
		return "", err
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.chatModel,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", types.Upstream("chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", types.Upstream("chat completion", errors.New("empty response from openai"))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateImage renders prompt and returns the decoded PNG.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if err := checkPrompt("image generation", prompt); err != nil {
		return nil, err
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.imageModel,
		Size:           c.imageSize,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, types.Upstream("image generation", err)
	}

	if len(resp.Data) == 0 {
		return nil, types.Upstream("image generation", errors.New("no image in response"))
	}

	png, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, types.Upstream("image generation", fmt.Errorf("decoding image: %w", err))
	}

	return png, nil
}
