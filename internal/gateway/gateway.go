// Package gateway adapts the external inference services: speech
// transcription, chat completion and image synthesis. Each call is a single
// blocking request; failures surface immediately as upstream_unavailable.
package gateway

//go:generate mockgen -destination=gatewaymock/gateway_mock.go -package=gatewaymock . Transcriber,Completer,ImageGenerator

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Completer returns a model's text reply to a single user prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ImageGenerator renders a prompt to PNG bytes.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

var (
	errEmptyAudio  = errors.New("audio is empty")
	errEmptyPrompt = errors.New("prompt is empty")
)

// checkPrompt rejects prompts that must never reach an upstream service.
func checkPrompt(op, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return types.InvalidInput(op, errEmptyPrompt)
	}
	if strings.HasPrefix(prompt, types.LegacyErrorPrefix) {
		return types.InvalidInput(op, errors.New(prompt))
	}
	return nil
}

func newHTTPClient(timeoutSeconds int) *http.Client {
	return &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}
}
