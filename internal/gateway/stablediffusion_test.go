package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
	"github.com/codebuildervaibhav/dreamwhisper/internal/types"
)

func TestStableDiffusionGenerateImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	for name, encoded := range map[string]string{
		"plain":    base64.StdEncoding.EncodeToString(png),
		"data uri": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/sdapi/v1/txt2img", r.URL.Path)

				var req txt2imgRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "moonlit lake", req.Prompt)
				assert.Equal(t, 12, req.Steps)
				assert.Equal(t, 1, req.BatchSize)

				json.NewEncoder(w).Encode(txt2imgResponse{Images: []string{encoded}})
			}))
			defer server.Close()

			client := NewStableDiffusionClient(config.StableDiffusionConfig{
				BaseURL: server.URL + "/",
				Steps:   12,
				Width:   64,
				Height:  64,
			})

			got, err := client.GenerateImage(context.Background(), "moonlit lake")
			require.NoError(t, err)
			assert.Equal(t, png, got)
		})
	}
}

func TestStableDiffusionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "CUDA out of memory", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewStableDiffusionClient(config.StableDiffusionConfig{BaseURL: server.URL})

	_, err := client.GenerateImage(context.Background(), "moonlit lake")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "CUDA out of memory")
}

func TestStableDiffusionEmptyPrompt(t *testing.T) {
	client := NewStableDiffusionClient(config.StableDiffusionConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := client.GenerateImage(context.Background(), "   ")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}
