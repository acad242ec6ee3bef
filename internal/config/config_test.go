package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "sk-from-env")
	t.Setenv(EnvAnthropicKey, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8001", cfg.Addr())
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "whisper-1", cfg.OpenAI.TranscriptionModel)
	assert.Equal(t, "transcripts", cfg.Storage.TranscriptsDir)
	assert.Equal(t, "generated_images", cfg.Storage.ImagesDir)
	assert.Equal(t, "qa_history.json", cfg.Storage.QAHistoryFile)
	assert.Equal(t, "anthropic", cfg.Interpret.ChatProvider)
	assert.Equal(t, "none", cfg.Mirror.Backend)
	assert.Equal(t, 25, cfg.Limits.MaxFileSizeMB)
}

func TestLoadExpandsEnvironment(t *testing.T) {
	t.Setenv("DW_TEST_PORT", "9100")
	t.Setenv("DW_TEST_KEY", "sk-yaml")

	path := writeFile(t, t.TempDir(), "config.yaml", `
server:
  host: 127.0.0.1
  port: ${DW_TEST_PORT}
openai:
  api_key: ${DW_TEST_KEY}
storage:
  transcripts_dir: out/transcripts
workers:
  count: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.Addr())
	assert.Equal(t, "sk-yaml", cfg.OpenAI.APIKey)
	assert.Equal(t, "out/transcripts", cfg.Storage.TranscriptsDir)
	assert.Equal(t, 4, cfg.Workers.Count)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "server: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidateServerRequiresOpenAIKey(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.ErrorIs(t, cfg.ValidateServer(), ErrMissingOpenAIKey)

	cfg.OpenAI.APIKey = "sk-test"
	assert.NoError(t, cfg.ValidateServer())
}

func TestValidateInterpretProviders(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "")
	t.Setenv(EnvAnthropicKey, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.ErrorIs(t, cfg.ValidateInterpret(), ErrMissingAnthropicKey)

	cfg.Anthropic.APIKey = "ak-test"
	assert.ErrorIs(t, cfg.ValidateInterpret(), ErrMissingOpenAIKey)

	cfg.Interpret.ImageProvider = "stablediffusion"
	assert.NoError(t, cfg.ValidateInterpret())

	cfg.Interpret.ChatProvider = "mystery"
	assert.Error(t, cfg.ValidateInterpret())
}

func TestInspectEnvMasksKeys(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "OPENAI_API_KEY=sk-abcdefghijklmnop\n")
	t.Setenv(EnvOpenAIKey, "stale")
	t.Setenv(EnvAnthropicKey, "")

	report := InspectEnv(envFile)

	assert.True(t, report.EnvFileSeen)
	assert.NoError(t, report.ParseError)
	assert.Equal(t, []string{"OPENAI_API_KEY"}, report.FileKeys)
	require.Len(t, report.Keys, 2)
	assert.Equal(t, KeyStatus{Name: EnvOpenAIKey, Loaded: true, Prefix: "sk-abcd..."}, report.Keys[0])
	assert.Equal(t, KeyStatus{Name: EnvAnthropicKey}, report.Keys[1])
}

func TestInspectEnvWithoutFile(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "")
	t.Setenv(EnvAnthropicKey, "")

	report := InspectEnv(filepath.Join(t.TempDir(), ".env"))

	assert.False(t, report.EnvFileSeen)
	assert.Empty(t, report.FileKeys)
	assert.False(t, report.Keys[0].Loaded)
}
