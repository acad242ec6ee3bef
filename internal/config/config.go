package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables that carry API keys when the YAML leaves them empty.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	OpenAI          OpenAIConfig          `yaml:"openai"`
	Anthropic       AnthropicConfig       `yaml:"anthropic"`
	StableDiffusion StableDiffusionConfig `yaml:"stable_diffusion"`
	Interpret       InterpretConfig       `yaml:"interpret"`

	Workers struct {
		Count     int `yaml:"count"`
		QueueSize int `yaml:"queue_size"`
	} `yaml:"workers"`

	Storage StorageConfig `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Mirror MirrorConfig `yaml:"mirror"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

type OpenAIConfig struct {
	APIKey             string `yaml:"api_key"`
	BaseURL            string `yaml:"base_url"`
	TranscriptionModel string `yaml:"transcription_model"`
	ChatModel          string `yaml:"chat_model"`
	ImageModel         string `yaml:"image_model"`
	ImageSize          string `yaml:"image_size"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

type AnthropicConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type StableDiffusionConfig struct {
	BaseURL string `yaml:"base_url"`
	Steps   int    `yaml:"steps"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
}

// InterpretConfig selects the providers behind the interpretation pipeline.
type InterpretConfig struct {
	ChatProvider  string `yaml:"chat_provider"`  // anthropic | openai
	ImageProvider string `yaml:"image_provider"` // openai | stablediffusion
}

type StorageConfig struct {
	TempDir        string `yaml:"temp_dir"`
	TranscriptsDir string `yaml:"transcripts_dir"`
	ImagesDir      string `yaml:"images_dir"`
	QAHistoryFile  string `yaml:"qa_history_file"`
	Database       string `yaml:"database"`
}

type MirrorConfig struct {
	Backend string `yaml:"backend"` // none | gdrive | azblob

	GoogleDrive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"google_drive"`

	AzureBlob struct {
		ConnectionString string `yaml:"connection_string"`
		AccountURL       string `yaml:"account_url"`
		Container        string `yaml:"container"`
	} `yaml:"azure_blob"`
}

// ErrMissingOpenAIKey is returned when the transcription service key is absent.
var ErrMissingOpenAIKey = errors.New("API key is missing. Set OPENAI_API_KEY in your environment variables.")

// ErrMissingAnthropicKey is returned when Anthropic is the chat provider but has no key.
var ErrMissingAnthropicKey = errors.New("API key is missing. Set ANTHROPIC_API_KEY in your environment variables.")

// Load reads a YAML file, expands ${VAR} references and applies defaults.
// A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ValidateServer checks what the transcription server needs before it starts.
func (c *Config) ValidateServer() error {
	if c.OpenAI.APIKey == "" {
		return ErrMissingOpenAIKey
	}
	return nil
}

// ValidateInterpret checks the keys for the configured interpretation providers.
func (c *Config) ValidateInterpret() error {
	switch c.Interpret.ChatProvider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return ErrMissingAnthropicKey
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return ErrMissingOpenAIKey
		}
	default:
		return fmt.Errorf("unknown chat provider %q", c.Interpret.ChatProvider)
	}

	switch c.Interpret.ImageProvider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return ErrMissingOpenAIKey
		}
	case "stablediffusion":
	default:
		return fmt.Errorf("unknown image provider %q", c.Interpret.ImageProvider)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8001
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}

	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv(EnvOpenAIKey)
	}
	if c.OpenAI.TranscriptionModel == "" {
		c.OpenAI.TranscriptionModel = "whisper-1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.OpenAI.ImageModel == "" {
		c.OpenAI.ImageModel = "dall-e-3"
	}
	if c.OpenAI.ImageSize == "" {
		c.OpenAI.ImageSize = "1024x1024"
	}

	if c.Anthropic.APIKey == "" {
		c.Anthropic.APIKey = os.Getenv(EnvAnthropicKey)
	}
	if c.Anthropic.BaseURL == "" {
		c.Anthropic.BaseURL = "https://api.anthropic.com/v1"
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-3-sonnet-20240229"
	}

	if c.StableDiffusion.BaseURL == "" {
		c.StableDiffusion.BaseURL = "http://127.0.0.1:7860"
	}
	if c.StableDiffusion.Steps == 0 {
		c.StableDiffusion.Steps = 30
	}
	if c.StableDiffusion.Width == 0 {
		c.StableDiffusion.Width = 512
	}
	if c.StableDiffusion.Height == 0 {
		c.StableDiffusion.Height = 512
	}

	if c.Interpret.ChatProvider == "" {
		c.Interpret.ChatProvider = "anthropic"
	}
	if c.Interpret.ImageProvider == "" {
		c.Interpret.ImageProvider = "openai"
	}

	if c.Workers.Count == 0 {
		c.Workers.Count = 2
	}
	if c.Workers.QueueSize == 0 {
		c.Workers.QueueSize = 100
	}

	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "temp_audio"
	}
	if c.Storage.TranscriptsDir == "" {
		c.Storage.TranscriptsDir = "transcripts"
	}
	if c.Storage.ImagesDir == "" {
		c.Storage.ImagesDir = "generated_images"
	}
	if c.Storage.QAHistoryFile == "" {
		c.Storage.QAHistoryFile = "qa_history.json"
	}
	if c.Storage.Database == "" {
		c.Storage.Database = "dreamwhisper.db"
	}

	if c.Cleanup.IntervalMinutes == 0 {
		c.Cleanup.IntervalMinutes = 30
	}
	if c.Cleanup.MaxAgeHours == 0 {
		c.Cleanup.MaxAgeHours = 24
	}

	if c.Mirror.Backend == "" {
		c.Mirror.Backend = "none"
	}
	if c.Mirror.GoogleDrive.FolderName == "" {
		c.Mirror.GoogleDrive.FolderName = "DreamWhisper"
	}
	if c.Mirror.AzureBlob.Container == "" {
		c.Mirror.AzureBlob.Container = "dreamwhisper"
	}

	if c.Limits.MaxFileSizeMB == 0 {
		c.Limits.MaxFileSizeMB = 25
	}
}
