package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"insightcast/internal/config"
	"insightcast/internal/llm"
)

// Provider represents different TTS service providers
type Provider string

const (
	ProviderAzure  Provider = "azure"
	ProviderOpenAI Provider = "openai"
	ProviderMock   Provider = "mock"
)

const (
	DefaultHostVoice     = "fable"
	DefaultAnalystVoice  = "nova"
	DefaultAzureVersion  = "2025-03-01-preview"
	DefaultAzureModel    = "tts"
	DefaultOpenAIModel   = "tts-1"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOutputDir     = "audio"
)

// Config holds TTS configuration
type Config struct {
	Provider     Provider
	APIKey       string
	Endpoint     string // Azure resource endpoint
	Deployment   string // Azure deployment, also sent as the model
	APIVersion   string
	Model        string // OpenAI model
	BaseURL      string // OpenAI base URL
	HostVoice    string
	AnalystVoice string
	Speed        float64 // 0.25 - 4.0, OpenAI only
	OutputDir    string
	HTTPClient   *http.Client
}

// ConfigFromSettings maps the tts config section onto a client config.
func ConfigFromSettings(cfg config.TTS) Config {
	c := Config{
		Provider:     Provider(cfg.Provider),
		HostVoice:    cfg.HostVoice,
		AnalystVoice: cfg.AnalystVoice,
		Speed:        cfg.Speed,
		OutputDir:    cfg.OutputDirectory,
		HTTPClient:   &http.Client{Timeout: config.Duration(cfg.Timeout, 60*time.Second)},
	}
	switch c.Provider {
	case ProviderAzure:
		c.APIKey = cfg.Azure.APIKey
		c.Endpoint = cfg.Azure.Endpoint
		c.Deployment = cfg.Azure.Deployment
		c.APIVersion = cfg.Azure.APIVersion
	case ProviderOpenAI:
		c.APIKey = cfg.OpenAI.APIKey
		c.Model = cfg.OpenAI.Model
		c.BaseURL = cfg.OpenAI.BaseURL
	}
	return c
}

// speechRequest is the body of both the OpenAI and the Azure OpenAI
// /audio/speech endpoints.
type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// Client synthesizes single utterances.
type Client struct {
	Config Config
}

// NewClient creates a new TTS client
func NewClient(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Timeout: 60 * time.Second,
		}
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.HostVoice == "" {
		cfg.HostVoice = DefaultHostVoice
	}
	if cfg.AnalystVoice == "" {
		cfg.AnalystVoice = DefaultAnalystVoice
	}
	if cfg.Deployment == "" {
		cfg.Deployment = DefaultAzureModel
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAzureVersion
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	return &Client{Config: cfg}
}

// Speak returns mp3 audio for text in the given voice.
func (c *Client) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	switch c.Config.Provider {
	case ProviderAzure:
		return c.speakAzure(ctx, text, voice)
	case ProviderOpenAI:
		return c.speakOpenAI(ctx, text, voice)
	case ProviderMock:
		return mockAudio(text, voice), nil
	default:
		return nil, fmt.Errorf("unsupported TTS provider: %s", c.Config.Provider)
	}
}

func (c *Client) speakAzure(ctx context.Context, text, voice string) ([]byte, error) {
	if c.Config.APIKey == "" || c.Config.Endpoint == "" {
		return nil, fmt.Errorf("azure TTS key and endpoint are required")
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/audio/speech?api-version=%s",
		strings.TrimRight(c.Config.Endpoint, "/"),
		url.PathEscape(c.Config.Deployment),
		url.QueryEscape(c.Config.APIVersion))

	body := speechRequest{
		Model: c.Config.Deployment,
		Input: text,
		Voice: voice,
	}
	return c.post(ctx, endpoint, body, func(req *http.Request) {
		req.Header.Set("api-key", c.Config.APIKey)
	})
}

func (c *Client) speakOpenAI(ctx context.Context, text, voice string) ([]byte, error) {
	if c.Config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	body := speechRequest{
		Model:          c.Config.Model,
		Input:          text,
		Voice:          voice,
		ResponseFormat: "mp3",
		Speed:          c.Config.Speed,
	}
	return c.post(ctx, strings.TrimRight(c.Config.BaseURL, "/")+"/audio/speech", body, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)
	})
}

func (c *Client) post(ctx context.Context, endpoint string, body speechRequest, auth func(*http.Request)) ([]byte, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	auth(req)

	resp, err := c.Config.HTTPClient.Do(req)
	if err != nil {
		return nil, &llm.TransportError{Service: "tts", Op: "speech", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &llm.TransportError{
			Service: "tts",
			Op:      "speech",
			Err:     fmt.Errorf("%s API error %d: %s", c.Config.Provider, resp.StatusCode, strings.TrimSpace(string(msg))),
		}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.TransportError{Service: "tts", Op: "read", Err: err}
	}
	if len(audio) == 0 {
		return nil, errors.New("TTS service returned no audio")
	}
	return audio, nil
}

// mockAudio stands in for speech when no provider is configured.
func mockAudio(text, voice string) []byte {
	return []byte(fmt.Sprintf("[mock %s] %s\n", voice, text))
}

// GetAvailableProviders returns available TTS providers
func GetAvailableProviders() []string {
	return []string{
		string(ProviderAzure),
		string(ProviderOpenAI),
		string(ProviderMock),
	}
}
