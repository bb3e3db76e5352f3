package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"insightcast/internal/config"

	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for insight and podcast generation.
	DefaultModel = "gemini-1.5-flash-latest"
	// DefaultEmbeddingModel is the default model for generating embeddings
	DefaultEmbeddingModel = "text-embedding-004"
	// DefaultEmbeddingDimensions is the output dimension for embeddings
	DefaultEmbeddingDimensions = int32(768)
)

// Purpose tells the embedding model which side of a retrieval an input is on.
type Purpose string

const (
	PurposeQuery    Purpose = "RETRIEVAL_QUERY"
	PurposeDocument Purpose = "RETRIEVAL_DOCUMENT"
)

// Reply is the raw text of one generation call.
type Reply struct {
	Text         string
	FinishReason string
}

// models is the subset of the genai Models service the client uses.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Options configures a Client.
type Options struct {
	APIKey              string
	Model               string
	EmbeddingModel      string
	EmbeddingDimensions int32
	Temperature         float32
	MaxTokens           int32
	Timeout             time.Duration
}

// OptionsFromConfig maps the Gemini config section onto client options.
func OptionsFromConfig(cfg config.GeminiConfig) Options {
	return Options{
		APIKey:              cfg.APIKey,
		Model:               cfg.Model,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		Temperature:         cfg.Temperature,
		MaxTokens:           cfg.MaxTokens,
		Timeout:             config.Duration(cfg.Timeout, 60*time.Second),
	}
}

// Client talks to Gemini for both generation and embeddings.
// A single Client is safe for concurrent use.
type Client struct {
	models         models
	modelName      string
	embeddingModel string
	dims           int32
	temperature    float32
	maxTokens      int32
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	gClient, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newClient(gClient.Models, opts), nil
}

func newClient(m models, opts Options) *Client {
	c := &Client{
		models:         m,
		modelName:      opts.Model,
		embeddingModel: opts.EmbeddingModel,
		dims:           opts.EmbeddingDimensions,
		temperature:    opts.Temperature,
		maxTokens:      opts.MaxTokens,
	}
	if c.modelName == "" {
		c.modelName = DefaultModel
	}
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultEmbeddingModel
	}
	if c.dims == 0 {
		c.dims = DefaultEmbeddingDimensions
	}
	return c
}

// ModelName returns the generation model in use.
func (c *Client) ModelName() string {
	return c.modelName
}

// Generate sends one prompt, with an optional attachment as a second part,
// and asks for a JSON response. The reply text is returned unparsed.
// A reply without content yields ErrBlocked.
func (c *Client) Generate(ctx context.Context, prompt, attachment string) (Reply, error) {
	if prompt == "" {
		return Reply{}, fmt.Errorf("prompt cannot be empty")
	}

	parts := []*genai.Part{{Text: prompt}}
	if attachment != "" {
		parts = append(parts, &genai.Part{Text: attachment})
	}
	contents := []*genai.Content{{
		Parts: parts,
		Role:  "user",
	}}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if c.temperature > 0 {
		temp := c.temperature
		cfg.Temperature = &temp
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}

	resp, err := c.models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return Reply{}, &TransportError{Service: "gemini", Op: "generate", Err: err}
	}

	return replyFromResponse(resp)
}

// replyFromResponse separates a blocked or empty response from a usable one.
func replyFromResponse(resp *genai.GenerateContentResponse) (Reply, error) {
	if resp == nil {
		return Reply{}, fmt.Errorf("%w: empty response", ErrBlocked)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return Reply{}, fmt.Errorf("%w: prompt blocked: %s", ErrBlocked, fb.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return Reply{}, fmt.Errorf("%w: no candidates", ErrBlocked)
	}

	cand := resp.Candidates[0]
	finish := string(cand.FinishReason)
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return Reply{}, fmt.Errorf("%w: candidate has no content (finish reason %q)", ErrBlocked, finish)
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		return Reply{}, fmt.Errorf("%w: candidate has no text (finish reason %q)", ErrBlocked, finish)
	}

	return Reply{Text: sb.String(), FinishReason: finish}, nil
}

// Embed returns a single vector for text.
func (c *Client) Embed(ctx context.Context, text string, purpose Purpose) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbeddingError{Reason: "empty input"}
	}
	vectors, err := c.embed(ctx, []string{text}, purpose)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of passages for storage.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return c.embed(ctx, texts, PurposeDocument)
}

func (c *Client) embed(ctx context.Context, texts []string, purpose Purpose) ([][]float64, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: t}},
			Role:  "user",
		}
	}

	dims := c.dims
	cfg := &genai.EmbedContentConfig{
		TaskType:             string(purpose),
		OutputDimensionality: &dims,
	}

	resp, err := c.models.EmbedContent(ctx, c.embeddingModel, contents, cfg)
	if err != nil {
		return nil, &EmbeddingError{Reason: "embedding service error", Err: &TransportError{Service: "gemini", Op: "embed", Err: err}}
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, &EmbeddingError{Reason: "response is missing vectors"}
	}

	out := make([][]float64, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, &EmbeddingError{Reason: fmt.Sprintf("no vector for input %d", i)}
		}
		v := make([]float64, len(e.Values))
		for j, val := range e.Values {
			v[j] = float64(val)
		}
		out[i] = v
	}
	return out, nil
}

// CosineSimilarity calculates the cosine similarity between two embeddings
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
