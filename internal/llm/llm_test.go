package llm

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockModels struct {
	GenerateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedFunc    func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.GenerateFunc(ctx, model, contents, cfg)
}

func (m *mockModels) EmbedContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	return m.EmbedFunc(ctx, model, contents, cfg)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func TestGenerateSendsPromptAndAttachment(t *testing.T) {
	var gotContents []*genai.Content
	var gotCfg *genai.GenerateContentConfig
	m := &mockModels{
		GenerateFunc: func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			assert.Equal(t, "test-model", model)
			gotContents, gotCfg = contents, cfg
			return textResponse(`{"contradictions": []}`), nil
		},
	}
	c := newClient(m, Options{Model: "test-model", Temperature: 0.2})

	reply, err := c.Generate(context.Background(), "prompt", "attachment")
	require.NoError(t, err)
	assert.Equal(t, `{"contradictions": []}`, reply.Text)

	require.Len(t, gotContents, 1)
	require.Len(t, gotContents[0].Parts, 2)
	assert.Equal(t, "prompt", gotContents[0].Parts[0].Text)
	assert.Equal(t, "attachment", gotContents[0].Parts[1].Text)
	assert.Equal(t, "application/json", gotCfg.ResponseMIMEType)
	require.NotNil(t, gotCfg.Temperature)
	assert.InDelta(t, 0.2, *gotCfg.Temperature, 1e-6)
}

func TestGenerateTransportError(t *testing.T) {
	m := &mockModels{
		GenerateFunc: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("connection reset")
		},
	}
	c := newClient(m, Options{})

	_, err := c.Generate(context.Background(), "prompt", "")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "gemini", te.Service)
	assert.False(t, errors.Is(err, ErrBlocked))
}

func TestReplyFromResponseBlocked(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"prompt blocked", &genai.GenerateContentResponse{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
		}},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"no content", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}},
		{"no parts", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := replyFromResponse(tt.resp)
			assert.ErrorIs(t, err, ErrBlocked)
		})
	}
}

func TestReplyFromResponseSkipsThoughts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: `{"conversation":`},
				{Text: ` []}`},
			}},
		}},
	}
	reply, err := replyFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"conversation": []}`, reply.Text)
}

func TestEmbed(t *testing.T) {
	m := &mockModels{
		EmbedFunc: func(_ context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			assert.Equal(t, DefaultEmbeddingModel, model)
			assert.Equal(t, string(PurposeQuery), cfg.TaskType)
			require.NotNil(t, cfg.OutputDimensionality)
			assert.Equal(t, DefaultEmbeddingDimensions, *cfg.OutputDimensionality)
			require.Len(t, contents, 1)
			return &genai.EmbedContentResponse{
				Embeddings: []*genai.ContentEmbedding{{Values: []float32{0.5, -0.25}}},
			}, nil
		},
	}
	c := newClient(m, Options{})

	v, err := c.Embed(context.Background(), "selected text", PurposeQuery)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -0.25}, v)
}

func TestEmbedFailures(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
	}{
		{"service error", func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			return nil, errors.New("quota exceeded")
		}},
		{"missing vector", func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			return &genai.EmbedContentResponse{}, nil
		}},
		{"empty values", func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			return &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{}}}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(&mockModels{EmbedFunc: tt.fn}, Options{})
			_, err := c.Embed(context.Background(), "text", PurposeQuery)
			var ee *EmbeddingError
			assert.ErrorAs(t, err, &ee)
		})
	}

	c := newClient(&mockModels{}, Options{})
	_, err := c.Embed(context.Background(), "   ", PurposeQuery)
	var ee *EmbeddingError
	assert.ErrorAs(t, err, &ee)
}

func TestEmbedDocumentsBatch(t *testing.T) {
	m := &mockModels{
		EmbedFunc: func(_ context.Context, _ string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
			assert.Equal(t, string(PurposeDocument), cfg.TaskType)
			out := &genai.EmbedContentResponse{}
			for range contents {
				out.Embeddings = append(out.Embeddings, &genai.ContentEmbedding{Values: []float32{1}})
			}
			return out, nil
		},
	}
	c := newClient(m, Options{})

	vs, err := c.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vs, 3)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 2}))
	assert.False(t, math.IsNaN(CosineSimilarity([]float64{0, 0}, []float64{0, 0})))
}

func TestNewClientNoAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API key is required")
}

func TestGenerateIntegration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	c, err := NewClient(context.Background(), Options{APIKey: apiKey})
	require.NoError(t, err)

	reply, err := c.Generate(context.Background(), `Return {"ok": true} as JSON.`, "")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "ok")
}
