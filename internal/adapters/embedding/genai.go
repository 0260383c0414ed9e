package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// GenAIAdapter implements ports.EmbeddingService using Google's Gemini API.
type GenAIAdapter struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

// NewGenAIAdapter creates a Gemini embedder.
func NewGenAIAdapter(ctx context.Context, apiKey, model string, logger zerolog.Logger) (*GenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	return newGenAIAdapter(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}, model, logger)
}

func newGenAIAdapter(ctx context.Context, cfg *genai.ClientConfig, model string, logger zerolog.Logger) (*GenAIAdapter, error) {
	if model == "" {
		model = "gemini-embedding-001"
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIAdapter{
		client: client,
		model:  model,
		logger: logger.With().Str("provider", "genai").Str("model", model).Logger(),
	}, nil
}

// Embed generates an embedding for a single text.
func (a *GenAIAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return out[0], nil
}

// EmbedBatch sends every text in one request.
func (a *GenAIAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := a.client.Models.EmbedContent(ctx, a.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("GenAI returned %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		embeddings[i] = emb.Values
	}
	a.logger.Debug().Int("count", len(embeddings)).Msg("embedded batch")
	return embeddings, nil
}
