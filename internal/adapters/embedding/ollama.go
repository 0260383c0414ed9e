// Package embedding provides embedding adapters.
// Each adapter implements ports.EmbeddingService; the domain layer never
// sees provider specifics.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
)

// OllamaAdapter implements ports.EmbeddingService over Ollama's /api/embed,
// which accepts a whole batch in one request.
type OllamaAdapter struct {
	baseURL string
	model   string
	client  *http.Client
	logger  zerolog.Logger
}

// NewOllamaAdapter creates an Ollama embedder. Empty values fall back to a
// local server and nomic-embed-text.
func NewOllamaAdapter(baseURL, model string, logger zerolog.Logger) *OllamaAdapter {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger.With().Str("provider", "ollama").Str("model", model).Logger(),
	}
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed generates an embedding for a single text.
func (a *OllamaAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := a.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds every text in one call. The result is index-aligned with texts.
func (a *OllamaAdapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: a.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error().Err(err).Msg("embedding call failed")
		return nil, fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("Ollama returned %d embeddings for %d texts", len(out.Embeddings), len(texts))
	}
	for i, v := range out.Embeddings {
		if len(v) == 0 {
			return nil, fmt.Errorf("Ollama returned an empty embedding for text %d", i)
		}
	}

	a.logger.Debug().Int("texts", len(texts)).Int("dims", len(out.Embeddings[0])).Msg("embedded batch")
	return out.Embeddings, nil
}
