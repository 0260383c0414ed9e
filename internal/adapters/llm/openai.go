package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// OpenAIClient implements ports.ChatService against any OpenAI-compatible
// /chat/completions endpoint.
type OpenAIClient struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

// NewOpenAIClient creates a client. Missing endpoint and key fall back to
// OPENAI_BASE_URL and OPENAI_API_KEY.
func NewOpenAIClient(opts Options, logger zerolog.Logger) *OpenAIClient {
	if opts.Endpoint == "" {
		opts.Endpoint = os.Getenv("OPENAI_BASE_URL")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "https://api.openai.com/v1"
	}
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if opts.Model == "" {
		opts.Model = "gpt-4.1-mini"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 300 * time.Second
	}
	return &OpenAIClient{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger.With().Str("provider", "openai").Logger(),
	}
}

type openAIChatRequest struct {
	Model       string                 `json:"model"`
	Messages    []entities.ChatMessage `json:"messages"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
	Temperature float64                `json:"temperature"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req entities.ChatRequest) (string, error) {
	start := time.Now()

	body := openAIChatRequest{
		Model:       c.opts.Model,
		Messages:    req.Messages,
		MaxTokens:   c.opts.maxTokens(req.MaxTokens),
		Temperature: c.opts.temperature(req.Temperature),
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.opts.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: calling OpenAI: %v", entities.ErrOracleTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: OpenAI error (status %d): %s",
			entities.ErrOracleTransport, resp.StatusCode, readLimitedBody(resp.Body))
	}

	var chatResp openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding OpenAI response: %v", entities.ErrOracleTransport, err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("%w: OpenAI returned no choices", entities.ErrOracleTransport)
	}

	c.logger.Debug().
		Str("model", c.opts.Model).
		Int("prompt_tokens", chatResp.Usage.PromptTokens).
		Int("completion_tokens", chatResp.Usage.CompletionTokens).
		Dur("took", time.Since(start)).
		Msg("chat completed")

	return chatResp.Choices[0].Message.Content, nil
}
