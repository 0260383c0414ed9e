package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// OllamaClient implements ports.StreamingChatService using the Ollama chat API.
type OllamaClient struct {
	opts   Options
	client *http.Client
	logger zerolog.Logger
}

// NewOllamaClient creates a new Ollama chat client.
func NewOllamaClient(opts Options, logger zerolog.Logger) *OllamaClient {
	if opts.Endpoint == "" {
		opts.Endpoint = "http://localhost:11434"
	}
	if opts.Model == "" {
		opts.Model = "llama3.2"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 300 * time.Second
	}
	return &OllamaClient{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		logger: logger.With().Str("provider", "ollama").Logger(),
	}
}

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []entities.ChatMessage `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  ollamaOptions          `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message entities.ChatMessage `json:"message"`
	Done    bool                 `json:"done"`
}

func (c *OllamaClient) do(ctx context.Context, req entities.ChatRequest, stream bool) (*http.Response, error) {
	body := ollamaChatRequest{
		Model:    c.opts.Model,
		Messages: req.Messages,
		Stream:   stream,
		Options: ollamaOptions{
			Temperature: c.opts.temperature(req.Temperature),
			NumPredict:  c.opts.maxTokens(req.MaxTokens),
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: calling Ollama: %v", entities.ErrOracleTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("%w: Ollama returned status %d: %s",
			entities.ErrOracleTransport, resp.StatusCode, readLimitedBody(resp.Body))
	}
	return resp, nil
}

// Chat sends the conversation and returns the assistant message.
func (c *OllamaClient) Chat(ctx context.Context, req entities.ChatRequest) (string, error) {
	start := time.Now()
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decoding Ollama response: %v", entities.ErrOracleTransport, err)
	}

	c.logger.Debug().Str("model", c.opts.Model).Dur("took", time.Since(start)).Msg("chat completed")
	return chatResp.Message.Content, nil
}

// ChatStream streams newline-delimited chat chunks as tokens.
func (c *OllamaClient) ChatStream(ctx context.Context, req entities.ChatRequest) (<-chan ports.StreamToken, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}

	ch := make(chan ports.StreamToken, 100)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				ch <- ports.StreamToken{Done: true, Error: ctx.Err()}
				return
			default:
			}

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var chunk ollamaChatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue // skip malformed lines
			}

			ch <- ports.StreamToken{Content: chunk.Message.Content, Done: chunk.Done}
			if chunk.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			ch <- ports.StreamToken{Done: true, Error: err}
		}
	}()

	return ch, nil
}
