// Package llm provides chat-completion transports.
// Each adapter implements ports.ChatService for one wire protocol.
package llm

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/config"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// maxErrorBodySize bounds how much of an error response ends up in an error message.
const maxErrorBodySize = 4 << 10

// Options are shared by every HTTP transport.
type Options struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func (o Options) temperature(t float64) float64 {
	if t != 0 {
		return t
	}
	return o.Temperature
}

func (o Options) maxTokens(n int) int {
	if n != 0 {
		return n
	}
	return o.MaxTokens
}

// New builds the transport named by cfg.Provider.
func New(cfg config.LLMConfig, logger zerolog.Logger) (ports.ChatService, error) {
	opts := Options{
		Endpoint:    cfg.Endpoint,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
	}
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIClient(opts, logger), nil
	case "ollama":
		return NewOllamaClient(opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func readLimitedBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	return strings.TrimSpace(string(b))
}
