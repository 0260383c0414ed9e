package embedding

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/config"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// New builds the embedder named by cfg.Provider. The genai key falls back to GEMINI_API_KEY.
func New(ctx context.Context, cfg config.EmbeddingConfig, logger zerolog.Logger) (ports.EmbeddingService, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaAdapter(cfg.Endpoint, cfg.Model, logger), nil
	case "genai":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		return NewGenAIAdapter(ctx, key, cfg.Model, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
