package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/oracle"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// AskUseCase answers questions, grounding them on similar stored solutions.
type AskUseCase struct {
	oracle    *oracle.CodeOracle
	solutions SolutionSearcher
	limit     int
	logger    zerolog.Logger
}

// NewAskUseCase creates an AskUseCase looking at up to limit solutions.
func NewAskUseCase(o *oracle.CodeOracle, solutions SolutionSearcher, limit int, logger zerolog.Logger) *AskUseCase {
	if limit <= 0 {
		limit = 3
	}
	return &AskUseCase{
		oracle:    o,
		solutions: solutions,
		limit:     limit,
		logger:    logger.With().Str("component", "ask").Logger(),
	}
}

// Ask answers question. background is optional caller-supplied context.
func (uc *AskUseCase) Ask(ctx context.Context, question, background string) (string, error) {
	return uc.oracle.AnswerQuestion(ctx, question, uc.Context(ctx, question, background))
}

// AskStream is Ask delivered as a token stream.
func (uc *AskUseCase) AskStream(ctx context.Context, question, background string) (<-chan ports.StreamToken, error) {
	return uc.oracle.AnswerQuestionStream(ctx, question, uc.Context(ctx, question, background))
}

// Context joins background with a digest of similar solutions.
// A failed search only drops the digest.
func (uc *AskUseCase) Context(ctx context.Context, question, background string) string {
	var sb strings.Builder

	solutions, err := uc.solutions.SearchSolutions(ctx, question, uc.limit)
	if err != nil {
		uc.logger.Warn().Err(err).Msg("solution search failed")
	}
	if len(solutions) > 0 {
		sb.WriteString("\n\nSolutions similaires trouvées dans la base de connaissances :\n")
		for i, s := range solutions {
			fmt.Fprintf(&sb, "\n%d. %s\n   Solution : %s...\n", i+1, orNA(s.Problem), truncate(orNA(s.Solution), 200))
		}
	}

	digest := sb.String()
	if background != "" {
		return background + "\n" + digest
	}
	return digest
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
