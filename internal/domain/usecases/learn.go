package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LearnUseCase turns free-form content into a stored solution.
type LearnUseCase struct {
	solutions SolutionRecorder
	logger    zerolog.Logger
}

// NewLearnUseCase creates a LearnUseCase.
func NewLearnUseCase(solutions SolutionRecorder, logger zerolog.Logger) *LearnUseCase {
	return &LearnUseCase{
		solutions: solutions,
		logger:    logger.With().Str("component", "learn").Logger(),
	}
}

// Learn stores content and returns the record id. For the "solution" type,
// content of the form "Problème: ... Solution: ..." is split in two.
// Other types are stored whole, tagged with their type by default.
func (uc *LearnUseCase) Learn(ctx context.Context, content, contentType string, tags []string) (string, error) {
	if contentType == "" {
		contentType = "solution"
	}

	var problem, solution string
	if contentType == "solution" {
		problem, solution = splitSolution(content)
	} else {
		problem = fmt.Sprintf("Connaissance de type %s", contentType)
		solution = content
		if len(tags) == 0 {
			tags = []string{contentType}
		}
	}

	id, err := uc.solutions.SaveSolution(ctx, problem, solution, "", tags)
	if err != nil {
		return "", err
	}
	uc.logger.Info().Str("id", id).Str("type", contentType).Msg("knowledge saved")
	return id, nil
}

func splitSolution(content string) (problem, solution string) {
	before, after, found := strings.Cut(content, "Solution:")
	if !found {
		return "Connaissance générale", content
	}
	return strings.TrimSpace(strings.ReplaceAll(before, "Problème:", "")), strings.TrimSpace(after)
}
