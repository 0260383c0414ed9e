package usecases

import (
	"context"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/knowledge"
)

// The knowledge store is consumed through these narrow views so each usecase
// only sees the operations it needs. *knowledge.Store satisfies all of them.
type (
	HistoryRecorder interface {
		SaveProjectHistory(ctx context.Context, name, description string, files map[string]string, metadata map[string]any) (string, error)
	}

	SolutionRecorder interface {
		SaveSolution(ctx context.Context, problem, solution, details string, tags []string) (string, error)
	}

	SolutionSearcher interface {
		SearchSolutions(ctx context.Context, query string, limit int) ([]entities.Solution, error)
	}

	Reindexer interface {
		Reindex(ctx context.Context) (knowledge.ReindexStats, error)
	}
)

var (
	_ HistoryRecorder  = (*knowledge.Store)(nil)
	_ SolutionRecorder = (*knowledge.Store)(nil)
	_ SolutionSearcher = (*knowledge.Store)(nil)
	_ Reindexer        = (*knowledge.Store)(nil)
)
