package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// ReindexStats reports what a rebuild indexed.
type ReindexStats struct {
	Templates int `json:"templates"`
	Solutions int `json:"solutions"`
	Failed    int `json:"failed"`
}

// Reindex rebuilds the derived index from the filesystem records.
// Records that fail to index are counted and skipped.
func (s *Store) Reindex(ctx context.Context) (ReindexStats, error) {
	var stats ReindexStats
	if !s.retriever.Semantic() {
		return stats, nil
	}
	if err := s.retriever.Reset(ctx); err != nil {
		return stats, fmt.Errorf("resetting index: %w", err)
	}

	templates, err := s.ListTemplates("")
	if err != nil {
		return stats, err
	}
	if err := s.retriever.IndexTemplates(ctx, templates); err != nil {
		s.logger.Warn().Err(err).Msg("reindex: template batch failed, indexing one by one")
		for _, t := range templates {
			if err := s.retriever.IndexTemplate(ctx, t); err != nil {
				s.logger.Warn().Err(err).Str("id", t.ID).Msg("reindex: template failed")
				stats.Failed++
				continue
			}
			stats.Templates++
		}
	} else {
		stats.Templates = len(templates)
	}

	solutions, err := s.ListSolutions()
	if err != nil {
		return stats, err
	}
	if err := s.retriever.IndexSolutions(ctx, solutions); err != nil {
		s.logger.Warn().Err(err).Msg("reindex: solution batch failed, indexing one by one")
		for _, sol := range solutions {
			if err := s.retriever.IndexSolution(ctx, sol); err != nil {
				s.logger.Warn().Err(err).Str("id", sol.ID).Msg("reindex: solution failed")
				stats.Failed++
				continue
			}
			stats.Solutions++
		}
	} else {
		stats.Solutions = len(solutions)
	}

	s.logger.Info().
		Int("templates", stats.Templates).
		Int("solutions", stats.Solutions).
		Int("failed", stats.Failed).
		Msg("reindex complete")
	return stats, nil
}

// Watch rebuilds the index whenever template or solution records change on
// disk. Bursts of events are coalesced over debounce. Blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, watcher ports.FileWatcher, debounce time.Duration) error {
	events, err := watcher.Watch(ctx, s.base)
	if err != nil {
		return fmt.Errorf("watching knowledge base: %w", err)
	}
	defer watcher.Stop()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !s.isIndexedRecord(ev.Path) {
				continue
			}
			s.logger.Debug().Str("path", ev.Path).Msg("knowledge record changed")
			pending = time.After(debounce)
		case <-pending:
			pending = nil
			if _, err := s.Reindex(ctx); err != nil {
				s.logger.Error().Err(err).Msg("reindex after change failed")
			}
		}
	}
}

func (s *Store) isIndexedRecord(path string) bool {
	rel, err := filepath.Rel(s.base, path)
	if err != nil || filepath.Ext(path) != ".json" {
		return false
	}
	rel = filepath.ToSlash(rel)
	return strings.HasPrefix(rel, templatesDir+"/") || strings.HasPrefix(rel, solutionsDir+"/")
}
