// Package knowledge persists templates, solutions and project histories.
//
// The filesystem copy of every record is authoritative. Similarity search is
// delegated to a Retriever, whose index can always be rebuilt with Reindex.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/safety"
)

const (
	templatesDir = "templates"
	solutionsDir = "solutions"
	historyDir   = "projects_history"

	idTimeLayout = "20060102_150405"
)

// Store is the knowledge base rooted at one directory.
type Store struct {
	base      string
	retriever Retriever
	logger    zerolog.Logger
	now       func() time.Time
}

// New creates a Store and its directory layout.
func New(base string, retriever Retriever, logger zerolog.Logger) (*Store, error) {
	for _, dir := range []string{templatesDir, solutionsDir, historyDir} {
		if err := os.MkdirAll(filepath.Join(base, dir), 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", entities.ErrFileSystem, dir, err)
		}
	}
	if retriever == nil {
		retriever = KeywordRetriever{}
	}
	return &Store{
		base:      base,
		retriever: retriever,
		logger:    logger.With().Str("component", "knowledge").Str("retriever", retriever.Name()).Logger(),
		now:       time.Now,
	}, nil
}

// Path returns the knowledge base root.
func (s *Store) Path() string { return s.base }

// Semantic reports whether searches use a vector index.
func (s *Store) Semantic() bool { return s.retriever.Semantic() }

func (s *Store) newID(kind, name string) string {
	parts := []string{kind}
	if name != "" {
		parts = append(parts, name)
	}
	parts = append(parts, s.now().Format(idTimeLayout), uuid.NewString()[:8])
	return strings.Join(parts, "_")
}

// SaveTemplate writes templates/<language>/<name>.json plus the raw code file,
// then indexes the template. A record it overwrites is removed from the index.
func (s *Store) SaveTemplate(ctx context.Context, name, description, code, language string, tags []string) (string, error) {
	fileName := safety.SafeSegment(name, "template")
	langDir := safety.SafeSegment(strings.ToLower(language), "text")

	t := entities.Template{
		ID:          s.newID("template", fileName),
		Name:        name,
		Description: description,
		Code:        code,
		Language:    language,
		Tags:        nonNil(tags),
		CreatedAt:   s.now().Format(time.RFC3339),
	}

	dir := filepath.Join(s.base, templatesDir, langDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating template dir: %v", entities.ErrFileSystem, err)
	}
	jsonPath := filepath.Join(dir, fileName+".json")
	var prev entities.Template
	_ = readJSON(jsonPath, &prev)
	if err := writeJSON(jsonPath, t); err != nil {
		return "", err
	}
	codePath := filepath.Join(dir, fileName+"."+Extension(language))
	if err := os.WriteFile(codePath, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("%w: writing template code: %v", entities.ErrFileSystem, err)
	}

	if prev.ID != "" && prev.ID != t.ID {
		if err := s.retriever.RemoveTemplate(ctx, prev.ID); err != nil {
			s.logger.Warn().Err(err).Str("id", prev.ID).Msg("replaced template still indexed")
		}
	}
	if err := s.retriever.IndexTemplate(ctx, t); err != nil {
		s.logger.Warn().Err(err).Str("id", t.ID).Msg("template saved but not indexed")
	}
	s.logger.Info().Str("id", t.ID).Str("language", language).Msg("template saved")
	return t.ID, nil
}

// SearchTemplates finds templates matching query, optionally restricted to a language.
func (s *Store) SearchTemplates(ctx context.Context, query, language string, limit int) ([]entities.Template, error) {
	return s.retriever.SearchTemplates(ctx, s, query, language, limit)
}

// GetTemplate loads a template by id.
func (s *Store) GetTemplate(id string) (*entities.Template, error) {
	all, err := s.ListTemplates("")
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("template %s: %w", id, entities.ErrNotFound)
}

// ListTemplates returns every template on disk, filtered by language directory when set.
func (s *Store) ListTemplates(language string) ([]entities.Template, error) {
	root := filepath.Join(s.base, templatesDir)
	langDirs, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading templates: %v", entities.ErrFileSystem, err)
	}

	want := ""
	if language != "" {
		want = safety.SafeSegment(strings.ToLower(language), "text")
	}

	var out []entities.Template
	for _, d := range langDirs {
		if !d.IsDir() || (want != "" && d.Name() != want) {
			continue
		}
		files, _ := filepath.Glob(filepath.Join(root, d.Name(), "*.json"))
		sort.Strings(files)
		for _, f := range files {
			var t entities.Template
			if err := readJSON(f, &t); err != nil {
				s.logger.Debug().Err(err).Str("file", f).Msg("skipping unreadable template")
				continue
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// SaveSolution writes solutions/<id>.json, then indexes it.
func (s *Store) SaveSolution(ctx context.Context, problem, solution, details string, tags []string) (string, error) {
	sol := entities.Solution{
		ID:        s.newID("solution", ""),
		Problem:   problem,
		Solution:  solution,
		Context:   details,
		Tags:      nonNil(tags),
		CreatedAt: s.now().Format(time.RFC3339),
	}

	if err := writeJSON(filepath.Join(s.base, solutionsDir, sol.ID+".json"), sol); err != nil {
		return "", err
	}

	if err := s.retriever.IndexSolution(ctx, sol); err != nil {
		s.logger.Warn().Err(err).Str("id", sol.ID).Msg("solution saved but not indexed")
	}
	s.logger.Info().Str("id", sol.ID).Msg("solution saved")
	return sol.ID, nil
}

// SearchSolutions finds solutions similar to query. Without a vector index it
// returns nothing: there is no keyword fallback for solutions.
func (s *Store) SearchSolutions(ctx context.Context, query string, limit int) ([]entities.Solution, error) {
	return s.retriever.SearchSolutions(ctx, s, query, limit)
}

// GetSolution loads a solution by id.
func (s *Store) GetSolution(id string) (*entities.Solution, error) {
	if safety.SafeSegment(id, "") != id {
		return nil, fmt.Errorf("solution %q: %w", id, entities.ErrNotFound)
	}
	var sol entities.Solution
	if err := readJSON(filepath.Join(s.base, solutionsDir, id+".json"), &sol); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("solution %s: %w", id, entities.ErrNotFound)
		}
		return nil, err
	}
	return &sol, nil
}

// ListSolutions returns every solution on disk, oldest id first.
func (s *Store) ListSolutions() ([]entities.Solution, error) {
	files, err := filepath.Glob(filepath.Join(s.base, solutionsDir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	out := make([]entities.Solution, 0, len(files))
	for _, f := range files {
		var sol entities.Solution
		if err := readJSON(f, &sol); err != nil {
			s.logger.Debug().Err(err).Str("file", f).Msg("skipping unreadable solution")
			continue
		}
		out = append(out, sol)
	}
	return out, nil
}

// SaveProjectHistory writes projects_history/<name>/<id>.json and copies the
// artifact tree into projects_history/<name>/<id>/.
func (s *Store) SaveProjectHistory(ctx context.Context, name, description string, files map[string]string, metadata map[string]any) (string, error) {
	dirName := safety.SafeSegment(name, entities.DefaultProjectName)
	if metadata == nil {
		metadata = map[string]any{}
	}
	rec := entities.ProjectRecord{
		ID:          s.newID("project", dirName),
		ProjectName: name,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   s.now().Format(time.RFC3339),
	}

	dir := filepath.Join(s.base, historyDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating history dir: %v", entities.ErrFileSystem, err)
	}
	if err := writeJSON(filepath.Join(dir, rec.ID+".json"), rec); err != nil {
		return "", err
	}

	filesDir := filepath.Join(dir, rec.ID)
	for rel, content := range files {
		if !safety.SafeRelative(rel) {
			s.logger.Warn().Str("file", rel).Msg("skipping unsafe artifact path in history")
			continue
		}
		target := filepath.Join(filesDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", fmt.Errorf("%w: %v", entities.ErrFileSystem, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return "", fmt.Errorf("%w: writing history artifact: %v", entities.ErrFileSystem, err)
		}
	}

	s.logger.Info().Str("id", rec.ID).Int("files", len(files)).Msg("project history saved")
	return rec.ID, nil
}

// ProjectHistory returns the records saved for a project, oldest first.
func (s *Store) ProjectHistory(name string) ([]entities.ProjectRecord, error) {
	dir := filepath.Join(s.base, historyDir, safety.SafeSegment(name, entities.DefaultProjectName))
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var out []entities.ProjectRecord
	for _, f := range files {
		var rec entities.ProjectRecord
		if err := readJSON(f, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", entities.ErrFileSystem, filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

var extensions = map[string]string{
	"python":     "py",
	"javascript": "js",
	"typescript": "ts",
	"html":       "html",
	"css":        "css",
	"java":       "java",
	"cpp":        "cpp",
	"c":          "c",
	"go":         "go",
	"rust":       "rs",
	"ruby":       "rb",
	"php":        "php",
	"swift":      "swift",
	"kotlin":     "kt",
}

// Extension returns the source file extension for a language name, "txt" if unknown.
func Extension(language string) string {
	if ext, ok := extensions[strings.ToLower(language)]; ok {
		return ext
	}
	return "txt"
}
