package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/jarvis-go/internal/adapters/vectordb"
	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// vocabEmbedder maps text to word counts over a tiny fixed vocabulary.
type vocabEmbedder struct {
	fail       bool
	failBatch  bool
	batchCalls int
}

var vocab = []string{"flask", "express", "react", "erreur", "import"}

func (e *vocabEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.fail {
		return nil, errors.New("embedder offline")
	}
	lower := strings.ToLower(text)
	vec := make([]float32, len(vocab)+1)
	for i, w := range vocab {
		vec[i] = float32(strings.Count(lower, w))
	}
	vec[len(vocab)] = 0.01
	return vec, nil
}

func (e *vocabEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	if e.failBatch {
		return nil, errors.New("batch endpoint unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newKeywordStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func newVectorStore(t *testing.T, emb *vocabEmbedder) (*Store, *vectordb.InMemoryIndex) {
	t.Helper()
	idx := vectordb.NewInMemoryIndex()
	s, err := New(t.TempDir(), NewVectorRetriever(emb, idx), zerolog.Nop())
	require.NoError(t, err)
	return s, idx
}

func TestStore_SaveThenGetSolution(t *testing.T) {
	s := newKeywordStore(t)

	id, err := s.SaveSolution(context.Background(), "X", "Y", "", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "solution_"))

	sol, err := s.GetSolution(id)
	require.NoError(t, err)
	assert.Equal(t, "X", sol.Problem)
	assert.Equal(t, "Y", sol.Solution)
	assert.NotEmpty(t, sol.CreatedAt)
	assert.Equal(t, []string{}, sol.Tags)

	_, err = s.GetSolution("solution_missing")
	assert.ErrorIs(t, err, entities.ErrNotFound)
	_, err = s.GetSolution("../../etc/passwd")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestStore_IDsAreUniqueWithinASecond(t *testing.T) {
	s := newKeywordStore(t)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	a, err := s.SaveSolution(context.Background(), "p", "s", "", nil)
	require.NoError(t, err)
	b, err := s.SaveSolution(context.Background(), "p", "s", "", nil)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "20260102_030405")
}

func TestStore_SaveTemplateLayout(t *testing.T) {
	s := newKeywordStore(t)

	id, err := s.SaveTemplate(context.Background(), "flask_app", "Minimal <Flask> app", "from flask import Flask", "Python", []string{"web", "api"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "template_flask_app_"))

	dir := filepath.Join(s.Path(), "templates", "python")
	assert.FileExists(t, filepath.Join(dir, "flask_app.json"))
	code, err := os.ReadFile(filepath.Join(dir, "flask_app.py"))
	require.NoError(t, err)
	assert.Equal(t, "from flask import Flask", string(code))

	raw, err := os.ReadFile(filepath.Join(dir, "flask_app.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<Flask>", "HTML must not be escaped")

	got, err := s.GetTemplate(id)
	require.NoError(t, err)
	assert.Equal(t, "Minimal <Flask> app", got.Description)

	_, err = s.GetTemplate("template_nope")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestStore_KeywordSearchTemplates(t *testing.T) {
	s := newKeywordStore(t)
	ctx := context.Background()

	_, _ = s.SaveTemplate(ctx, "flask_app", "Minimal Flask app", "x", "python", []string{"web"})
	_, _ = s.SaveTemplate(ctx, "express_app", "Express server", "y", "javascript", []string{"web", "node"})
	_, _ = s.SaveTemplate(ctx, "cli_tool", "Click CLI", "z", "python", []string{"Terminal"})

	got, err := s.SearchTemplates(ctx, "WEB", "", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.SearchTemplates(ctx, "web", "python", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "flask_app", got[0].Name)

	got, err = s.SearchTemplates(ctx, "terminal", "", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cli_tool", got[0].Name)

	got, err = s.SearchTemplates(ctx, "app", "", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_KeywordSearchSolutionsIsEmpty(t *testing.T) {
	s := newKeywordStore(t)
	ctx := context.Background()
	_, _ = s.SaveSolution(ctx, "ImportError flask", "pip install flask", "", nil)

	got, err := s.SearchSolutions(ctx, "flask", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, s.Semantic())
}

func TestStore_VectorSearch(t *testing.T) {
	s, _ := newVectorStore(t, &vocabEmbedder{})
	ctx := context.Background()

	flaskID, err := s.SaveTemplate(ctx, "flask_app", "flask flask", "import flask", "python", []string{"web"})
	require.NoError(t, err)
	_, err = s.SaveTemplate(ctx, "express_app", "express", "express()", "javascript", nil)
	require.NoError(t, err)
	solID, err := s.SaveSolution(ctx, "erreur import flask", "pip install flask", "", []string{"python", "fix"})
	require.NoError(t, err)

	templates, err := s.SearchTemplates(ctx, "flask", "", 5)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, flaskID, templates[0].ID)
	assert.Equal(t, "import flask", templates[0].Code, "hits are hydrated from disk")
	assert.LessOrEqual(t, templates[0].Score, templates[1].Score)

	templates, err = s.SearchTemplates(ctx, "flask", "javascript", 5)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "express_app", templates[0].Name)

	solutions, err := s.SearchSolutions(ctx, "erreur flask", 3)
	require.NoError(t, err)
	require.Len(t, solutions, 1)
	assert.Equal(t, solID, solutions[0].ID)
	assert.Equal(t, "pip install flask", solutions[0].Solution)
}

func TestStore_ResaveTemplateReplacesIndexEntry(t *testing.T) {
	s, _ := newVectorStore(t, &vocabEmbedder{})
	ctx := context.Background()

	oldID, err := s.SaveTemplate(ctx, "flask_app", "flask v1", "import flask", "python", nil)
	require.NoError(t, err)
	newID, err := s.SaveTemplate(ctx, "flask_app", "flask v2", "import flask as f", "python", nil)
	require.NoError(t, err)
	require.NotEqual(t, oldID, newID)

	_, err = s.GetTemplate(oldID)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	templates, err := s.SearchTemplates(ctx, "flask", "", 5)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, newID, templates[0].ID)
	assert.Equal(t, "import flask as f", templates[0].Code)
}

func TestStore_SearchTemplatesSkipsMissingRecords(t *testing.T) {
	s, _ := newVectorStore(t, &vocabEmbedder{})
	ctx := context.Background()

	_, err := s.SaveTemplate(ctx, "flask_app", "flask", "import flask", "python", nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(s.Path(), "templates", "python", "flask_app.json")))

	templates, err := s.SearchTemplates(ctx, "flask", "", 5)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestStore_ReindexEmbedsInBatches(t *testing.T) {
	emb := &vocabEmbedder{}
	s, _ := newVectorStore(t, emb)
	ctx := context.Background()

	for _, name := range []string{"flask_app", "express_app", "react_app"} {
		_, err := s.SaveTemplate(ctx, name, name, "x", "python", nil)
		require.NoError(t, err)
	}
	_, err := s.SaveSolution(ctx, "erreur import", "fix", "", nil)
	require.NoError(t, err)
	_, err = s.SaveSolution(ctx, "erreur flask", "fix", "", nil)
	require.NoError(t, err)
	emb.batchCalls = 0

	stats, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReindexStats{Templates: 3, Solutions: 2}, stats)
	assert.Equal(t, 2, emb.batchCalls, "one batch per collection")

	templates, err := s.SearchTemplates(ctx, "react", "", 1)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "react_app", templates[0].Name)
}

func TestStore_ReindexFallsBackWhenBatchFails(t *testing.T) {
	emb := &vocabEmbedder{}
	s, _ := newVectorStore(t, emb)
	ctx := context.Background()

	_, err := s.SaveTemplate(ctx, "flask_app", "flask", "x", "python", nil)
	require.NoError(t, err)
	_, err = s.SaveSolution(ctx, "erreur", "fix", "", nil)
	require.NoError(t, err)
	emb.failBatch = true

	stats, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReindexStats{Templates: 1, Solutions: 1}, stats)
}

func TestStore_IndexFailureKeepsFilesystemRecord(t *testing.T) {
	emb := &vocabEmbedder{fail: true}
	s, _ := newVectorStore(t, emb)
	ctx := context.Background()

	id, err := s.SaveSolution(ctx, "X", "Y", "ctx", nil)
	require.NoError(t, err)

	sol, err := s.GetSolution(id)
	require.NoError(t, err)
	assert.Equal(t, "ctx", sol.Context)

	// the index can be rebuilt once the embedder is back
	emb.fail = false
	stats, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Solutions)

	found, err := s.SearchSolutions(ctx, "X", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)
}

func TestStore_ReindexDropsStaleEntries(t *testing.T) {
	s, idx := newVectorStore(t, &vocabEmbedder{})
	ctx := context.Background()

	id, err := s.SaveSolution(ctx, "erreur", "fix", "", nil)
	require.NoError(t, err)
	_, err = s.SaveTemplate(ctx, "react_app", "react", "x", "javascript", nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(s.Path(), "solutions", id+".json")))

	stats, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReindexStats{Templates: 1, Solutions: 0}, stats)

	hits, err := idx.Query(ctx, CollectionSolutions, []float32{0, 0, 0, 1, 0, 0.01}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_ReindexKeywordIsNoop(t *testing.T) {
	s := newKeywordStore(t)
	stats, err := s.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReindexStats{}, stats)
}

func TestStore_ProjectHistory(t *testing.T) {
	s := newKeywordStore(t)
	ctx := context.Background()

	files := map[string]string{
		"index.html":    "<h1>Hi</h1>",
		"assets/app.js": "console.log(1)",
		"../escape.txt": "nope",
	}
	id, err := s.SaveProjectHistory(ctx, "portfolio", "Un portfolio", files, map[string]any{"type": "website_static"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "project_portfolio_"))

	base := filepath.Join(s.Path(), "projects_history", "portfolio")
	assert.FileExists(t, filepath.Join(base, id+".json"))
	assert.FileExists(t, filepath.Join(base, id, "index.html"))
	assert.FileExists(t, filepath.Join(base, id, "assets", "app.js"))
	assert.NoFileExists(t, filepath.Join(base, "escape.txt"))

	records, err := s.ProjectHistory("portfolio")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Un portfolio", records[0].Description)
	assert.Equal(t, "website_static", records[0].Metadata["type"])
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "py", Extension("Python"))
	assert.Equal(t, "kt", Extension("kotlin"))
	assert.Equal(t, "txt", Extension("cobol"))
}

// chanWatcher is a FileWatcher fed by the test.
type chanWatcher struct {
	ch      chan ports.FileEvent
	stopped bool
}

func (w *chanWatcher) Watch(context.Context, string) (<-chan ports.FileEvent, error) {
	return w.ch, nil
}

func (w *chanWatcher) Stop() error {
	w.stopped = true
	return nil
}

func TestStore_WatchReindexesOnRecordChange(t *testing.T) {
	s, idx := newVectorStore(t, &vocabEmbedder{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// a record written behind the store's back
	sol := entities.Solution{ID: "solution_manual", Problem: "erreur", Solution: "fix", Tags: []string{}}
	require.NoError(t, writeJSON(filepath.Join(s.Path(), "solutions", sol.ID+".json"), sol))

	w := &chanWatcher{ch: make(chan ports.FileEvent, 4)}
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, w, 10*time.Millisecond) }()

	w.ch <- ports.FileEvent{Path: filepath.Join(s.Path(), "projects_history", "x.json"), Operation: ports.FileCreated}
	w.ch <- ports.FileEvent{Path: filepath.Join(s.Path(), "solutions", sol.ID+".json"), Operation: ports.FileCreated}

	require.Eventually(t, func() bool {
		hits, _ := idx.Query(context.Background(), CollectionSolutions, []float32{0, 0, 0, 1, 0, 0.01}, nil, 5)
		return len(hits) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, w.stopped)
}
