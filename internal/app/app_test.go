package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/jarvis-go/internal/adapters/llm"
	"github.com/0xcro3dile/jarvis-go/internal/config"
	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// lengthEmbedder embeds text as a fixed-size vector derived from its bytes.
type lengthEmbedder struct{}

func (lengthEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, 4)
	for i, b := range []byte(text) {
		v[i%4] += float32(b)
	}
	return v, nil
}

func (e lengthEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.BaseDir = dir
	cfg.KnowledgeBase.Path = filepath.Join(dir, "kb")
	cfg.ProjectsDir = filepath.Join(dir, "projects")
	cfg.Security.AllowedDirectories = []string{dir}
	cfg.Logging.Console = false
	return cfg
}

func TestNew_KeywordMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.KnowledgeBase.VectorDBEnabled = false
	cfg.Modules.Deployer = false

	a, err := New(context.Background(), cfg, Options{Chat: llm.NewScripted()})
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Store.Semantic())
	assert.DirExists(t, filepath.Join(cfg.KnowledgeBase.Path, "solutions"))
	assert.NoDirExists(t, filepath.Join(cfg.KnowledgeBase.Path, vectorDir))
}

func TestNew_VectorMode(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, Options{Chat: llm.NewScripted(), Embedder: lengthEmbedder{}})
	require.NoError(t, err)

	assert.True(t, a.Store.Semantic())
	assert.FileExists(t, filepath.Join(cfg.KnowledgeBase.Path, vectorDir, "vectors.db"))

	id, err := a.Agent.Learn(context.Background(), "Problème: import cassé Solution: ajouter __init__.py", "", nil)
	require.NoError(t, err)

	found, err := a.Store.SearchSolutions(context.Background(), "import cassé", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)

	require.NoError(t, a.Close())
}

func TestNew_MemoryIndexWarmsUpFromDisk(t *testing.T) {
	cfg := testConfig(t)
	cfg.KnowledgeBase.VectorStore = "memory"
	ctx := context.Background()

	first, err := New(ctx, cfg, Options{Chat: llm.NewScripted(), Embedder: lengthEmbedder{}})
	require.NoError(t, err)
	id, err := first.Agent.Learn(ctx, "Problème: CORS bloqué Solution: ajouter le middleware", "", nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	assert.NoDirExists(t, filepath.Join(cfg.KnowledgeBase.Path, vectorDir))

	second, err := New(ctx, cfg, Options{Chat: llm.NewScripted(), Embedder: lengthEmbedder{}})
	require.NoError(t, err)
	defer second.Close()

	found, err := second.Store.SearchSolutions(ctx, "CORS", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)
}

func TestNew_ModulesFollowConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.KnowledgeBase.VectorDBEnabled = false
	cfg.Modules.Builder = false
	cfg.Modules.Learner = false

	a, err := New(context.Background(), cfg, Options{Chat: llm.NewScripted()})
	require.NoError(t, err)
	defer a.Close()

	result := a.Agent.Build(context.Background(), "Crée un site web", "")
	assert.False(t, result.Success)

	_, err = a.Agent.Learn(context.Background(), "x", "", nil)
	assert.ErrorIs(t, err, entities.ErrModuleDisabled)

	deploy := a.Agent.Deploy(context.Background(), cfg.ProjectsDir, "ssh", nil)
	assert.False(t, deploy.Success)
}

func TestNew_BuildsIntoProjectsDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.KnowledgeBase.VectorDBEnabled = false
	chat := llm.NewScripted(`{"tool_type":"site web","project_name":"vitrine"}`, "<html></html>", "body{}")

	a, err := New(context.Background(), cfg, Options{Chat: chat})
	require.NoError(t, err)
	defer a.Close()

	result := a.Agent.Build(context.Background(), "Crée un site vitrine", "")
	require.True(t, result.Success, result.Error)
	assert.FileExists(t, filepath.Join(cfg.ProjectsDir, "vitrine", "index.html"))

	history, err := a.Store.ProjectHistory("vitrine")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "acme"

	_, err := New(context.Background(), cfg, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.provider")
}

func TestNew_LogFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.KnowledgeBase.VectorDBEnabled = false
	cfg.Logging.File = filepath.Join(cfg.BaseDir, "logs", "jarvis.log")

	a, err := New(context.Background(), cfg, Options{Chat: llm.NewScripted()})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	data, err := os.ReadFile(cfg.Logging.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "agent ready")
}

func TestNewWatcher(t *testing.T) {
	cfg := testConfig(t)
	cfg.KnowledgeBase.VectorDBEnabled = false

	a, err := New(context.Background(), cfg, Options{Chat: llm.NewScripted()})
	require.NoError(t, err)
	defer a.Close()

	w, err := a.NewWatcher()
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}
