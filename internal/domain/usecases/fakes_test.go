package usecases

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/jarvis-go/internal/adapters/llm"
	"github.com/0xcro3dile/jarvis-go/internal/adapters/workspace"
	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/knowledge"
	"github.com/0xcro3dile/jarvis-go/internal/domain/oracle"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
	"github.com/0xcro3dile/jarvis-go/internal/domain/safety"
)

// harness wires the real filesystem adapters around a scripted oracle.
// Everything lives below root, which is the only allowed directory.
type harness struct {
	root    string
	chat    *llm.Scripted
	store   *knowledge.Store
	ws      *spyWorkspace
	backups *recordingBackups
	guard   *safety.Guard
}

func newHarness(t *testing.T, replies ...string) *harness {
	t.Helper()
	root := t.TempDir()

	store, err := knowledge.New(filepath.Join(t.TempDir(), "kb"), nil, zerolog.Nop())
	require.NoError(t, err)

	return &harness{
		root:    root,
		chat:    llm.NewScripted(replies...),
		store:   store,
		ws:      &spyWorkspace{Local: workspace.NewLocal(zerolog.Nop())},
		backups: &recordingBackups{inner: workspace.NewBackups("")},
		guard:   safety.NewGuard([]string{root}),
	}
}

func (h *harness) oracle() *oracle.CodeOracle {
	return oracle.New(h.chat, zerolog.Nop())
}

func (h *harness) builder() *Builder {
	return NewBuilder(h.oracle(), h.ws, h.backups, h.store, h.guard, true, filepath.Join(h.root, "projects"), zerolog.Nop())
}

func (h *harness) fixer(backup bool) *Fixer {
	return NewFixer(h.oracle(), h.ws, h.backups, h.store, h.guard, backup, zerolog.Nop())
}

// project creates a directory below root holding files.
func (h *harness) project(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(h.root, name)
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

// spyWorkspace runs beforeWrite ahead of every write.
type spyWorkspace struct {
	*workspace.Local
	beforeWrite func(path string)
	writes      []string
}

func (s *spyWorkspace) WriteFile(path, content string, perm fs.FileMode) error {
	if s.beforeWrite != nil {
		s.beforeWrite(path)
	}
	s.writes = append(s.writes, path)
	return s.Local.WriteFile(path, content, perm)
}

// recordingBackups remembers every backup it made.
type recordingBackups struct {
	inner *workspace.Backups
	dirs  []string
	files []string
	err   error
}

func (r *recordingBackups) BackupDir(root string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	dest, err := r.inner.BackupDir(root)
	if err == nil {
		r.dirs = append(r.dirs, dest)
	}
	return dest, err
}

func (r *recordingBackups) BackupFile(path string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	dest, err := r.inner.BackupFile(path)
	if err == nil {
		r.files = append(r.files, dest)
	}
	return dest, err
}

// mockSolutions implements SolutionRecorder and SolutionSearcher.
type mockSolutions struct {
	saved     []entities.Solution
	found     []entities.Solution
	searchErr error
	saveErr   error
}

func (m *mockSolutions) SaveSolution(_ context.Context, problem, solution, details string, tags []string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = append(m.saved, entities.Solution{Problem: problem, Solution: solution, Context: details, Tags: tags})
	return "solution_test", nil
}

func (m *mockSolutions) SearchSolutions(_ context.Context, _ string, limit int) ([]entities.Solution, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.found) > limit {
		return m.found[:limit], nil
	}
	return m.found, nil
}

// mockDeployer implements ports.Deployer.
type mockDeployer struct {
	method string
	err    error
}

func (m *mockDeployer) Deploy(_ context.Context, _, method string, _ map[string]any) (*entities.DeployResult, error) {
	m.method = method
	if m.err != nil {
		return nil, m.err
	}
	return &entities.DeployResult{Success: true, Details: map[string]any{"method": method}}, nil
}

var (
	_       ports.Workspace     = (*spyWorkspace)(nil)
	_       ports.BackupService = (*recordingBackups)(nil)
	_       ports.Deployer      = (*mockDeployer)(nil)
	errBoom                     = errors.New("boom")
)
