package usecases

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

const brokenApp = "def total(items):\n    return sum(items\n"

func TestAnalyzeProject(t *testing.T) {
	h := newHarness(t)
	dir := h.project(t, "shop", map[string]string{
		"requirements.txt":     "flask\n",
		"app.py":               brokenApp,
		"static/app.js":        "",
		"node_modules/x/y.js":  "",
		"templates/index.html": "",
	})

	analysis := h.fixer(true).AnalyzeProject(dir)
	require.True(t, analysis.Success, analysis.Error)
	assert.Equal(t, "python", analysis.ProjectType)
	assert.ElementsMatch(t, []string{"requirements.txt", "app.py", "static/app.js", "templates/index.html"}, analysis.Files)
	assert.Equal(t, []string{"flask"}, analysis.Dependencies["python"])
	assert.Equal(t, 1, analysis.Languages["python"])
	assert.Equal(t, 1, analysis.Languages["javascript"])
	require.NotNil(t, analysis.VCS)
	assert.False(t, analysis.VCS.IsRepo)
}

func TestAnalyzeProject_Confinement(t *testing.T) {
	h := newHarness(t)
	f := h.fixer(true)

	outside := t.TempDir()
	got := f.AnalyzeProject(outside)
	assert.False(t, got.Success)
	assert.Equal(t, entities.MsgUnauthorized, got.Error)
	assert.ErrorIs(t, got.Cause, entities.ErrUnauthorizedPath)

	h.project(t, "inner", nil)
	escaping := filepath.Join(h.root, "inner", "..", "..", filepath.Base(outside))
	got = f.AnalyzeProject(escaping)
	assert.Equal(t, entities.MsgUnauthorized, got.Error)

	got = f.AnalyzeProject(filepath.Join(h.root, "missing"))
	assert.Equal(t, entities.MsgProjectNotFound, got.Error)
	assert.ErrorIs(t, got.Cause, entities.ErrNotFound)
}

func TestDiagnoseIssue_PromptAndParsing(t *testing.T) {
	h := newHarness(t, `Diagnostic : {"cause": "parenthèse manquante", "affected_files": "app.py", "solution": "fermer la parenthèse", "confidence": " HIGH "}`)
	big := strings.Repeat("x", 10000)
	dir := h.project(t, "shop", map[string]string{
		"requirements.txt": "",
		"app.py":           brokenApp,
		"huge.py":          big,
	})

	result := h.fixer(true).DiagnoseIssue(context.Background(), dir, "SyntaxError au lancement")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "parenthèse manquante", result.Diagnostic.Cause)
	assert.Equal(t, entities.StringList{"app.py"}, result.Diagnostic.AffectedFiles)
	assert.Equal(t, entities.ConfidenceHigh, result.Diagnostic.Confidence)

	prompt := h.chat.UserMessage(0)
	assert.Contains(t, prompt, "ce projet python")
	assert.Contains(t, prompt, "Problème décrit : SyntaxError au lancement")
	assert.Contains(t, prompt, "Fichier: app.py\n```\n"+brokenApp+"...\n```")
	assert.NotContains(t, prompt, "huge.py", "files of 10000 characters or more are skipped")
}

func TestDiagnoseIssue_OversizedFilesAreNotBackfilled(t *testing.T) {
	h := newHarness(t, `{"cause": "x"}`)
	files := map[string]string{}
	for i := 1; i <= 5; i++ {
		files[fmt.Sprintf("a%d.py", i)] = strings.Repeat("x", 10000)
		files[fmt.Sprintf("b%d.py", i)] = "print(1)"
	}
	dir := h.project(t, "p", files)

	result := h.fixer(true).DiagnoseIssue(context.Background(), dir, "bug")
	require.True(t, result.Success, result.Error)
	prompt := h.chat.UserMessage(0)
	assert.NotContains(t, prompt, "Fichier:", "only the first five candidates are considered")
}

func TestDiagnoseIssue_ExcerptsAreTruncated(t *testing.T) {
	h := newHarness(t, `{"cause": "x"}`)
	long := strings.Repeat("é", 2500)
	dir := h.project(t, "p", map[string]string{"main.py": long})

	require.True(t, h.fixer(true).DiagnoseIssue(context.Background(), dir, "lent").Success)
	assert.Contains(t, h.chat.UserMessage(0), strings.Repeat("é", 2000)+"...")
	assert.NotContains(t, h.chat.UserMessage(0), strings.Repeat("é", 2001))
}

func TestDiagnoseIssue_ParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"no json", "Je pense que c'est un problème d'indentation.", entities.MsgDiagnosticNoJSON},
		{"malformed json", "{cause: indentation, }", entities.MsgDiagnosticBadJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.reply)
			dir := h.project(t, "p", map[string]string{"app.py": "x"})

			result := h.fixer(true).DiagnoseIssue(context.Background(), dir, "bug")
			assert.False(t, result.Success)
			assert.Equal(t, tt.want, result.Error)
			assert.ErrorIs(t, result.Cause, entities.ErrResponseParse)
			assert.Nil(t, result.Diagnostic)
		})
	}
}

func TestFixIssue_RewritesAffectedFiles(t *testing.T) {
	h := newHarness(t,
		`{"cause": "parenthèse", "affected_files": ["app.py"], "solution": "fermer la parenthèse", "confidence": "medium"}`,
		"```python\ndef total(items):\n    return sum(items)\n```",
	)
	dir := h.project(t, "shop", map[string]string{"requirements.txt": "", "app.py": brokenApp})

	result := h.fixer(true).FixIssue(context.Background(), dir, "SyntaxError", true)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, []string{"app.py"}, result.FixedFiles)
	assert.Equal(t, "def total(items):\n    return sum(items)", readFile(t, filepath.Join(dir, "app.py")))

	require.NotEmpty(t, result.BackupPath)
	assert.Equal(t, brokenApp, readFile(t, filepath.Join(result.BackupPath, "app.py")))

	require.NotEmpty(t, result.SolutionID)
	solution, err := h.store.GetSolution(result.SolutionID)
	require.NoError(t, err)
	assert.Equal(t, "SyntaxError", solution.Problem)
	assert.Equal(t, "Fichiers modifiés : app.py\n\nSolution : fermer la parenthèse", solution.Solution)
	assert.Contains(t, solution.Context, "Type : python")
	assert.Equal(t, []string{"python", "fix"}, solution.Tags)

	assert.Contains(t, h.chat.UserMessage(1), brokenApp, "the fix is seeded with the full original file")
}

func TestFixIssue_BackupExistsBeforeFirstWrite(t *testing.T) {
	h := newHarness(t,
		`{"affected_files": ["app.py", "lib/util.py"]}`,
		"fixed app",
		"fixed util",
	)
	dir := h.project(t, "shop", map[string]string{"app.py": "old app", "lib/util.py": "old util"})
	dir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	h.ws.beforeWrite = func(path string) {
		require.Len(t, h.backups.dirs, 1, "backup must precede the write to %s", path)
		rel, err := filepath.Rel(dir, path)
		require.NoError(t, err)
		original := map[string]string{"app.py": "old app", filepath.Join("lib", "util.py"): "old util"}[rel]
		assert.Equal(t, original, readFile(t, filepath.Join(h.backups.dirs[0], rel)))
	}

	result := h.fixer(true).FixIssue(context.Background(), dir, "bug", true)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, []string{"app.py", "lib/util.py"}, result.FixedFiles)
	assert.Len(t, h.ws.writes, 2)
}

func TestFixIssue_MissingAffectedFile(t *testing.T) {
	h := newHarness(t, `{"cause": "?", "affected_files": ["app.py"], "solution": "s"}`)
	dir := h.project(t, "p", map[string]string{"main.py": "print('hi')"})

	result := h.fixer(true).FixIssue(context.Background(), dir, "ça plante", true)
	assert.False(t, result.Success)
	assert.Equal(t, entities.MsgFixFailed, result.Error)
	assert.Empty(t, result.FixedFiles)
	assert.NotNil(t, result.Diagnostic)

	require.NotEmpty(t, result.BackupPath, "backup is kept, never rolled back")
	assert.DirExists(t, result.BackupPath)
	assert.Len(t, h.chat.Requests(), 1)
}

func TestFixIssue_NoAffectedFiles(t *testing.T) {
	h := newHarness(t, `{"cause": "configuration", "affected_files": []}`)
	dir := h.project(t, "p", map[string]string{"main.py": ""})

	result := h.fixer(false).FixIssue(context.Background(), dir, "bug", true)
	assert.False(t, result.Success)
	assert.Equal(t, entities.MsgNoFilesToFix, result.Error)
	assert.Empty(t, result.BackupPath, "backup policy disabled")
	assert.Empty(t, h.backups.dirs)
}

func TestFixIssue_SkipsEscapingAndFailingFiles(t *testing.T) {
	h := newHarness(t, `{"affected_files": ["../secret.py", "app.py", "ok.py"]}`)
	h.chat.Responder = func(req entities.ChatRequest) (string, error) {
		if strings.Contains(req.Messages[1].Content, "boom") {
			return "", errBoom
		}
		return "fixed", nil
	}
	h.project(t, ".", map[string]string{"secret.py": "secret"})
	dir := h.project(t, "p", map[string]string{"app.py": "boom", "ok.py": "old"})

	result := h.fixer(true).FixIssue(context.Background(), dir, "bug", false)
	require.True(t, result.Success, result.Error)
	assert.Equal(t, []string{"ok.py"}, result.FixedFiles)
	assert.Equal(t, "secret", readFile(t, filepath.Join(h.root, "secret.py")))
	assert.Equal(t, "boom", readFile(t, filepath.Join(dir, "app.py")))
	assert.Empty(t, h.backups.dirs, "autoBackup=false skips the backup")
}

func TestFixIssue_BackupFailureAborts(t *testing.T) {
	h := newHarness(t)
	h.backups.err = errBoom
	dir := h.project(t, "p", map[string]string{"app.py": "x"})

	result := h.fixer(true).FixIssue(context.Background(), dir, "bug", true)
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Cause, errBoom)
	assert.Empty(t, h.chat.Requests())
}

func TestFixIssue_Unauthorized(t *testing.T) {
	h := newHarness(t)

	result := h.fixer(true).FixIssue(context.Background(), t.TempDir(), "bug", true)
	assert.Equal(t, entities.MsgUnauthorized, result.Error)
	assert.Empty(t, h.backups.dirs)
	assert.NotNil(t, result.FixedFiles)
}

func TestRefactor(t *testing.T) {
	h := newHarness(t, "```go\nfunc Add(a, b int) int { return a + b }\n```")
	dir := h.project(t, "p", map[string]string{"add.go": "func Add(a,b int)int{return a+b}"})
	path := filepath.Join(dir, "add.go")

	result := h.fixer(true).Refactor(context.Background(), path, "")
	require.True(t, result.Success, result.Error)
	assert.Equal(t, "func Add(a, b int) int { return a + b }", readFile(t, path))

	require.Len(t, h.backups.files, 1)
	assert.Equal(t, result.BackupPath, h.backups.files[0])
	assert.Equal(t, "func Add(a,b int)int{return a+b}", readFile(t, result.BackupPath))

	system := h.chat.Requests()[0].Messages[0].Content
	assert.Contains(t, system, DefaultRefactorObjective)
	assert.Contains(t, system, "go")
}

func TestRefactor_Failures(t *testing.T) {
	h := newHarness(t)
	f := h.fixer(true)

	got := f.Refactor(context.Background(), filepath.Join(h.root, "none.py"), "")
	assert.Equal(t, entities.MsgFileNotFound, got.Error)

	outside := filepath.Join(t.TempDir(), "x.py")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	got = f.Refactor(context.Background(), outside, "")
	assert.Equal(t, entities.MsgUnauthorized, got.Error)
	assert.Empty(t, h.backups.files)

	dir := h.project(t, "p", map[string]string{"a.py": "a"})
	got = f.Refactor(context.Background(), filepath.Join(dir, "a.py"), "")
	assert.False(t, got.Success)
	assert.ErrorIs(t, got.Cause, entities.ErrOracleTransport)
	assert.Equal(t, "a", readFile(t, filepath.Join(dir, "a.py")))
}
