package usecases

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/oracle"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
	"github.com/0xcro3dile/jarvis-go/internal/domain/safety"
)

// DefaultRefactorObjective is used when a refactor is requested without one.
const DefaultRefactorObjective = "améliorer la qualité"

const (
	maxListedFiles    = 100
	maxRelevantFiles  = 10
	maxDiagnosedFiles = 5
	maxFileChars      = 10000
	excerptChars      = 2000
)

// Fixer diagnoses and patches existing projects. Every mutation is confined
// to the allow-list and preceded by a backup when the policy asks for one.
type Fixer struct {
	oracle    *oracle.CodeOracle
	workspace ports.Workspace
	backups   ports.BackupService
	solutions SolutionRecorder
	guard     *safety.Guard
	backup    bool
	logger    zerolog.Logger
}

// NewFixer creates a Fixer. backup mirrors security.backup_before_modification.
func NewFixer(o *oracle.CodeOracle, ws ports.Workspace, backups ports.BackupService, solutions SolutionRecorder, guard *safety.Guard, backup bool, logger zerolog.Logger) *Fixer {
	return &Fixer{
		oracle:    o,
		workspace: ws,
		backups:   backups,
		solutions: solutions,
		guard:     guard,
		backup:    backup,
		logger:    logger.With().Str("component", "fixer").Logger(),
	}
}

// AnalyzeProject resolves path, checks confinement and describes the project.
func (f *Fixer) AnalyzeProject(path string) *entities.ProjectAnalysis {
	root, err := safety.Resolve(path)
	if err != nil {
		return &entities.ProjectAnalysis{Error: entities.MsgProjectNotFound, Cause: err}
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		f.logger.Error().Str("path", root).Msg("project does not exist")
		return &entities.ProjectAnalysis{
			Error: entities.MsgProjectNotFound,
			Cause: fmt.Errorf("%w: %s", entities.ErrNotFound, root),
		}
	}
	if _, err := f.guard.Check(root); err != nil {
		f.logger.Error().Str("path", root).Msg("project outside allowed directories")
		return &entities.ProjectAnalysis{Error: entities.MsgUnauthorized, Cause: err}
	}

	files, err := f.workspace.ListFiles(root, maxListedFiles)
	if err != nil {
		return &entities.ProjectAnalysis{Error: err.Error(), Cause: err}
	}

	languages := make(map[string]int)
	for _, file := range files {
		if lang := f.workspace.DetectLanguage(file); lang != "text" {
			languages[lang]++
		}
	}

	projectType := f.workspace.DetectProjectType(root)
	return &entities.ProjectAnalysis{
		Success:      true,
		ProjectPath:  root,
		ProjectType:  projectType,
		Files:        files,
		Dependencies: f.workspace.Dependencies(root, projectType),
		Languages:    languages,
		VCS:          f.workspace.VCS(root),
	}
}

// DiagnoseIssue shows the oracle a handful of source files and parses its
// JSON diagnostic. Unlike the Builder there is no default: a reply that does
// not parse is a failure.
func (f *Fixer) DiagnoseIssue(ctx context.Context, path, description string) *entities.DiagnosisResult {
	analysis := f.AnalyzeProject(path)
	if !analysis.Success {
		return &entities.DiagnosisResult{Error: analysis.Error, Cause: analysis.Cause}
	}
	f.logger.Info().Str("project", analysis.ProjectPath).Str("issue", description).Msg("diagnosing")

	prompt := diagnosticPrompt(analysis.ProjectType, description, f.summarize(analysis.ProjectPath))
	reply, err := f.oracle.AnswerQuestion(ctx, prompt, "")
	if err != nil {
		return &entities.DiagnosisResult{Error: err.Error(), Cause: err}
	}

	diagnostic, ok := oracle.DecodeObject[entities.Diagnostic](reply)
	if !ok {
		msg := entities.MsgDiagnosticBadJSON
		if !oracle.HasObject(reply) {
			msg = entities.MsgDiagnosticNoJSON
		}
		f.logger.Warn().Msg(msg)
		return &entities.DiagnosisResult{Error: msg, Cause: entities.ErrResponseParse}
	}
	diagnostic.Confidence = entities.ParseConfidence(string(diagnostic.Confidence))

	f.logger.Info().
		Str("cause", diagnostic.Cause).
		Str("confidence", string(diagnostic.Confidence)).
		Strs("affected", diagnostic.AffectedFiles).
		Msg("diagnosis complete")
	return &entities.DiagnosisResult{Success: true, Diagnostic: &diagnostic}
}

// summarize renders excerpts of the first readable relevant files.
// summarize excerpts the first maxDiagnosedFiles relevant files. Oversized
// files among them are dropped, not replaced by later candidates.
func (f *Fixer) summarize(root string) string {
	candidates := f.workspace.RelevantFiles(root, maxRelevantFiles)
	if len(candidates) > maxDiagnosedFiles {
		candidates = candidates[:maxDiagnosedFiles]
	}
	var parts []string
	for _, rel := range candidates {
		content, err := f.workspace.ReadFile(filepath.Join(root, rel))
		if err != nil {
			f.logger.Warn().Err(err).Str("file", rel).Msg("cannot read file")
			continue
		}
		runes := []rune(content)
		if len(runes) >= maxFileChars {
			continue
		}
		if len(runes) > excerptChars {
			runes = runes[:excerptChars]
		}
		parts = append(parts, fmt.Sprintf("Fichier: %s\n```\n%s...\n```", rel, string(runes)))
	}
	return strings.Join(parts, "\n\n")
}

// FixIssue backs up the project (when autoBackup and the policy allow),
// diagnoses the issue and rewrites each affected file. A file that fails is
// skipped. The backup is never restored automatically.
func (f *Fixer) FixIssue(ctx context.Context, path, description string, autoBackup bool) *entities.FixResult {
	analysis := f.AnalyzeProject(path)
	if !analysis.Success {
		return &entities.FixResult{FixedFiles: []string{}, Error: analysis.Error, Cause: analysis.Cause}
	}
	root := analysis.ProjectPath

	result := &entities.FixResult{FixedFiles: []string{}}
	if autoBackup && f.backup {
		backupPath, err := f.backups.BackupDir(root)
		if err != nil {
			result.Error = fmt.Sprintf("Impossible de créer la sauvegarde : %v", err)
			result.Cause = err
			return result
		}
		result.BackupPath = backupPath
		f.logger.Info().Str("backup", backupPath).Msg("backup created")
	}

	diagnosis := f.DiagnoseIssue(ctx, root, description)
	if !diagnosis.Success {
		result.Error, result.Cause = diagnosis.Error, diagnosis.Cause
		return result
	}
	result.Diagnostic = diagnosis.Diagnostic

	if len(diagnosis.Diagnostic.AffectedFiles) == 0 {
		f.logger.Warn().Msg("diagnosis names no file to modify")
		result.Error = entities.MsgNoFilesToFix
		return result
	}

	for _, rel := range diagnosis.Diagnostic.AffectedFiles {
		if err := f.fixFile(ctx, root, rel, description); err != nil {
			f.logger.Error().Err(err).Str("file", rel).Msg("file not fixed")
			continue
		}
		result.FixedFiles = append(result.FixedFiles, rel)
		f.logger.Info().Str("file", rel).Msg("file fixed")
	}

	if len(result.FixedFiles) == 0 {
		result.Error = entities.MsgFixFailed
		result.Cause = entities.ErrFileSystem
		return result
	}

	solution := diagnosis.Diagnostic.Solution
	if solution == "" {
		solution = "N/A"
	}
	id, err := f.solutions.SaveSolution(ctx,
		description,
		fmt.Sprintf("Fichiers modifiés : %s\n\nSolution : %s", strings.Join(result.FixedFiles, ", "), solution),
		fmt.Sprintf("Projet : %s\nType : %s", root, analysis.ProjectType),
		[]string{analysis.ProjectType, "fix"},
	)
	if err != nil {
		f.logger.Warn().Err(err).Msg("solution not recorded")
	} else {
		result.SolutionID = id
	}

	result.Success = true
	f.logger.Info().Int("files", len(result.FixedFiles)).Msg("fix complete")
	return result
}

// fixFile rewrites one affected file. Paths escaping root are refused.
func (f *Fixer) fixFile(ctx context.Context, root, rel, description string) error {
	target := rel
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, rel)
	}
	resolved, err := safety.Resolve(target)
	if err != nil {
		return err
	}
	if !safety.Within(root, resolved) {
		return fmt.Errorf("%w: %s", entities.ErrUnauthorizedPath, rel)
	}

	info, err := os.Stat(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", entities.ErrNotFound, rel)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrFileSystem, err)
	}

	original, err := f.workspace.ReadFile(resolved)
	if err != nil {
		return err
	}
	fixed, err := f.oracle.FixCode(ctx, original, description, f.workspace.DetectLanguage(resolved))
	if err != nil {
		return err
	}
	return f.workspace.WriteFile(resolved, oracle.StripFences(fixed), info.Mode().Perm())
}

// Refactor rewrites a single file toward objective.
func (f *Fixer) Refactor(ctx context.Context, path, objective string) *entities.RefactorResult {
	if objective == "" {
		objective = DefaultRefactorObjective
	}

	resolved, err := safety.Resolve(path)
	if err != nil {
		return &entities.RefactorResult{Error: entities.MsgFileNotFound, Cause: err}
	}
	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return &entities.RefactorResult{
			Error: entities.MsgFileNotFound,
			Cause: fmt.Errorf("%w: %s", entities.ErrNotFound, resolved),
		}
	}
	if _, err := f.guard.Check(resolved); err != nil {
		return &entities.RefactorResult{Error: entities.MsgUnauthorized, Cause: err}
	}

	result := &entities.RefactorResult{FilePath: resolved}
	if f.backup {
		backupPath, err := f.backups.BackupFile(resolved)
		if err != nil {
			result.Error = fmt.Sprintf("Impossible de créer la sauvegarde : %v", err)
			result.Cause = err
			return result
		}
		result.BackupPath = backupPath
		f.logger.Info().Str("backup", backupPath).Msg("backup created")
	}

	original, err := f.workspace.ReadFile(resolved)
	if err != nil {
		result.Error = fmt.Sprintf("Impossible de lire le fichier : %v", err)
		result.Cause = err
		return result
	}

	f.logger.Info().Str("file", resolved).Str("objective", objective).Msg("refactoring")
	refactored, err := f.oracle.RefactorCode(ctx, original, f.workspace.DetectLanguage(resolved), objective)
	if err != nil {
		result.Error, result.Cause = err.Error(), err
		return result
	}

	if err := f.workspace.WriteFile(resolved, oracle.StripFences(refactored), info.Mode().Perm()); err != nil {
		result.Error = fmt.Sprintf("Impossible d'écrire le fichier : %v", err)
		result.Cause = err
		return result
	}

	result.Success = true
	return result
}
