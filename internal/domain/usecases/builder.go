package usecases

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/oracle"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
	"github.com/0xcro3dile/jarvis-go/internal/domain/safety"
)

const (
	apiRequirements = `fastapi>=0.109.0
uvicorn>=0.27.0
pydantic>=2.0.0
python-dotenv>=1.0.0
`
	cliRequirements = `click>=8.1.0
rich>=13.0.0
`
)

// jsTriggers in the feature list make a static site ship a script.js.
var jsTriggers = []string{"interactif", "dynamique", "animation"}

// Builder turns a build request into a generated project on disk.
// Each call is one linear run with no state kept between calls.
type Builder struct {
	oracle      *oracle.CodeOracle
	workspace   ports.Workspace
	backups     ports.BackupService
	history     HistoryRecorder
	guard       *safety.Guard
	backup      bool
	projectsDir string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewBuilder creates a Builder. Output directories must sit inside the guard's
// allow-list or below projectsDir. When backup is set, an output directory
// that already holds one of the generated files is backed up before writing.
func NewBuilder(o *oracle.CodeOracle, ws ports.Workspace, backups ports.BackupService, history HistoryRecorder, guard *safety.Guard, backup bool, projectsDir string, logger zerolog.Logger) *Builder {
	return &Builder{
		oracle:      o,
		workspace:   ws,
		backups:     backups,
		history:     history,
		guard:       guard,
		backup:      backup,
		projectsDir: projectsDir,
		logger:      logger.With().Str("component", "builder").Logger(),
		now:         time.Now,
	}
}

// AnalyzeRequest asks the oracle for a structured Analysis. An unparseable
// reply yields the default analysis; only transport errors are returned.
func (b *Builder) AnalyzeRequest(ctx context.Context, request string) (entities.Analysis, error) {
	reply, err := b.oracle.AnswerQuestion(ctx, analysisPrompt(request), "")
	if err != nil {
		return entities.Analysis{}, err
	}

	analysis, ok := oracle.DecodeObject[entities.Analysis](reply)
	if !ok {
		b.logger.Warn().Msg("analysis reply is not valid JSON, using defaults")
		return entities.DefaultAnalysis(), nil
	}
	if analysis.Features == nil {
		analysis.Features = entities.StringList{}
	}

	b.logger.Info().
		Str("tool_type", analysis.ToolType).
		Str("project", analysis.ProjectName).
		Int("features", len(analysis.Features)).
		Msg("request analyzed")
	return analysis, nil
}

// ClassifyTool maps the free-form tool_type of an Analysis onto a ToolKind.
func ClassifyTool(toolType string) entities.ToolKind {
	t := strings.ToLower(toolType)
	switch {
	case strings.Contains(t, "site"), strings.Contains(t, "web"):
		return entities.ToolWebsite
	case strings.Contains(t, "api"):
		return entities.ToolAPI
	case strings.Contains(t, "cli"), strings.Contains(t, "commande"):
		return entities.ToolCLI
	default:
		return entities.ToolUnrecognized
	}
}

func fallbackName(kind entities.ToolKind) string {
	switch kind {
	case entities.ToolWebsite:
		return "site_web"
	case entities.ToolAPI:
		return "api"
	case entities.ToolCLI:
		return "cli_tool"
	default:
		return "projet"
	}
}

// ExtractEndpoints asks the oracle for the REST routes of request.
func (b *Builder) ExtractEndpoints(ctx context.Context, request string) ([]entities.Endpoint, error) {
	reply, err := b.oracle.AnswerQuestion(ctx, endpointsPrompt(request), "")
	if err != nil {
		return nil, err
	}
	endpoints, ok := oracle.DecodeArray[entities.Endpoint](reply)
	if !ok || len(endpoints) == 0 {
		b.logger.Warn().Msg("no endpoints extracted, using defaults")
		return entities.DefaultEndpoints(), nil
	}
	for i := range endpoints {
		if endpoints[i].Method == "" {
			endpoints[i].Method = "GET"
		}
		endpoints[i].Method = strings.ToUpper(endpoints[i].Method)
		if endpoints[i].Path == "" {
			endpoints[i].Path = "/"
		}
	}
	return endpoints, nil
}

// ExtractCommands asks the oracle for the sub-commands of request.
func (b *Builder) ExtractCommands(ctx context.Context, request string) ([]entities.Command, error) {
	reply, err := b.oracle.AnswerQuestion(ctx, commandsPrompt(request), "")
	if err != nil {
		return nil, err
	}
	commands, ok := oracle.DecodeArray[entities.Command](reply)
	if !ok || len(commands) == 0 {
		b.logger.Warn().Msg("no commands extracted, using defaults")
		return entities.DefaultCommands(), nil
	}
	for i := range commands {
		if commands[i].Name == "" {
			commands[i].Name = "command"
		}
	}
	return commands, nil
}

// Build analyzes request and dispatches to the matching build. An empty
// outputDir means <projects_dir>/<project_name>.
func (b *Builder) Build(ctx context.Context, request, outputDir string) *entities.BuildResult {
	analysis, err := b.AnalyzeRequest(ctx, request)
	if err != nil {
		return entities.FailedBuild(err.Error(), err)
	}

	kind := ClassifyTool(analysis.ToolType)
	name := safety.SafeSegment(analysis.ProjectName, fallbackName(kind))
	if outputDir == "" {
		outputDir = filepath.Join(b.projectsDir, name)
	}

	switch kind {
	case entities.ToolAPI:
		endpoints, err := b.ExtractEndpoints(ctx, request)
		if err != nil {
			return entities.FailedBuild(err.Error(), err)
		}
		return b.BuildAPI(ctx, name, request, endpoints, outputDir)
	case entities.ToolCLI:
		commands, err := b.ExtractCommands(ctx, request)
		if err != nil {
			return entities.FailedBuild(err.Error(), err)
		}
		return b.BuildCLI(ctx, name, request, commands, outputDir)
	case entities.ToolWebsite:
		return b.BuildWebsite(ctx, name, request, analysis.Features, outputDir)
	default:
		b.logger.Warn().Str("tool_type", analysis.ToolType).Msg("unsupported tool type, building a static website")
		return b.BuildWebsite(ctx, name, request, analysis.Features, outputDir)
	}
}

// BuildWebsite generates index.html, style.css, an optional script.js and a README.
func (b *Builder) BuildWebsite(ctx context.Context, name, description string, features []string, outputDir string) *entities.BuildResult {
	name = safety.SafeSegment(name, fallbackName(entities.ToolWebsite))
	dir, err := b.checkOutput(outputDir)
	if err != nil {
		return entities.FailedBuild(entities.MsgUnauthorized, err)
	}
	b.logger.Info().Str("project", name).Str("dir", dir).Msg("building static website")

	html, err := b.generate(ctx, htmlPrompt(name, description, features), "html")
	if err != nil {
		return entities.FailedBuild(err.Error(), err)
	}
	css, err := b.generate(ctx, cssPrompt(name), "css")
	if err != nil {
		return entities.FailedBuild(err.Error(), err)
	}
	artifacts := []entities.Artifact{
		{RelativePath: "index.html", Content: html, Kind: "html"},
		{RelativePath: "style.css", Content: css, Kind: "css"},
	}

	if containsAny(strings.ToLower(strings.Join(features, " ")), jsTriggers) {
		js, err := b.generate(ctx, jsPrompt(name, features), "javascript")
		if err != nil {
			return entities.FailedBuild(err.Error(), err)
		}
		artifacts = append(artifacts, entities.Artifact{RelativePath: "script.js", Content: js, Kind: "javascript"})
	}

	readme, err := renderReadme("website", readmeData{
		Name:        name,
		Description: description,
		Features:    features,
		Timestamp:   b.timestamp(),
	})
	if err != nil {
		return entities.FailedBuild(err.Error(), err)
	}
	artifacts = append(artifacts, entities.Artifact{RelativePath: "README.md", Content: readme, Kind: "markdown"})

	return b.finish(ctx, name, description, dir, artifacts, map[string]any{
		"type":     entities.ToolWebsite.String(),
		"features": nonNilStrings(features),
	})
}

// BuildAPI generates a FastAPI main.py, requirements.txt and a README.
func (b *Builder) BuildAPI(ctx context.Context, name, description string, endpoints []entities.Endpoint, outputDir string) *entities.BuildResult {
	name = safety.SafeSegment(name, fallbackName(entities.ToolAPI))
	dir, err := b.checkOutput(outputDir)
	if err != nil {
		return entities.FailedBuild(entities.MsgUnauthorized, err)
	}
	b.logger.Info().Str("project", name).Int("endpoints", len(endpoints)).Msg("building REST API")

	listing := describeEndpoints(endpoints)
	code, err := b.generate(ctx, apiPrompt(name, description, listing), "python")
	if err != nil {
		return entities.FailedBuild(err.Error(), err)
	}
	readme, err := renderReadme("api", readmeData{
		Name:        name,
		Description: description,
		Listing:     listing,
		Timestamp:   b.timestamp(),
	})
	if err != nil {
		return entities.FailedBuild(err.Error(), err)
	}

	return b.finish(ctx, name, description, dir, []entities.Artifact{
		{RelativePath: "main.py", Content: code, Kind: "python"},
		{RelativePath: "requirements.txt", Content: apiRequirements, Kind: "text"},
		{RelativePath: "README.md", Content: readme, Kind: "markdown"},
	}, map[string]any{
		"type":      entities.ToolAPI.String(),
		"endpoints": endpoints,
	})
}

// BuildCLI generates an executable <name>.py, requirements.txt and a README.
func (b *Builder) BuildCLI(ctx context.Context, name, description string, commands []entities.Command, outputDir string) *entities.BuildResult {
	name = safety.SafeSegment(name, fallbackName(entities.ToolCLI))
	dir, err := b.checkOutput(outputDir)
	if err != nil {
		return entities.FailedBuild(entities.MsgUnauthorized, err)
	}
	b.logger.Info().Str("project", name).Int("commands", len(commands)).Msg("building CLI tool")

	listing := describeCommands(commands)
	code, err := b.generate(ctx, cliPrompt(name, description, listing), "python")
	if err != nil {
		return entities.FailedBuild(err.Error(), err)
	}
	readme, err := renderReadme("cli", readmeData{
		Name:        name,
		Description: description,
		Listing:     listing,
		Timestamp:   b.timestamp(),
	})
	if err != nil {
		return entities.FailedBuild(err.Error(), err)
	}

	return b.finish(ctx, name, description, dir, []entities.Artifact{
		{RelativePath: name + ".py", Content: code, Kind: "python", Executable: true},
		{RelativePath: "requirements.txt", Content: cliRequirements, Kind: "text"},
		{RelativePath: "README.md", Content: readme, Kind: "markdown"},
	}, map[string]any{
		"type":     entities.ToolCLI.String(),
		"commands": commands,
	})
}

func (b *Builder) generate(ctx context.Context, prompt, language string) (string, error) {
	code, err := b.oracle.GenerateCode(ctx, prompt, language)
	if err != nil {
		return "", err
	}
	return oracle.StripFences(code), nil
}

// checkOutput resolves dir and confines it to projectsDir or the allow-list.
func (b *Builder) checkOutput(dir string) (string, error) {
	resolved, err := safety.Resolve(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", entities.ErrUnauthorizedPath, dir, err)
	}
	if b.projectsDir != "" {
		if projects, err := safety.Resolve(b.projectsDir); err == nil && safety.Within(projects, resolved) {
			return resolved, nil
		}
	}
	return b.guard.Check(resolved)
}

// finish writes every artifact, then records the project history. A history
// failure is logged; the generated files are the deliverable.
func (b *Builder) finish(ctx context.Context, name, description, dir string, artifacts []entities.Artifact, metadata map[string]any) *entities.BuildResult {
	files := make(map[string]string, len(artifacts))
	paths := make([]string, 0, len(artifacts))

	var backupPath string
	if b.backup && b.backups != nil && overwrites(dir, artifacts) {
		path, err := b.backups.BackupDir(dir)
		if err != nil {
			b.logger.Error().Err(err).Str("dir", dir).Msg("backup failed, build aborted")
			return entities.FailedBuild(fmt.Sprintf("Impossible de créer la sauvegarde : %v", err),
				fmt.Errorf("%w: backup: %v", entities.ErrFileSystem, err))
		}
		backupPath = path
		b.logger.Info().Str("backup", path).Msg("existing output backed up")
	}

	for _, a := range artifacts {
		perm := fs.FileMode(0o644)
		if a.Executable {
			perm = 0o755
		}
		if err := b.workspace.WriteFile(filepath.Join(dir, a.RelativePath), a.Content, perm); err != nil {
			b.logger.Error().Err(err).Str("file", a.RelativePath).Msg("write failed")
			return entities.FailedBuild(err.Error(), err)
		}
		files[a.RelativePath] = a.Content
		paths = append(paths, a.RelativePath)
	}

	result := &entities.BuildResult{
		Success:     true,
		ProjectName: name,
		OutputDir:   dir,
		Files:       paths,
		BackupPath:  backupPath,
	}

	id, err := b.history.SaveProjectHistory(ctx, name, description, files, metadata)
	if err != nil {
		b.logger.Warn().Err(err).Str("project", name).Msg("project history not saved")
	} else {
		result.HistoryID = id
	}

	b.logger.Info().Str("project", name).Strs("files", paths).Msg("build complete")
	return result
}

func (b *Builder) timestamp() string {
	return b.now().Format("2006-01-02 15:04:05")
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// overwrites reports whether any artifact would replace an existing file.
func overwrites(dir string, artifacts []entities.Artifact) bool {
	for _, a := range artifacts {
		if _, err := os.Lstat(filepath.Join(dir, a.RelativePath)); err == nil {
			return true
		}
	}
	return false
}
