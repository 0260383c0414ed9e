// Package usecases contains the application pipelines: request
// classification, project building, project repair and the agent that
// routes between them. Usecases depend on ports, never on adapters.
package usecases

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/knowledge"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// DeployMethods are the methods a Deployer may be asked for.
var DeployMethods = []string{"ssh", "docker", "cloud", "ftp"}

// Agent is the single entry point used by the outer surfaces.
// A nil Builder, Fixer or Learner means the module is disabled.
type Agent struct {
	builder  *Builder
	fixer    *Fixer
	asker    *AskUseCase
	learner  *LearnUseCase
	deployer ports.Deployer
	index    Reindexer
	logger   zerolog.Logger
}

// AgentModules groups the optional pipelines handed to NewAgent.
type AgentModules struct {
	Builder  *Builder
	Fixer    *Fixer
	Learner  *LearnUseCase
	Deployer ports.Deployer
}

// NewAgent wires an Agent.
func NewAgent(asker *AskUseCase, index Reindexer, modules AgentModules, logger zerolog.Logger) *Agent {
	return &Agent{
		builder:  modules.Builder,
		fixer:    modules.Fixer,
		asker:    asker,
		learner:  modules.Learner,
		deployer: modules.Deployer,
		index:    index,
		logger:   logger.With().Str("component", "agent").Logger(),
	}
}

// ProcessRequest classifies free text and routes it.
func (a *Agent) ProcessRequest(ctx context.Context, request string) *entities.RequestResult {
	intent := Classify(request)
	a.logger.Info().Str("intent", string(intent)).Str("request", request).Msg("processing request")

	switch intent {
	case entities.IntentBuild:
		build := a.Build(ctx, request, "")
		return &entities.RequestResult{
			Success: build.Success,
			Intent:  intent,
			Build:   build,
			Error:   build.Error,
		}
	case entities.IntentFix:
		return &entities.RequestResult{
			Intent:     intent,
			Error:      entities.MsgFixNeedsProjectPath,
			Suggestion: entities.MsgFixSuggestion,
		}
	default:
		answer, err := a.Ask(ctx, request, "")
		if err != nil {
			return &entities.RequestResult{Intent: intent, Error: err.Error()}
		}
		return &entities.RequestResult{Success: true, Intent: intent, Answer: answer}
	}
}

// Build generates a project from request. outputDir may be empty.
func (a *Agent) Build(ctx context.Context, request, outputDir string) *entities.BuildResult {
	if a.builder == nil {
		return entities.FailedBuild(entities.MsgBuilderDisabled, entities.ErrModuleDisabled)
	}
	return a.builder.Build(ctx, request, outputDir)
}

// Fix repairs the project at path, backing it up first.
func (a *Agent) Fix(ctx context.Context, path, description string) *entities.FixResult {
	if a.fixer == nil {
		return &entities.FixResult{FixedFiles: []string{}, Error: entities.MsgFixerDisabled, Cause: entities.ErrModuleDisabled}
	}
	return a.fixer.FixIssue(ctx, path, description, true)
}

// Analyze describes the project at path.
func (a *Agent) Analyze(path string) *entities.ProjectAnalysis {
	if a.fixer == nil {
		return &entities.ProjectAnalysis{Error: entities.MsgFixerDisabled, Cause: entities.ErrModuleDisabled}
	}
	return a.fixer.AnalyzeProject(path)
}

// Diagnose explains an issue without touching any file.
func (a *Agent) Diagnose(ctx context.Context, path, description string) *entities.DiagnosisResult {
	if a.fixer == nil {
		return &entities.DiagnosisResult{Error: entities.MsgFixerDisabled, Cause: entities.ErrModuleDisabled}
	}
	return a.fixer.DiagnoseIssue(ctx, path, description)
}

// Refactor rewrites one file toward objective.
func (a *Agent) Refactor(ctx context.Context, path, objective string) *entities.RefactorResult {
	if a.fixer == nil {
		return &entities.RefactorResult{Error: entities.MsgFixerDisabled, Cause: entities.ErrModuleDisabled}
	}
	return a.fixer.Refactor(ctx, path, objective)
}

// Ask answers a question; background is optional.
func (a *Agent) Ask(ctx context.Context, question, background string) (string, error) {
	return a.asker.Ask(ctx, question, background)
}

// AskStream answers a question as a token stream.
func (a *Agent) AskStream(ctx context.Context, question, background string) (<-chan ports.StreamToken, error) {
	return a.asker.AskStream(ctx, question, background)
}

// Learn stores new knowledge and returns its id.
func (a *Agent) Learn(ctx context.Context, content, contentType string, tags []string) (string, error) {
	if a.learner == nil {
		return "", fmt.Errorf("%w: %s", entities.ErrModuleDisabled, entities.MsgLearnerDisabled)
	}
	return a.learner.Learn(ctx, content, contentType, tags)
}

// Deploy hands a project to the deployer collaborator.
func (a *Agent) Deploy(ctx context.Context, path, method string, config map[string]any) *entities.DeployResult {
	if a.deployer == nil {
		return &entities.DeployResult{Error: entities.MsgDeployerDisabled}
	}
	if method == "" {
		method = "ssh"
	}
	if !slices.Contains(DeployMethods, method) {
		return &entities.DeployResult{Error: fmt.Sprintf("Méthode de déploiement '%s' non supportée", method)}
	}
	if config == nil {
		config = map[string]any{}
	}

	result, err := a.deployer.Deploy(ctx, path, method, config)
	if err != nil {
		a.logger.Error().Err(err).Str("method", method).Msg("deploy failed")
		return &entities.DeployResult{Error: err.Error()}
	}
	return result
}

// Reindex rebuilds the vector collections from the stored records.
func (a *Agent) Reindex(ctx context.Context) (knowledge.ReindexStats, error) {
	return a.index.Reindex(ctx)
}
