package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/0xcro3dile/jarvis-go/internal/domain/usecases"
)

// Tool is one MCP tool backed by the agent.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools returns every tool in registration order.
func Tools(agent *usecases.Agent) []Tool {
	return []Tool{
		&BuildTool{agent: agent},
		&FixTool{agent: agent},
		&AnalyzeTool{agent: agent},
		&RefactorTool{agent: agent},
		&AskTool{agent: agent},
		&LearnTool{agent: agent},
	}
}

// BuildTool handles jarvis_build.
type BuildTool struct{ agent *usecases.Agent }

func (t *BuildTool) Definition() mcp.Tool {
	return mcp.NewTool("jarvis_build",
		mcp.WithDescription("Generate a new project (static website, REST API or CLI tool) from a natural-language request."),
		mcp.WithString("request", mcp.Required(), mcp.Description("What to build, e.g. 'Crée un site web pour un portfolio'")),
		mcp.WithString("output_dir", mcp.Description("Target directory (default: <projects_dir>/<project_name>)")),
	)
}

func (t *BuildTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	request := req.GetString("request", "")
	if request == "" {
		return mcp.NewToolResultError("'request' is required"), nil
	}
	result := t.agent.Build(ctx, request, req.GetString("output_dir", ""))
	return resultJSON(result, result.Success)
}

// FixTool handles jarvis_fix.
type FixTool struct{ agent *usecases.Agent }

func (t *FixTool) Definition() mcp.Tool {
	return mcp.NewTool("jarvis_fix",
		mcp.WithDescription("Diagnose an issue in an existing project and rewrite the affected files. The project is backed up first."),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project directory, inside the allowed directories")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Description of the issue or error message")),
	)
}

func (t *FixTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("project_path", "")
	description := req.GetString("description", "")
	if path == "" || description == "" {
		return mcp.NewToolResultError("'project_path' and 'description' are required"), nil
	}
	result := t.agent.Fix(ctx, path, description)
	return resultJSON(result, result.Success)
}

// AnalyzeTool handles jarvis_analyze.
type AnalyzeTool struct{ agent *usecases.Agent }

func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("jarvis_analyze",
		mcp.WithDescription("Describe a project: type, files, dependencies, languages and git state."),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project directory, inside the allowed directories")),
	)
}

func (t *AnalyzeTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("project_path", "")
	if path == "" {
		return mcp.NewToolResultError("'project_path' is required"), nil
	}
	result := t.agent.Analyze(path)
	return resultJSON(result, result.Success)
}

// RefactorTool handles jarvis_refactor.
type RefactorTool struct{ agent *usecases.Agent }

func (t *RefactorTool) Definition() mcp.Tool {
	return mcp.NewTool("jarvis_refactor",
		mcp.WithDescription("Rewrite a single file toward an objective. The file is backed up first."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("File to refactor")),
		mcp.WithString("objective", mcp.Description(fmt.Sprintf("Refactoring objective (default: %q)", usecases.DefaultRefactorObjective))),
	)
}

func (t *RefactorTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("file_path", "")
	if path == "" {
		return mcp.NewToolResultError("'file_path' is required"), nil
	}
	result := t.agent.Refactor(ctx, path, req.GetString("objective", ""))
	return resultJSON(result, result.Success)
}

// AskTool handles jarvis_ask.
type AskTool struct{ agent *usecases.Agent }

func (t *AskTool) Definition() mcp.Tool {
	return mcp.NewTool("jarvis_ask",
		mcp.WithDescription("Ask a development question. Similar stored solutions are added as context."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question")),
		mcp.WithString("context", mcp.Description("Optional extra context")),
	)
}

func (t *AskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := req.GetString("question", "")
	if question == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}
	answer, err := t.agent.Ask(ctx, question, req.GetString("context", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// LearnTool handles jarvis_learn.
type LearnTool struct{ agent *usecases.Agent }

func (t *LearnTool) Definition() mcp.Tool {
	return mcp.NewTool("jarvis_learn",
		mcp.WithDescription("Store new knowledge. Content of the form 'Problème: ... Solution: ...' is split into problem and solution."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Knowledge to store")),
		mcp.WithString("type", mcp.Description("solution (default), template or pattern")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	)
}

func (t *LearnTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	id, err := t.agent.Learn(ctx, content, req.GetString("type", ""), splitTags(req.GetString("tags", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("learn failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Connaissance sauvegardée : %s", id)), nil
}
