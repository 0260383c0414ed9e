// Package entities contains core business entities.
// These are pure domain objects with no knowledge of storage, transport or models.
package entities

import (
	"encoding/json"
	"strings"
)

// Intent is the classified purpose of a free-text request.
type Intent string

const (
	IntentBuild    Intent = "build"
	IntentFix      Intent = "fix"
	IntentQuestion Intent = "question"
)

// ChatMessage represents a conversation turn sent to the oracle.
type ChatMessage struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// ChatRequest is a single completion call.
// Zero Temperature or MaxTokens means "use the configured default".
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// StringList decodes either a JSON list of strings or a single string.
// Models often collapse one-element lists into a bare string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// Analysis is the Builder's structured understanding of a build request.
type Analysis struct {
	ToolType     string     `json:"tool_type"`
	Features     StringList `json:"features"`
	Technologies StringList `json:"technologies"`
	Complexity   string     `json:"complexity"`
	Questions    StringList `json:"questions"`
	ProjectName  string     `json:"project_name"`
}

// DefaultProjectName is used whenever the oracle does not name the project.
const DefaultProjectName = "nouveau_projet"

// DefaultAnalysis is returned when the oracle reply cannot be parsed.
func DefaultAnalysis() Analysis {
	return Analysis{
		ToolType:     "unknown",
		Features:     StringList{},
		Technologies: StringList{},
		Complexity:   "medium",
		Questions:    StringList{},
		ProjectName:  DefaultProjectName,
	}
}

// ToolKind is the closed set of artifact families the Builder can produce.
type ToolKind int

const (
	ToolUnrecognized ToolKind = iota
	ToolWebsite
	ToolAPI
	ToolCLI
)

// String returns the metadata name used in project history records.
func (k ToolKind) String() string {
	switch k {
	case ToolWebsite:
		return "website_static"
	case ToolAPI:
		return "api_rest"
	case ToolCLI:
		return "cli_tool"
	default:
		return "unrecognized"
	}
}

// Endpoint describes one REST route requested for an API build.
type Endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// DefaultEndpoints is used when endpoint extraction fails.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{Method: "GET", Path: "/", Description: "Endpoint racine"},
		{Method: "GET", Path: "/health", Description: "Vérification de santé"},
	}
}

// Command describes one sub-command requested for a CLI build.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultCommands is used when command extraction fails.
func DefaultCommands() []Command {
	return []Command{
		{Name: "run", Description: "Exécute l'action principale"},
		{Name: "help", Description: "Affiche l'aide"},
	}
}

// Artifact is one generated file.
type Artifact struct {
	RelativePath string `json:"relative_path"`
	Content      string `json:"content"`
	Kind         string `json:"kind"`
	Executable   bool   `json:"executable,omitempty"`
}

// Confidence is the oracle's self-reported certainty about a diagnosis.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence normalizes a free-form value. Anything unrecognized is low.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Diagnostic is the Fixer's structured explanation of an issue.
type Diagnostic struct {
	Cause             string     `json:"cause"`
	AffectedFiles     StringList `json:"affected_files"`
	ReproductionSteps StringList `json:"reproduction_steps"`
	Solution          string     `json:"solution"`
	Risks             StringList `json:"risks"`
	Confidence        Confidence `json:"confidence"`
}

// CodeReview is the structured result of an oracle code analysis.
type CodeReview struct {
	Errors      StringList `json:"errors"`
	Warnings    StringList `json:"warnings"`
	Suggestions StringList `json:"suggestions"`
	Severity    string     `json:"severity"`
	RawResponse string     `json:"raw_response,omitempty"`
}
