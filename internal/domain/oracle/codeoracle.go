// Package oracle wraps a chat-completion service with task-specific prompt
// templates and the helpers used to read its semi-structured replies.
package oracle

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// CodeOracle builds prompts and funnels them through a single ChatService.
// It is stateless and never retries.
type CodeOracle struct {
	chat   ports.ChatService
	logger zerolog.Logger
}

// New creates a CodeOracle.
func New(chat ports.ChatService, logger zerolog.Logger) *CodeOracle {
	return &CodeOracle{
		chat:   chat,
		logger: logger.With().Str("component", "oracle").Logger(),
	}
}

// Chat sends raw messages. Zero temperature or maxTokens use the transport defaults.
func (o *CodeOracle) Chat(ctx context.Context, messages []entities.ChatMessage, temperature float64, maxTokens int) (string, error) {
	o.logger.Debug().Int("messages", len(messages)).Msg("chat")
	return o.chat.Chat(ctx, entities.ChatRequest{
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
}

func (o *CodeOracle) ask(ctx context.Context, system, user string) (string, error) {
	return o.Chat(ctx, []entities.ChatMessage{
		{Role: roleSystem, Content: system},
		{Role: roleUser, Content: user},
	}, 0, 0)
}

// GenerateCode asks for code only, no explanation.
func (o *CodeOracle) GenerateCode(ctx context.Context, prompt, language string) (string, error) {
	return o.ask(ctx, generateSystemPrompt(language), prompt)
}

// AnalyzeCode returns a structured review. When the reply holds no usable
// JSON object the raw text is kept in RawResponse.
func (o *CodeOracle) AnalyzeCode(ctx context.Context, code, language string) (entities.CodeReview, error) {
	reply, err := o.ask(ctx, analyzeSystemPrompt(language), fenced("Code à analyser", language, code))
	if err != nil {
		return entities.CodeReview{}, err
	}
	review, ok := DecodeObject[entities.CodeReview](reply)
	if !ok {
		o.logger.Warn().Msg("code review reply is not JSON, keeping raw text")
		return entities.CodeReview{RawResponse: reply}, nil
	}
	return review, nil
}

// FixCode returns a corrected version of code for the given error message.
func (o *CodeOracle) FixCode(ctx context.Context, code, errorMessage, language string) (string, error) {
	return o.ask(ctx, fixSystemPrompt(language), fixUserPrompt(code, errorMessage, language))
}

// RefactorCode rewrites code toward objective while keeping behavior.
func (o *CodeOracle) RefactorCode(ctx context.Context, code, language, objective string) (string, error) {
	if objective == "" {
		objective = DefaultRefactorObjective
	}
	return o.ask(ctx, refactorSystemPrompt(language, objective), fenced("Code à refactoriser", language, code))
}

// ExplainCode describes what code does, in French.
func (o *CodeOracle) ExplainCode(ctx context.Context, code, language string) (string, error) {
	return o.ask(ctx, explainSystemPrompt(language), fenced("Explique ce code", language, code))
}

// GenerateDocumentation writes reference documentation for code.
func (o *CodeOracle) GenerateDocumentation(ctx context.Context, code, language string) (string, error) {
	return o.ask(ctx, documentationSystemPrompt(language), fenced("Documente ce code", language, code))
}

// AnswerQuestion answers a free-form question, optionally grounded on background text.
func (o *CodeOracle) AnswerQuestion(ctx context.Context, question, background string) (string, error) {
	return o.ask(ctx, answerSystemPrompt, answerUserPrompt(question, background))
}
