package oracle

import (
	"context"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
	"github.com/0xcro3dile/jarvis-go/internal/domain/ports"
)

// AnswerQuestionStream is AnswerQuestion delivered token by token. Transports
// that cannot stream produce a single final token.
func (o *CodeOracle) AnswerQuestionStream(ctx context.Context, question, background string) (<-chan ports.StreamToken, error) {
	req := entities.ChatRequest{Messages: []entities.ChatMessage{
		{Role: roleSystem, Content: answerSystemPrompt},
		{Role: roleUser, Content: answerUserPrompt(question, background)},
	}}

	if streamer, ok := o.chat.(ports.StreamingChatService); ok {
		return streamer.ChatStream(ctx, req)
	}

	reply, err := o.chat.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	ch := make(chan ports.StreamToken, 1)
	ch <- ports.StreamToken{Content: reply, Done: true}
	close(ch)
	return ch, nil
}
