package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// Scripted is a deterministic ChatService for tests and offline runs.
// Replies are consumed in order; when they run out, Responder is consulted.
type Scripted struct {
	mu        sync.Mutex
	replies   []string
	Responder func(req entities.ChatRequest) (string, error)
	requests  []entities.ChatRequest
}

// NewScripted returns a stub that answers with replies in order.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

// Chat implements ports.ChatService.
func (s *Scripted) Chat(_ context.Context, req entities.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.replies) > 0 {
		reply := s.replies[0]
		s.replies = s.replies[1:]
		return reply, nil
	}
	if s.Responder != nil {
		return s.Responder(req)
	}
	return "", fmt.Errorf("%w: no scripted reply left", entities.ErrOracleTransport)
}

// Requests returns every request seen so far.
func (s *Scripted) Requests() []entities.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.ChatRequest(nil), s.requests...)
}

// UserMessage returns the user content of request i.
func (s *Scripted) UserMessage(i int) string {
	reqs := s.Requests()
	if i < 0 || i >= len(reqs) {
		return ""
	}
	msgs := reqs[i].Messages
	for j := len(msgs) - 1; j >= 0; j-- {
		if msgs[j].Role == "user" {
			return msgs[j].Content
		}
	}
	return ""
}
