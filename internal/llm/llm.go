package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Completer is a single-shot chat completion backend.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
