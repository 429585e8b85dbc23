package interviewer

import (
	"context"
	"fmt"

	"github.com/miraihr/mirai/internal/llm"
)

const (
	questionTemperature = 0.7
	questionMaxTokens   = 400
	evaluationMaxTokens = 1200
)

// Exchange is one completed question/answer round.
type Exchange struct {
	Candidate   string
	Interviewer string
}

// Request carries everything needed to produce the next interviewer turn.
// QuestionIndex counts questions already asked; the opening turn uses 0.
type Request struct {
	Position      string
	InterviewType string
	Transcript    string
	History       []Exchange
	QuestionIndex int
}

type Service struct {
	script    *Script
	completer llm.Completer
}

func NewService(script *Script, completer llm.Completer) *Service {
	return &Service{script: script, completer: completer}
}

// Respond produces the next interviewer turn: the opening greeting, a
// follow-up question, or the closing evaluation with scores once the
// question plan is exhausted.
func (s *Service) Respond(ctx context.Context, req Request) (*Reply, error) {
	ts := s.script.TypeFor(req.InterviewType)

	evaluation := req.QuestionIndex >= s.script.QuestionsBeforeEvaluation

	var instruction string
	switch {
	case evaluation:
		instruction = evaluationInstruction()
	case req.QuestionIndex == 0 && len(req.History) == 0:
		instruction = openingInstruction(ts)
	default:
		instruction = questionInstruction(ts, req.QuestionIndex)
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(s.script, ts, req.Position)},
	}
	for _, ex := range req.History {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: ex.Candidate},
			llm.Message{Role: llm.RoleAssistant, Content: ex.Interviewer},
		)
	}
	if req.Transcript != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Transcript})
	}
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: instruction})

	maxTokens := questionMaxTokens
	if evaluation {
		maxTokens = evaluationMaxTokens
	}

	raw, err := s.completer.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: questionTemperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("interviewer response: %w", err)
	}

	reply := ParseReply(raw)
	if reply.Message == "" {
		return nil, fmt.Errorf("interviewer response: model returned empty message")
	}
	return reply, nil
}

// Finished reports whether the turn at the given question index is the
// closing evaluation.
func (s *Service) Finished(questionIndex int) bool {
	return questionIndex >= s.script.QuestionsBeforeEvaluation
}
