package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/miraihr/mirai/internal/llm"
)

const (
	questionsPerQuiz = 10
	quizTemperature  = 0.7
	quizMaxTokens    = 2000
	topicMaxTokens   = 300
)

// Question is one multiple-choice quiz entry.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Quiz is the payload served to the frontend.
type Quiz struct {
	Quiz []Question `json:"quiz"`
}

type Service struct {
	completer llm.Completer
}

func NewService(completer llm.Completer) *Service {
	return &Service{completer: completer}
}

// Generate produces a ten-question technical quiz tailored to a job
// position.
func (s *Service) Generate(ctx context.Context, position string) (*Quiz, error) {
	prompt := fmt.Sprintf(
		"Anda adalah seorang profesional di bidang %s yang sedang merancang %d pertanyaan quiz teknikal untuk posisi %s. "+
			"Pertanyaan-pertanyaan ini harus relevan dengan keterampilan teknis yang dibutuhkan untuk posisi ini.\n"+
			"Balas HANYA dengan JSON berformat:\n"+
			`{"quiz": [{"question": "...", "options": ["...", "...", "...", "..."], "answer": "..."}]}`+
			"\nanswer harus sama persis dengan salah satu options.",
		position, questionsPerQuiz, position,
	)

	raw, err := s.completer.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: quizTemperature,
		MaxTokens:   quizMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	return parseQuiz(raw)
}

// ForTopic produces a single question about one roadmap topic.
func (s *Service) ForTopic(ctx context.Context, title, description string) (*Question, error) {
	if description == "" {
		description = "Deskripsi tidak tersedia"
	}
	prompt := fmt.Sprintf(
		"TOLONG SELALU JAWAB DENGAN BAHASA INDONESIA.\n"+
			"You are a domain expert creating a quiz for the topic %q.\nDescription: %s\n"+
			"Tolong buat 1 pertanyaan yang relevan dengan description tersebut, dengan 4 pilihan jawaban.\n"+
			"Balas HANYA dengan objek JSON berformat:\n"+
			`{"question": "...", "options": ["...", "...", "...", "..."], "answer": "..."}`+
			"\nanswer harus sama persis dengan salah satu options.",
		title, description,
	)

	raw, err := s.completer.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: quizTemperature,
		MaxTokens:   topicMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("topic quiz generation: %w", err)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("topic quiz generation: no JSON object in model output")
	}

	var q Question
	if err := json.Unmarshal([]byte(raw[start:end+1]), &q); err != nil {
		return nil, fmt.Errorf("topic quiz generation: %w", err)
	}
	if !q.valid() {
		return nil, fmt.Errorf("topic quiz generation: model produced an incomplete question")
	}
	return &q, nil
}

func parseQuiz(raw string) (*Quiz, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("quiz generation: no JSON in model output")
	}

	var quiz Quiz
	if err := json.Unmarshal([]byte(raw[start:end+1]), &quiz); err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	// Keep only well-formed questions rather than failing the whole quiz on
	// one bad entry.
	questions := quiz.Quiz[:0]
	for _, q := range quiz.Quiz {
		if q.valid() {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz generation: model produced no usable questions")
	}
	quiz.Quiz = questions
	return &quiz, nil
}

func (q Question) valid() bool {
	if q.Question == "" || len(q.Options) < 2 || q.Answer == "" {
		return false
	}
	for _, opt := range q.Options {
		if opt == q.Answer {
			return true
		}
	}
	return false
}
