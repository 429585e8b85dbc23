package advice

import (
	"context"
	"fmt"
	"strings"

	"github.com/miraihr/mirai/internal/llm"
)

const (
	adviceTemperature = 0.7
	adviceMaxTokens   = 1500
)

// Advice is career guidance for one job title, split into the five sections
// the frontend renders.
type Advice struct {
	TechnicalSkills      string `json:"technical_skills"`
	ResumeTips           string `json:"resume_tips"`
	InterviewPreparation string `json:"interview_preparation"`
	CommonPitfalls       string `json:"common_pitfalls"`
	CareerGrowthTips     string `json:"career_growth_tips"`
}

type Service struct {
	completer llm.Completer
}

func NewService(completer llm.Completer) *Service {
	return &Service{completer: completer}
}

// Generate asks the model for job-seeking advice tailored to a job title,
// steered by the skill names the caller extracted from the uploaded word
// cloud.
func (s *Service) Generate(ctx context.Context, jobTitle string, skills []string) (*Advice, error) {
	prompt := fmt.Sprintf(
		"TOLONG SELALU GUNAKAN BAHASA INDONESIA.\n"+
			"You are a career advisor helping a job seeker looking to become a %s. "+
			"Based on industry trends, key skills required for this role are: %s.\n"+
			"Please provide personalized advice that covers:\n"+
			"1. Key technical skills for %s and how to acquire them.\n"+
			"2. Resume improvement tips specific to this role.\n"+
			"3. Interview preparation strategies.\n"+
			"4. Common pitfalls to avoid.\n"+
			"5. Career growth tips in the field of %s.\n"+
			"Tulis lima bagian tersebut sebagai paragraf terpisah, dipisahkan satu baris kosong, tanpa judul tambahan.",
		jobTitle, strings.Join(skills, ", "), jobTitle, jobTitle,
	)

	raw, err := s.completer.Complete(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: adviceTemperature,
		MaxTokens:   adviceMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("advice generation: %w", err)
	}

	return parseAdvice(raw)
}

// parseAdvice maps blank-line-separated paragraphs onto the five sections in
// order. Models that emit fewer paragraphs leave the trailing sections empty
// rather than failing the whole request.
func parseAdvice(raw string) (*Advice, error) {
	var sections []string
	for _, p := range strings.Split(raw, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			sections = append(sections, p)
		}
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("advice generation: model produced no advice text")
	}

	advice := &Advice{}
	targets := []*string{
		&advice.TechnicalSkills,
		&advice.ResumeTips,
		&advice.InterviewPreparation,
		&advice.CommonPitfalls,
		&advice.CareerGrowthTips,
	}
	for i, section := range sections {
		if i >= len(targets) {
			break
		}
		*targets[i] = section
	}
	return advice, nil
}
