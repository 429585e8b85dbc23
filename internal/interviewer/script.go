package interviewer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Script drives the interview flow. It is loaded once at startup from a YAML
// file so the persona and question plan can be tuned without a rebuild.
type Script struct {
	Interviewer               Persona               `yaml:"interviewer"`
	QuestionsBeforeEvaluation int                   `yaml:"questions_before_evaluation"`
	Types                     map[string]TypeScript `yaml:"types"`
}

type Persona struct {
	Name    string `yaml:"name"`
	Company string `yaml:"company"`
}

// TypeScript describes one interview style, keyed by the interview_type
// request parameter ("hr", "tech").
type TypeScript struct {
	Description string      `yaml:"description"`
	FocusAreas  []FocusArea `yaml:"focus_areas"`
}

// FocusArea is the theme of a single question in the plan, in order.
type FocusArea struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	Guidance string `yaml:"guidance"`
}

const DefaultInterviewType = "hr"

func LoadScript(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read interview script: %w", err)
	}

	var script Script
	if err := yaml.Unmarshal(raw, &script); err != nil {
		return nil, fmt.Errorf("failed to parse interview script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

func (s *Script) Validate() error {
	if s.Interviewer.Name == "" {
		return fmt.Errorf("interview script: interviewer.name is required")
	}
	if s.QuestionsBeforeEvaluation <= 0 {
		return fmt.Errorf("interview script: questions_before_evaluation must be positive, got %d", s.QuestionsBeforeEvaluation)
	}
	if _, ok := s.Types[DefaultInterviewType]; !ok {
		return fmt.Errorf("interview script: type %q must be defined", DefaultInterviewType)
	}
	for name, ts := range s.Types {
		if len(ts.FocusAreas) == 0 {
			return fmt.Errorf("interview script: type %q has no focus areas", name)
		}
		for i, fa := range ts.FocusAreas {
			if fa.Name == "" || fa.Guidance == "" {
				return fmt.Errorf("interview script: type %q focus area %d is missing name or guidance", name, i)
			}
		}
	}
	return nil
}

// TypeFor resolves an interview type, falling back to the default when the
// requested one is unknown or empty.
func (s *Script) TypeFor(interviewType string) TypeScript {
	if ts, ok := s.Types[interviewType]; ok {
		return ts
	}
	return s.Types[DefaultInterviewType]
}
