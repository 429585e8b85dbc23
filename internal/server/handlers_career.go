package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/miraihr/mirai/internal/advice"
	"github.com/miraihr/mirai/internal/roadmap"
)

func (s *Server) handleRoadmap(w http.ResponseWriter, r *http.Request) {
	role := r.PathValue("role")

	doc, err := s.roadmaps.Load(role)
	if err != nil {
		if errors.Is(err, roadmap.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no roadmap for role "+role)
			return
		}
		slog.Error("failed to load roadmap", "role", role, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load roadmap")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	position := r.URL.Query().Get("position")
	if position == "" {
		position = defaultPosition
	}

	quiz, err := s.quiz.Generate(r.Context(), position)
	if err != nil {
		slog.Error("quiz generation failed", "position", position, "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate quiz")
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

type roadmapQuizRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleRoadmapQuiz(w http.ResponseWriter, r *http.Request) {
	var req roadmapQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeError(w, http.StatusBadRequest, "request body must contain a topic title")
		return
	}

	question, err := s.quiz.ForTopic(r.Context(), req.Title, req.Description)
	if err != nil {
		slog.Error("topic quiz generation failed", "title", req.Title, "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate topic question")
		return
	}

	writeJSON(w, http.StatusOK, question)
}

// maxAdviceUploadBytes bounds the word-cloud JSON upload.
const maxAdviceUploadBytes = 1 << 20

// handleJobseekerAdvice takes a job title and an uploaded word-cloud JSON
// file, and returns career advice steered by the uploaded skill names.
func (s *Server) handleJobseekerAdvice(w http.ResponseWriter, r *http.Request) {
	jobTitle := r.URL.Query().Get("job_title")
	if jobTitle == "" {
		writeError(w, http.StatusBadRequest, "job_title query parameter is required")
		return
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxAdviceUploadBytes)
	file, _, err := r.FormFile("json_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'json_file' is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	skills, err := wordCloudSkills(content)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.advice.Generate(r.Context(), jobTitle, skills)
	if err != nil {
		slog.Error("advice generation failed", "job_title", jobTitle, "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate advice")
		return
	}

	writeJSON(w, http.StatusOK, map[string]*advice.Advice{"advice": result})
}

// wordCloudSkills extracts skill names from an uploaded word-cloud JSON
// document, heaviest first.
func wordCloudSkills(content []byte) ([]string, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(content, &payload); err != nil {
		return nil, errors.New("failed to parse JSON file")
	}

	raw, ok := payload["wordcloud_data"]
	if !ok {
		return nil, errors.New("invalid JSON structure, 'wordcloud_data' missing")
	}

	var weights map[string]float64
	if err := json.Unmarshal(raw, &weights); err != nil {
		return nil, errors.New("failed to parse JSON file")
	}

	skills := make([]string, 0, len(weights))
	for skill := range weights {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		if weights[skills[i]] != weights[skills[j]] {
			return weights[skills[i]] > weights[skills[j]]
		}
		return skills[i] < skills[j]
	})
	return skills, nil
}
