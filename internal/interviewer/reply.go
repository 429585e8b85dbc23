package interviewer

import (
	"encoding/json"
	"strings"
)

// Scorecard is the per-aspect rating (0-100) produced at the end of an
// interview. Field names match the payload the frontend renders.
type Scorecard struct {
	Motivasi         int `json:"motivasi"`
	TechnicalSkills  int `json:"technical_skills"`
	PengalamanProyek int `json:"pengalaman_proyek"`
	PemecahanMasalah int `json:"pemecahan_masalah"`
	KecocokanBudaya  int `json:"kecocokan_budaya"`
}

// Reply is one interviewer turn. Scorecard and DetailedEvaluation are only
// set on the closing evaluation turn.
type Reply struct {
	Message            string
	Scorecard          *Scorecard
	DetailedEvaluation string
}

type replyPayload struct {
	Pesan              string     `json:"pesan"`
	Skor               *Scorecard `json:"skor"`
	EvaluasiTerperinci string     `json:"evaluasi_terperinci"`
}

// ParseReply extracts the structured evaluation from raw model output.
// Models wrap JSON in prose or code fences often enough that we scan for the
// outermost braces instead of unmarshalling the whole response. Output with
// no parsable JSON is treated as a plain conversational message.
func ParseReply(raw string) *Reply {
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return &Reply{Message: raw}
	}

	var payload replyPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return &Reply{Message: raw}
	}

	message := strings.TrimSpace(payload.Pesan)
	if message == "" {
		// Some turns put the spoken part before the JSON block.
		message = strings.TrimSpace(raw[:start])
		message = strings.TrimSuffix(message, "```json")
		message = strings.TrimSpace(strings.TrimSuffix(message, "```"))
	}
	if message == "" {
		message = raw
	}

	return &Reply{
		Message:            message,
		Scorecard:          payload.Skor,
		DetailedEvaluation: strings.TrimSpace(payload.EvaluasiTerperinci),
	}
}
