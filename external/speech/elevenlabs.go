package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/speech"
)

const (
	elevenLabsBaseURL        = "https://api.elevenlabs.io"
	elevenLabsModel          = "eleven_turbo_v2_5"
	elevenLabsOutputFormat   = "mp3_22050_32"
	elevenLabsRequestTimeout = 60 * time.Second
)

type ElevenLabsTTS struct {
	baseURL      string
	apiKey       string
	voiceID      string
	languageCode string
	client       *http.Client
}

// NewElevenLabsTTS returns a synthesizer backed by the ElevenLabs HTTP API.
// Replies are short, so the non-streaming endpoint is used.
func NewElevenLabsTTS(cfg *config.Config) speech.Synthesizer {
	return &ElevenLabsTTS{
		baseURL:      elevenLabsBaseURL,
		apiKey:       cfg.ElevenLabsAPIKey,
		voiceID:      cfg.ElevenLabsVoiceID,
		languageCode: cfg.DefaultLanguage,
		client:       &http.Client{Timeout: elevenLabsRequestTimeout},
	}
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	LanguageCode  string                  `json:"language_code,omitempty"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

func (s *ElevenLabsTTS) Name() string {
	return config.SpeechElevenLabs
}

func (s *ElevenLabsTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(elevenLabsRequest{
		Text:         text,
		ModelID:      elevenLabsModel,
		LanguageCode: s.languageCode,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       0.1,
			SimilarityBoost: 0.3,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		strings.TrimRight(s.baseURL, "/"), s.voiceID, elevenLabsOutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs: empty audio response")
	}
	return audio, nil
}
