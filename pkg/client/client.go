// Package client is a Go client for the Mirai interview API plus a small
// state machine that drives the record / upload / playback loop the way the
// browser frontend does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 2 * time.Minute

// Client talks to the interview backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config mirrors the backend's /config payload.
type Config struct {
	TranscriptionService string `json:"transcription_service"`
	TTSService           string `json:"tts_service"`
	DefaultLanguage      string `json:"default_language"`
}

// Scorecard is the per-aspect rating returned with the final evaluation.
type Scorecard struct {
	Motivasi         int `json:"motivasi"`
	TechnicalSkills  int `json:"technical_skills"`
	PengalamanProyek int `json:"pengalaman_proyek"`
	PemecahanMasalah int `json:"pemecahan_masalah"`
	KecocokanBudaya  int `json:"kecocokan_budaya"`
}

// SpeakResult is one completed interview turn.
type SpeakResult struct {
	Transcription      string     `json:"transcription"`
	AIResponse         string     `json:"ai_response"`
	AudioURL           string     `json:"audio_url"`
	Selesai            bool       `json:"selesai"`
	Skor               *Scorecard `json:"skor,omitempty"`
	EvaluasiTerperinci string     `json:"evaluasi_terperinci,omitempty"`
}

// SpeakParams carries one audio upload.
type SpeakParams struct {
	UserID        string
	Position      string
	InterviewType string
	Language      string

	Audio       []byte
	Filename    string
	ContentType string
}

type apiError struct {
	Detail string `json:"detail"`
}

func (c *Client) FetchConfig(ctx context.Context) (*Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/config", nil)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := c.doJSON(req, &cfg); err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}
	return &cfg, nil
}

// Speak uploads one recorded answer and returns the interviewer's turn.
func (c *Client) Speak(ctx context.Context, p SpeakParams) (*SpeakResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", p.Filename)
	if err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}
	if _, err := fw.Write(p.Audio); err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}

	q := url.Values{}
	q.Set("user_id", p.UserID)
	if p.Position != "" {
		q.Set("position", p.Position)
	}
	if p.InterviewType != "" {
		q.Set("interview_type", p.InterviewType)
	}
	if p.Language != "" {
		q.Set("language", p.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speak?"+q.Encode(), &body)
	if err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result SpeakResult
	if err := c.doJSON(req, &result); err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}
	return &result, nil
}

// ResolveAudioURL turns the relative audio_url from a speak response into an
// absolute URL carrying the session's user_id.
func (c *Client) ResolveAudioURL(audioURL, userID string) string {
	return c.baseURL + audioURL + "?user_id=" + url.QueryEscape(userID)
}

// FetchAudio downloads a synthesized reply.
func (c *Client) FetchAudio(ctx context.Context, audioURL, userID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ResolveAudioURL(audioURL, userID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch audio: %s", readError(resp))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	return data, nil
}

// WelcomeAssetPath is the static path of the greeting clip for an interview
// type and TTS provider combination.
func WelcomeAssetPath(interviewType, ttsService string) string {
	return fmt.Sprintf("/static/welcoming/welcoming_%s_%s.mp3", interviewType, ttsService)
}

// FetchWelcomeAudio downloads the pre-rendered greeting clip.
func (c *Client) FetchWelcomeAudio(ctx context.Context, interviewType, ttsService string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+WelcomeAssetPath(interviewType, ttsService), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch welcome audio: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch welcome audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch welcome audio: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Roadmap is an ordered checklist of topics for one role.
type Roadmap struct {
	Role   string
	Topics []RoadmapTopic
}

type RoadmapTopic struct {
	Title       string
	Description string        `json:"description"`
	Links       []RoadmapLink `json:"links"`
}

type RoadmapLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// FetchRoadmap loads the checklist for a role, preserving topic order.
func (c *Client) FetchRoadmap(ctx context.Context, role string) (*Roadmap, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/roadmaps/"+url.PathEscape(role), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch roadmap: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roadmap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roadmap: %s", readError(resp))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch roadmap: %w", err)
	}

	rm := &Roadmap{Role: role}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("fetch roadmap: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("fetch roadmap: expected a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("fetch roadmap: %w", err)
		}
		title, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("fetch roadmap: non-string topic key")
		}
		var topic RoadmapTopic
		if err := dec.Decode(&topic); err != nil {
			return nil, fmt.Errorf("fetch roadmap: %w", err)
		}
		topic.Title = title
		rm.Topics = append(rm.Topics, topic)
	}
	return rm, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", readError(resp))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readError(resp *http.Response) string {
	var e apiError
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e); err == nil && e.Detail != "" {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, e.Detail)
	}
	return fmt.Sprintf("unexpected status %d", resp.StatusCode)
}
