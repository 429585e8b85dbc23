package transcriber

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
	"github.com/miraihr/mirai/internal/transcriber"
)

const huggingFaceRequestTimeout = 120 * time.Second

// HuggingFaceTranscriber transcribes clips with the HuggingFace inference
// API. The raw audio body is posted as-is; the hosted whisper models accept
// wav and ogg/webm uploads directly.
type HuggingFaceTranscriber struct {
	endpoint string
	model    string
	token    string
	client   *http.Client
}

func NewHuggingFaceTranscriber(cfg *config.Config) transcriber.Transcriber {
	return &HuggingFaceTranscriber{
		endpoint: strings.TrimRight(cfg.HuggingFaceEndpoint, "/"),
		model:    cfg.HuggingFaceModel,
		token:    cfg.HuggingFaceToken,
		client:   &http.Client{Timeout: huggingFaceRequestTimeout},
	}
}

func (t *HuggingFaceTranscriber) Name() string {
	return config.TranscriberHuggingFace
}

type huggingFaceResult struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

func (t *HuggingFaceTranscriber) Transcribe(ctx context.Context, clip transcriber.Clip) (string, error) {
	url := fmt.Sprintf("%s/models/%s", t.endpoint, t.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(clip.Data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+t.token)
	if clip.ContentType != "" {
		req.Header.Set("Content-Type", clip.ContentType)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface inference: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("huggingface inference: read body: %w", err)
	}

	var result huggingFaceResult
	if err := json.Unmarshal(body, &result); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("huggingface inference: decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := result.Error
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return "", fmt.Errorf("huggingface inference returned status %d: %s", resp.StatusCode, detail)
	}
	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", fmt.Errorf("huggingface inference: empty transcription")
	}
	return text, nil
}
