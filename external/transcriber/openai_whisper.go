package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/transcriber"
)

// OpenAIWhisperTranscriber transcribes finished clips with the OpenAI audio
// transcription endpoint (whisper-1 by default).
type OpenAIWhisperTranscriber struct {
	client          openai.Client
	model           string
	defaultLanguage string
}

func NewOpenAIWhisperTranscriber(cfg *config.Config) transcriber.Transcriber {
	return &OpenAIWhisperTranscriber{
		client:          openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		model:           cfg.OpenAITranscribeModel,
		defaultLanguage: cfg.DefaultLanguage,
	}
}

func (t *OpenAIWhisperTranscriber) Name() string {
	return config.TranscriberOpenAI
}

func (t *OpenAIWhisperTranscriber) Transcribe(ctx context.Context, clip transcriber.Clip) (string, error) {
	language := clip.Language
	if language == "" {
		language = t.defaultLanguage
	}
	filename := clip.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(clip.Data), filename, clip.ContentType),
		Model:    openai.AudioModel(t.model),
		Language: openai.String(language),
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("openai transcription: empty result")
	}
	return text, nil
}
