package speech

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/speech"
)

type OpenAITTS struct {
	client openai.Client
	model  string
	voice  string
}

func NewOpenAITTS(cfg *config.Config) speech.Synthesizer {
	return &OpenAITTS{
		client: openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		model:  cfg.OpenAITTSModel,
		voice:  cfg.OpenAITTSVoice,
	}
}

func (s *OpenAITTS) Name() string {
	return config.SpeechOpenAI
}

func (s *OpenAITTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model: openai.SpeechModel(s.model),
		Voice: openai.AudioSpeechNewParamsVoice(s.voice),
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai speech: read body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("openai speech: empty audio response")
	}
	return audio, nil
}
