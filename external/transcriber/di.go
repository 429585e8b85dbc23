package transcriber

import (
	"fmt"

	"github.com/miraihr/mirai/internal/audio"
	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		cfg := do.MustInvoke[*config.Config](i)
		switch cfg.TranscriptionService {
		case config.TranscriberOpenAI:
			return NewOpenAIWhisperTranscriber(cfg), nil
		case config.TranscriberHuggingFace:
			return NewHuggingFaceTranscriber(cfg), nil
		case config.TranscriberGoogle:
			normalizer := do.MustInvoke[audio.Normalizer](i)
			return NewCloudSpeechTranscriber(cfg, normalizer), nil
		default:
			return nil, fmt.Errorf("unknown transcription service %q", cfg.TranscriptionService)
		}
	})
}
