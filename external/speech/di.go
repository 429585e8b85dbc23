package speech

import (
	"fmt"

	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/speech"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (speech.Synthesizer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		switch cfg.TTSService {
		case config.SpeechOpenAI:
			return NewOpenAITTS(cfg), nil
		case config.SpeechElevenLabs:
			return NewElevenLabsTTS(cfg), nil
		default:
			return nil, fmt.Errorf("unknown TTS service %q", cfg.TTSService)
		}
	})
}
