package audio

import (
	"github.com/miraihr/mirai/internal/audio"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.Normalizer, error) {
		return NewPCMNormalizer(), nil
	})
}
