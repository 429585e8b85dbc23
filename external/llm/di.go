package llm

import (
	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/llm"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (llm.Completer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewOpenAICompleter(cfg), nil
	})
}
