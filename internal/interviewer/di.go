package interviewer

import (
	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/llm"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Script, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return LoadScript(cfg.InterviewScriptPath)
	})
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		return NewService(
			do.MustInvoke[*Script](i),
			do.MustInvoke[llm.Completer](i),
		), nil
	})
}
