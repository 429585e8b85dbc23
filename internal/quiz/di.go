package quiz

import (
	"github.com/miraihr/mirai/internal/llm"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		return NewService(do.MustInvoke[llm.Completer](i)), nil
	})
}
