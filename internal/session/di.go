package session

import (
	"time"

	"github.com/miraihr/mirai/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewStore(time.Duration(cfg.SessionExpiryMin) * time.Minute), nil
	})
}
