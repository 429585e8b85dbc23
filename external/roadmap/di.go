package roadmap

import (
	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/roadmap"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (roadmap.Loader, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewFSLoader(cfg.RoadmapDir), nil
	})
}
