package server

import (
	"github.com/samber/do/v2"

	"github.com/miraihr/mirai/internal/advice"
	"github.com/miraihr/mirai/internal/audio"
	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/interviewer"
	"github.com/miraihr/mirai/internal/observe"
	"github.com/miraihr/mirai/internal/quiz"
	"github.com/miraihr/mirai/internal/roadmap"
	"github.com/miraihr/mirai/internal/session"
	"github.com/miraihr/mirai/internal/speech"
	"github.com/miraihr/mirai/internal/transcriber"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		return New(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*session.Store](i),
			do.MustInvoke[audio.Normalizer](i),
			do.MustInvoke[transcriber.Transcriber](i),
			do.MustInvoke[*interviewer.Service](i),
			do.MustInvoke[speech.Synthesizer](i),
			do.MustInvoke[*quiz.Service](i),
			do.MustInvoke[*advice.Service](i),
			do.MustInvoke[roadmap.Loader](i),
			observe.DefaultMetrics(),
		), nil
	})
}
