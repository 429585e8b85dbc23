package server

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

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

// Server wires the interview pipeline behind the HTTP API.
type Server struct {
	cfg         *config.Config
	store       *session.Store
	normalizer  audio.Normalizer
	transcriber transcriber.Transcriber
	responder   *interviewer.Service
	synthesizer speech.Synthesizer
	quiz        *quiz.Service
	advice      *advice.Service
	roadmaps    roadmap.Loader
	metrics     *observe.Metrics

	// afterFunc schedules reply-audio deletion; replaced in tests.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

func New(
	cfg *config.Config,
	store *session.Store,
	normalizer audio.Normalizer,
	trans transcriber.Transcriber,
	responder *interviewer.Service,
	synthesizer speech.Synthesizer,
	quizSvc *quiz.Service,
	adviceSvc *advice.Service,
	roadmaps roadmap.Loader,
	metrics *observe.Metrics,
) *Server {
	return &Server{
		cfg:         cfg,
		store:       store,
		normalizer:  normalizer,
		transcriber: trans,
		responder:   responder,
		synthesizer: synthesizer,
		quiz:        quizSvc,
		advice:      adviceSvc,
		roadmaps:    roadmaps,
		metrics:     metrics,
		afterFunc:   time.AfterFunc,
	}
}

// Handler builds the full route table wrapped in CORS and metrics
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /config", s.handleConfig)
	mux.HandleFunc("POST /speak", s.handleSpeak)
	mux.HandleFunc("GET /audio/{filename}", s.handleAudio)
	mux.HandleFunc("GET /roadmaps/{role}", s.handleRoadmap)
	mux.HandleFunc("GET /generate_quiz", s.handleGenerateQuiz)
	mux.HandleFunc("POST /roadmap_quiz", s.handleRoadmapQuiz)
	mux.HandleFunc("POST /jobseeker_advice", s.handleJobseekerAdvice)
	mux.Handle("GET /static/welcoming/",
		http.StripPrefix("/static/welcoming/", http.FileServer(http.Dir(s.cfg.WelcomingDir))))
	mux.Handle("GET /metrics", promhttp.Handler())

	return corsMiddleware(observe.Middleware(s.metrics)(mux))
}

// SweepSessions drops expired sessions and deletes the reply-audio files
// they still held. Meant to be called periodically by the janitor.
func (s *Server) SweepSessions() {
	for _, name := range s.store.SweepExpired() {
		s.removeAudioFile(name)
	}
}

// scheduleAudioCleanup removes a reply-audio file once its retention window
// passes. The frontend fetches the file right after the upload response, so
// a short window is enough.
func (s *Server) scheduleAudioCleanup(filename string) {
	s.afterFunc(time.Duration(s.cfg.AudioRetentionSec)*time.Second, func() {
		s.removeAudioFile(filename)
	})
}

func (s *Server) removeAudioFile(filename string) {
	s.store.ForgetAudioFile(filename)
	path := filepath.Join(s.cfg.AudioDir, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove reply audio file", "path", path, "error", err)
	}
}
