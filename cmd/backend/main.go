package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"

	audioimpl "github.com/miraihr/mirai/external/audio"
	configloader "github.com/miraihr/mirai/external/config"
	llmimpl "github.com/miraihr/mirai/external/llm"
	roadmapimpl "github.com/miraihr/mirai/external/roadmap"
	speechimpl "github.com/miraihr/mirai/external/speech"
	transcriberimpl "github.com/miraihr/mirai/external/transcriber"
	"github.com/miraihr/mirai/internal/advice"
	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/interviewer"
	"github.com/miraihr/mirai/internal/observe"
	"github.com/miraihr/mirai/internal/quiz"
	"github.com/miraihr/mirai/internal/server"
	"github.com/miraihr/mirai/internal/session"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = 5 * time.Minute
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env,
		"transcription_service", cfg.TranscriptionService, "tts_service", cfg.TTSService)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching http server", "addr", cfg.BindAddr)
	run(cfg, injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	audioimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	llmimpl.RegisterDI(injector)
	speechimpl.RegisterDI(injector)
	roadmapimpl.RegisterDI(injector)
	interviewer.RegisterDI(injector)
	quiz.RegisterDI(injector)
	advice.RegisterDI(injector)
	session.RegisterDI(injector)
	server.RegisterDI(injector)

	return injector
}

func run(cfg *config.Config, injector do.Injector) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "mirai"})
	if err != nil {
		slog.Error("failed to init metrics provider", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			slog.Error("metrics shutdown failed", "error", err)
		}
	}()

	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		slog.Error("failed to create audio directory", "dir", cfg.AudioDir, "error", err)
		os.Exit(1)
	}

	srv, err := do.Invoke[*server.Server](injector)
	if err != nil {
		slog.Error("failed to resolve server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: srv.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("startup: http server listening", "addr", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(janitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				srv.SweepSessions()
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
