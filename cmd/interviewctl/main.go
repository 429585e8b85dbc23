// interviewctl runs one interview turn against a running backend from the
// command line: it uploads a recorded answer file as if it came from a
// microphone and writes the interviewer's spoken reply to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/miraihr/mirai/pkg/client"
)

const turnTimeout = 3 * time.Minute

// fileRecorder satisfies the recorder port with a pre-recorded answer file.
type fileRecorder struct {
	path string
}

func (f *fileRecorder) Start(_ context.Context, deviceID string) error {
	slog.Info("recording started", "device", deviceID, "file", f.path)
	return nil
}

func (f *fileRecorder) Stop(context.Context) ([]byte, error) {
	return os.ReadFile(f.path)
}

// fileLister exposes the answer file as the only "microphone".
type fileLister struct {
	path string
}

func (f *fileLister) ListMicrophones(context.Context) ([]client.Device, error) {
	return []client.Device{{ID: "file:" + f.path, Label: f.path}}, nil
}

// filePlayer writes played audio to disk instead of an audio device.
type filePlayer struct {
	out    string
	played int
}

func (f *filePlayer) Play(_ context.Context, audio []byte) error {
	f.played++
	path := f.out
	if f.played > 1 {
		path = fmt.Sprintf("%s.%d", f.out, f.played)
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return err
	}
	slog.Info("reply audio written", "path", path, "bytes", len(audio))
	return nil
}

func main() {
	serverURL := flag.String("server", "http://localhost:8000", "backend base URL")
	userID := flag.String("user", "", "user id (random when empty)")
	position := flag.String("position", "Software Engineer", "position being interviewed for")
	interviewType := flag.String("type", "hr", "interview type (hr or tech)")
	audioPath := flag.String("audio", "", "path to the recorded answer (required)")
	outPath := flag.String("out", "reply.mp3", "where to write the interviewer's reply audio")
	welcome := flag.Bool("welcome", false, "play the welcome clip before the turn")
	flag.Parse()

	if *audioPath == "" {
		fmt.Fprintln(os.Stderr, "usage: interviewctl -audio answer.webm [-server URL] [-user ID] [-position P] [-type hr|tech]")
		os.Exit(2)
	}
	if *userID == "" {
		*userID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	sess := client.NewInterviewSession(
		client.New(*serverURL),
		&fileLister{path: *audioPath},
		&fileRecorder{path: *audioPath},
		&filePlayer{out: *outPath},
		*userID, *position, *interviewType,
	)

	if _, err := sess.ListMicrophones(ctx); err != nil {
		slog.Error("no input available", "error", err)
		os.Exit(1)
	}

	if *welcome {
		if err := sess.PlayWelcomeAudio(ctx); err != nil {
			slog.Warn("welcome audio unavailable", "error", err)
		}
	}

	if err := sess.StartRecording(ctx); err != nil {
		slog.Error("failed to start recording", "error", err)
		os.Exit(1)
	}
	if err := sess.StopRecording(ctx); err != nil {
		slog.Error("interview turn failed", "error", err)
		os.Exit(1)
	}

	result := sess.LastResult()
	fmt.Printf("You said:    %s\n", result.Transcription)
	fmt.Printf("Interviewer: %s\n", result.AIResponse)
	if result.Skor != nil {
		fmt.Printf("Scores: motivasi=%d technical=%d proyek=%d problem_solving=%d budaya=%d\n",
			result.Skor.Motivasi, result.Skor.TechnicalSkills, result.Skor.PengalamanProyek,
			result.Skor.PemecahanMasalah, result.Skor.KecocokanBudaya)
	}
	if result.EvaluasiTerperinci != "" {
		fmt.Printf("\n%s\n", result.EvaluasiTerperinci)
	}
}
