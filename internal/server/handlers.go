package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/miraihr/mirai/internal/audio"
	"github.com/miraihr/mirai/internal/interviewer"
	"github.com/miraihr/mirai/internal/session"
	"github.com/miraihr/mirai/internal/transcriber"
)

const defaultPosition = "Software Engineer"

// speakResponse is one completed interview turn.
type speakResponse struct {
	Transcription      string                 `json:"transcription"`
	AIResponse         string                 `json:"ai_response"`
	AudioURL           string                 `json:"audio_url"`
	Selesai            bool                   `json:"selesai"`
	Skor               *interviewer.Scorecard `json:"skor,omitempty"`
	EvaluasiTerperinci string                 `json:"evaluasi_terperinci,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConfig tells the frontend which providers are active so it can pick
// the matching welcome audio.
func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"transcription_service": s.cfg.TranscriptionService,
		"tts_service":           s.cfg.TTSService,
		"default_language":      s.cfg.DefaultLanguage,
	})
}

// handleSpeak runs one interview turn: uploaded audio is transcribed, the
// interviewer replies, and the reply is synthesized to an MP3 the client
// fetches via /audio/{filename}.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}
	position := r.URL.Query().Get("position")
	if position == "" {
		position = defaultPosition
	}
	interviewType := r.URL.Query().Get("interview_type")
	if interviewType == "" {
		interviewType = interviewer.DefaultInterviewType
	}
	language := r.URL.Query().Get("language")
	if language == "" {
		language = s.cfg.DefaultLanguage
	}

	if err := s.store.ClaimUpload(userID); err != nil {
		if errors.Is(err, session.ErrBusy) {
			writeError(w, http.StatusConflict, "previous upload is still being processed")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer s.store.ReleaseUpload(userID)

	clip, status, err := s.readClip(r, language)
	if err != nil {
		s.metrics.RecordSpeakRequest(ctx, interviewType, "rejected")
		writeError(w, status, err.Error())
		return
	}

	sttStart := time.Now()
	transcript, err := s.transcriber.Transcribe(ctx, *clip)
	s.metrics.STTDuration.Record(ctx, time.Since(sttStart).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, s.transcriber.Name(), "stt")
		s.metrics.RecordSpeakRequest(ctx, interviewType, "error")
		slog.Error("transcription failed", "user_id", userID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to transcribe audio")
		return
	}

	state := s.store.Snapshot(userID)
	llmStart := time.Now()
	reply, err := s.responder.Respond(ctx, interviewer.Request{
		Position:      position,
		InterviewType: interviewType,
		Transcript:    transcript,
		History:       state.History,
		QuestionIndex: state.QuestionIndex,
	})
	s.metrics.LLMDuration.Record(ctx, time.Since(llmStart).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, "openai", "llm")
		s.metrics.RecordSpeakRequest(ctx, interviewType, "error")
		slog.Error("interviewer response failed", "user_id", userID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate interviewer response")
		return
	}

	ttsStart := time.Now()
	replyAudio, err := s.synthesizer.Synthesize(ctx, reply.Message)
	s.metrics.TTSDuration.Record(ctx, time.Since(ttsStart).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, s.synthesizer.Name(), "tts")
		s.metrics.RecordSpeakRequest(ctx, interviewType, "error")
		slog.Error("speech synthesis failed", "user_id", userID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to synthesize reply audio")
		return
	}

	filename := s.store.NewAudioFilename(userID)
	if err := os.WriteFile(filepath.Join(s.cfg.AudioDir, filename), replyAudio, 0o644); err != nil {
		s.metrics.RecordSpeakRequest(ctx, interviewType, "error")
		slog.Error("failed to store reply audio", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store reply audio")
		return
	}
	s.scheduleAudioCleanup(filename)

	finished := s.responder.Finished(state.QuestionIndex)
	if finished {
		s.store.End(userID)
	} else {
		s.store.Advance(userID, transcript, reply.Message)
	}

	s.metrics.SpeakDuration.Record(ctx, time.Since(start).Seconds())
	s.metrics.RecordSpeakRequest(ctx, interviewType, "ok")

	writeJSON(w, http.StatusOK, speakResponse{
		Transcription:      transcript,
		AIResponse:         reply.Message,
		AudioURL:           "/audio/" + filename,
		Selesai:            finished,
		Skor:               reply.Scorecard,
		EvaluasiTerperinci: reply.DetailedEvaluation,
	})
}

// readClip extracts the uploaded audio from the multipart form and enforces
// the size and duration limits.
func (s *Server) readClip(r *http.Request, language string) (*transcriber.Clip, int, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("audio upload exceeds %d bytes", s.cfg.MaxUploadBytes)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("multipart field 'audio' is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("audio upload exceeds %d bytes", s.cfg.MaxUploadBytes)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("failed to read audio upload: %w", err)
	}
	if len(data) == 0 {
		return nil, http.StatusBadRequest, fmt.Errorf("audio upload is empty")
	}

	// Duration is only checkable for formats the normalizer understands;
	// compressed uploads are bounded by the byte limit alone.
	if norm, err := s.normalizer.Normalize(data); err == nil {
		maxDur := time.Duration(s.cfg.MaxAudioDurationSec) * time.Second
		if norm.Duration > maxDur {
			return nil, http.StatusBadRequest, fmt.Errorf("audio is longer than the %ds limit", s.cfg.MaxAudioDurationSec)
		}
	} else if !errors.Is(err, audio.ErrUnsupportedFormat) {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to decode audio upload: %w", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &transcriber.Clip{
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		Language:    language,
	}, 0, nil
}

// handleAudio serves a synthesized reply. Files are only handed to the
// session that produced them.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	filename := r.PathValue("filename")
	userID := r.URL.Query().Get("user_id")

	if userID == "" || !s.store.OwnsAudioFile(userID, filename) {
		writeError(w, http.StatusForbidden, "audio file does not belong to this session")
		return
	}

	f, err := os.Open(filepath.Join(s.cfg.AudioDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "audio file no longer exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to open audio file")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	if _, err := io.Copy(w, f); err != nil {
		slog.Warn("failed to stream audio file", "filename", filename, "error", err)
	}
}
