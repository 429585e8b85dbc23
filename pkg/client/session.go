package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// State is the interview session's position in the record / upload / playback
// loop.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateUploading
	StatePlayingReply
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateUploading:
		return "uploading"
	case StatePlayingReply:
		return "playing_reply"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Device is a capture device offered by the host.
type Device struct {
	ID    string
	Label string
}

// DeviceLister enumerates available microphones.
type DeviceLister interface {
	ListMicrophones(ctx context.Context) ([]Device, error)
}

// Recorder captures audio from one device. Stop returns the encoded clip.
type Recorder interface {
	Start(ctx context.Context, deviceID string) error
	Stop(ctx context.Context) ([]byte, error)
}

// Player plays an audio clip and blocks until playback finishes.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// ErrNoMicrophone is returned when the host offers no capture devices.
var ErrNoMicrophone = errors.New("no microphone available")

// InterviewSession drives one user's interview loop against the backend.
// All methods are safe for concurrent use; blocking work (recording, upload,
// playback) happens outside the lock so state queries never stall.
type InterviewSession struct {
	client   *Client
	lister   DeviceLister
	recorder Recorder
	player   Player

	userID        string
	position      string
	interviewType string

	mu             sync.Mutex
	state          State
	device         *Device
	welcomePlaying bool
	lastResult     *SpeakResult
	lastErr        error
}

func NewInterviewSession(c *Client, lister DeviceLister, recorder Recorder, player Player, userID, position, interviewType string) *InterviewSession {
	return &InterviewSession{
		client:        c,
		lister:        lister,
		recorder:      recorder,
		player:        player,
		userID:        userID,
		position:      position,
		interviewType: interviewType,
	}
}

func (s *InterviewSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error from the most recent failed operation, if any.
func (s *InterviewSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// LastResult returns the most recent successful interview turn.
func (s *InterviewSession) LastResult() *SpeakResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Microphone returns the currently selected capture device.
func (s *InterviewSession) Microphone() *Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// ListMicrophones enumerates capture devices and selects the first one.
func (s *InterviewSession) ListMicrophones(ctx context.Context) ([]Device, error) {
	devices, err := s.lister.ListMicrophones(ctx)
	if err != nil {
		return nil, s.fail(fmt.Errorf("list microphones: %w", err))
	}
	if len(devices) == 0 {
		return nil, s.fail(ErrNoMicrophone)
	}

	s.mu.Lock()
	s.device = &devices[0]
	s.mu.Unlock()
	return devices, nil
}

// StartRecording begins capturing the user's answer. It is only allowed
// while idle and not during welcome playback.
func (s *InterviewSession) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot start recording while %s", state)
	}
	if s.welcomePlaying {
		s.mu.Unlock()
		return errors.New("cannot start recording during welcome playback")
	}
	if s.device == nil {
		s.mu.Unlock()
		return ErrNoMicrophone
	}
	deviceID := s.device.ID
	s.state = StateRecording
	s.mu.Unlock()

	if err := s.recorder.Start(ctx, deviceID); err != nil {
		s.mu.Lock()
		s.state = StateIdle
		s.lastErr = err
		s.mu.Unlock()
		return fmt.Errorf("start recording: %w", err)
	}
	return nil
}

// StopRecording ends the capture and runs the rest of the turn: the clip is
// uploaded, the interviewer's reply is fetched and played, and the session
// returns to idle. On any failure the session goes idle with Err set and the
// previous turn's result untouched.
func (s *InterviewSession) StopRecording(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRecording {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot stop recording while %s", state)
	}
	s.state = StateUploading
	s.mu.Unlock()

	clip, err := s.recorder.Stop(ctx)
	if err != nil {
		return s.fail(fmt.Errorf("stop recording: %w", err))
	}

	result, err := s.client.Speak(ctx, SpeakParams{
		UserID:        s.userID,
		Position:      s.position,
		InterviewType: s.interviewType,
		Audio:         clip,
		Filename:      "answer.webm",
		ContentType:   "audio/webm",
	})
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.lastResult = result
	s.lastErr = nil
	s.state = StatePlayingReply
	s.mu.Unlock()

	replyAudio, err := s.client.FetchAudio(ctx, result.AudioURL, s.userID)
	if err != nil {
		return s.fail(err)
	}
	if err := s.player.Play(ctx, replyAudio); err != nil {
		return s.fail(fmt.Errorf("play reply: %w", err))
	}

	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
	return nil
}

// PlayWelcomeAudio fetches and plays the greeting clip matching the active
// TTS provider. Recording stays disabled until playback ends. Failures are
// logged and surfaced but leave the session usable.
func (s *InterviewSession) PlayWelcomeAudio(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle || s.welcomePlaying {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot play welcome audio while %s", state)
	}
	s.welcomePlaying = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.welcomePlaying = false
		s.mu.Unlock()
	}()

	cfg, err := s.client.FetchConfig(ctx)
	if err != nil {
		slog.Warn("welcome audio skipped", "error", err)
		return s.fail(err)
	}
	clip, err := s.client.FetchWelcomeAudio(ctx, s.interviewType, cfg.TTSService)
	if err != nil {
		slog.Warn("welcome audio skipped", "error", err)
		return s.fail(err)
	}
	if err := s.player.Play(ctx, clip); err != nil {
		slog.Warn("welcome audio playback failed", "error", err)
		return s.fail(err)
	}
	return nil
}

// fail parks the session back in idle and records the error.
func (s *InterviewSession) fail(err error) error {
	s.mu.Lock()
	s.state = StateIdle
	s.lastErr = err
	s.mu.Unlock()
	return err
}
