package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/miraihr/mirai/internal/interviewer"
)

// ErrBusy is returned when a user already has an upload in flight.
var ErrBusy = errors.New("an upload for this user is already being processed")

// State is a snapshot of one user's interview progress.
type State struct {
	History       []interviewer.Exchange
	QuestionIndex int
}

type session struct {
	history       []interviewer.Exchange
	questionIndex int
	audioFiles    map[string]struct{}
	lastSeen      time.Time
	uploading     bool
}

// Store keeps per-user interview sessions in memory. Sessions expire after
// the configured idle duration; an expired session is replaced by a fresh one
// on next access, so a returning user starts a new interview.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	expiry   time.Duration

	now func() time.Time
}

func NewStore(expiry time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*session),
		expiry:   expiry,
		now:      time.Now,
	}
}

func (s *Store) getLocked(userID string) *session {
	sess, ok := s.sessions[userID]
	if ok && s.now().Sub(sess.lastSeen) <= s.expiry {
		sess.lastSeen = s.now()
		return sess
	}
	sess = &session{
		audioFiles: make(map[string]struct{}),
		lastSeen:   s.now(),
	}
	s.sessions[userID] = sess
	return sess
}

// ClaimUpload marks the user's session as processing an upload. It fails
// with ErrBusy while a previous claim is still held, so concurrent uploads
// from the same user cannot interleave their history updates.
func (s *Store) ClaimUpload(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(userID)
	if sess.uploading {
		return ErrBusy
	}
	sess.uploading = true
	return nil
}

func (s *Store) ReleaseUpload(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		sess.uploading = false
	}
}

// Snapshot returns a copy of the user's interview state.
func (s *Store) Snapshot(userID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(userID)
	history := make([]interviewer.Exchange, len(sess.history))
	copy(history, sess.history)
	return State{History: history, QuestionIndex: sess.questionIndex}
}

// Advance records one completed question/answer round.
func (s *Store) Advance(userID, candidate, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getLocked(userID)
	sess.history = append(sess.history, interviewer.Exchange{
		Candidate:   candidate,
		Interviewer: reply,
	})
	sess.questionIndex++
}

// End drops the user's interview state after the closing evaluation. Audio
// files stay registered until their retention deletion fires.
func (s *Store) End(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return
	}
	sess.history = nil
	sess.questionIndex = 0
}

// NewAudioFilename registers a fresh reply-audio filename for the user and
// returns it. The random component keeps filenames unguessable.
func (s *Store) NewAudioFilename(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := fmt.Sprintf("temp_audio_%s_%s.mp3", userID, uuid.NewString())
	s.getLocked(userID).audioFiles[name] = struct{}{}
	return name
}

// OwnsAudioFile reports whether the given user's session registered the
// filename. Serving audio is gated on this so one user cannot fetch
// another's replies.
func (s *Store) OwnsAudioFile(userID, filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || s.now().Sub(sess.lastSeen) > s.expiry {
		return false
	}
	_, owned := sess.audioFiles[filename]
	return owned
}

// ForgetAudioFile removes a filename from whichever session registered it.
func (s *Store) ForgetAudioFile(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		delete(sess.audioFiles, filename)
	}
}

// SweepExpired removes idle sessions and returns the audio filenames they
// still held, so the caller can delete the files from disk.
func (s *Store) SweepExpired() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orphaned []string
	for userID, sess := range s.sessions {
		if s.now().Sub(sess.lastSeen) <= s.expiry {
			continue
		}
		for name := range sess.audioFiles {
			orphaned = append(orphaned, name)
		}
		delete(s.sessions, userID)
	}
	return orphaned
}
