package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestStore(expiry time.Duration) (*Store, *time.Time) {
	store := NewStore(expiry)
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	return store, &current
}

func TestClaimUpload_Exclusive(t *testing.T) {
	store, _ := newTestStore(time.Hour)

	if err := store.ClaimUpload("user-1"); err != nil {
		t.Fatalf("first claim should succeed, got %v", err)
	}
	if err := store.ClaimUpload("user-1"); !errors.Is(err, ErrBusy) {
		t.Fatalf("second claim should fail with ErrBusy, got %v", err)
	}
	if err := store.ClaimUpload("user-2"); err != nil {
		t.Fatalf("other users must not be blocked, got %v", err)
	}

	store.ReleaseUpload("user-1")
	if err := store.ClaimUpload("user-1"); err != nil {
		t.Fatalf("claim after release should succeed, got %v", err)
	}
}

func TestAdvanceAndSnapshot(t *testing.T) {
	store, _ := newTestStore(time.Hour)

	store.Advance("user-1", "Halo", "Halo! Ceritakan motivasimu.")
	store.Advance("user-1", "Saya suka membangun produk.", "Bagus. Pertanyaan berikutnya.")

	state := store.Snapshot("user-1")
	if state.QuestionIndex != 2 {
		t.Fatalf("unexpected question index: %d", state.QuestionIndex)
	}
	if len(state.History) != 2 {
		t.Fatalf("unexpected history length: %d", len(state.History))
	}
	if state.History[1].Candidate != "Saya suka membangun produk." {
		t.Fatalf("unexpected history entry: %+v", state.History[1])
	}

	// Mutating the snapshot must not leak into the store.
	state.History[0].Candidate = "mutated"
	if store.Snapshot("user-1").History[0].Candidate != "Halo" {
		t.Fatal("snapshot must be a copy")
	}
}

func TestSessionExpiresOnAccess(t *testing.T) {
	store, clock := newTestStore(time.Hour)

	store.Advance("user-1", "Halo", "Halo!")
	*clock = clock.Add(2 * time.Hour)

	state := store.Snapshot("user-1")
	if state.QuestionIndex != 0 || len(state.History) != 0 {
		t.Fatalf("expired session should reset, got %+v", state)
	}
}

func TestEndClearsInterviewState(t *testing.T) {
	store, _ := newTestStore(time.Hour)

	store.Advance("user-1", "Halo", "Halo!")
	name := store.NewAudioFilename("user-1")
	store.End("user-1")

	state := store.Snapshot("user-1")
	if state.QuestionIndex != 0 || len(state.History) != 0 {
		t.Fatalf("expected cleared state, got %+v", state)
	}
	if !store.OwnsAudioFile("user-1", name) {
		t.Fatal("audio ownership must survive End until retention removes it")
	}
}

func TestAudioFileOwnership(t *testing.T) {
	store, _ := newTestStore(time.Hour)

	name := store.NewAudioFilename("user-1")
	if !strings.HasPrefix(name, "temp_audio_user-1_") || !strings.HasSuffix(name, ".mp3") {
		t.Fatalf("unexpected filename shape: %q", name)
	}
	if !store.OwnsAudioFile("user-1", name) {
		t.Fatal("owner must be able to access the file")
	}
	if store.OwnsAudioFile("user-2", name) {
		t.Fatal("other users must not be able to access the file")
	}

	store.ForgetAudioFile(name)
	if store.OwnsAudioFile("user-1", name) {
		t.Fatal("forgotten files must no longer be served")
	}
}

func TestSweepExpired(t *testing.T) {
	store, clock := newTestStore(time.Hour)

	oldFile := store.NewAudioFilename("user-old")
	*clock = clock.Add(30 * time.Minute)
	store.NewAudioFilename("user-fresh")
	*clock = clock.Add(45 * time.Minute)

	orphaned := store.SweepExpired()
	if len(orphaned) != 1 || orphaned[0] != oldFile {
		t.Fatalf("unexpected orphaned files: %v", orphaned)
	}
	if store.OwnsAudioFile("user-old", oldFile) {
		t.Fatal("swept session must not retain file ownership")
	}
	if !store.OwnsAudioFile("user-fresh", storeFreshFile(store)) {
		t.Fatal("fresh session must survive the sweep")
	}
}

// storeFreshFile fetches the single filename registered for user-fresh.
func storeFreshFile(store *Store) string {
	store.mu.Lock()
	defer store.mu.Unlock()
	for name := range store.sessions["user-fresh"].audioFiles {
		return name
	}
	return ""
}
