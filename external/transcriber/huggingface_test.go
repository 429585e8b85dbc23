package transcriber

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/transcriber"
)

func newHFTranscriber(endpoint string) transcriber.Transcriber {
	return NewHuggingFaceTranscriber(&config.Config{
		HuggingFaceEndpoint: endpoint,
		HuggingFaceModel:    "openai/whisper-small",
		HuggingFaceToken:    "hf-test",
	})
}

func TestHuggingFaceTranscribe_Success(t *testing.T) {
	var gotAuth, gotContentType, gotPath string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" Halo, nama saya Budi. "}`))
	}))
	defer server.Close()

	text, err := newHFTranscriber(server.URL).Transcribe(context.Background(), transcriber.Clip{
		Data:        []byte("fake-audio"),
		ContentType: "audio/wav",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if text != "Halo, nama saya Budi." {
		t.Fatalf("unexpected transcription: %q", text)
	}
	if gotAuth != "Bearer hf-test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotContentType != "audio/wav" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	if gotPath != "/models/openai/whisper-small" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if string(gotBody) != "fake-audio" {
		t.Fatalf("unexpected body: %q", gotBody)
	}
}

func TestHuggingFaceTranscribe_ModelLoading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model openai/whisper-small is currently loading"}`))
	}))
	defer server.Close()

	_, err := newHFTranscriber(server.URL).Transcribe(context.Background(), transcriber.Clip{Data: []byte("x")})
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
}

func TestHuggingFaceTranscribe_EmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"   "}`))
	}))
	defer server.Close()

	_, err := newHFTranscriber(server.URL).Transcribe(context.Background(), transcriber.Clip{Data: []byte("x")})
	if err == nil {
		t.Fatal("expected error for empty transcription")
	}
}
