package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/miraihr/mirai/internal/advice"
	"github.com/miraihr/mirai/internal/audio"
	"github.com/miraihr/mirai/internal/config"
	"github.com/miraihr/mirai/internal/interviewer"
	"github.com/miraihr/mirai/internal/llm"
	"github.com/miraihr/mirai/internal/observe"
	"github.com/miraihr/mirai/internal/quiz"
	"github.com/miraihr/mirai/internal/roadmap"
	"github.com/miraihr/mirai/internal/session"
	"github.com/miraihr/mirai/internal/transcriber"
)

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Name() string { return "fake-stt" }

func (f *fakeTranscriber) Transcribe(context.Context, transcriber.Clip) (string, error) {
	return f.text, f.err
}

type fakeSynthesizer struct {
	audio []byte
	err   error
}

func (f *fakeSynthesizer) Name() string { return "fake-tts" }

func (f *fakeSynthesizer) Synthesize(context.Context, string) ([]byte, error) {
	return f.audio, f.err
}

type fakeNormalizer struct {
	duration time.Duration
	err      error
}

func (f *fakeNormalizer) Normalize([]byte) (*audio.Normalized, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &audio.Normalized{Duration: f.duration}, nil
}

type fakeCompleter struct {
	replies []string
	lastReq llm.Request
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "Baik, pertanyaan berikutnya.", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type fakeLoader struct {
	docs map[string]*roadmap.Document
}

func (f *fakeLoader) Load(role string) (*roadmap.Document, error) {
	doc, ok := f.docs[role]
	if !ok {
		return nil, roadmap.ErrNotFound
	}
	return doc, nil
}

type serverFixture struct {
	server    *Server
	handler   http.Handler
	store     *session.Store
	completer *fakeCompleter
	cfg       *config.Config
}

func interviewScript() *interviewer.Script {
	return &interviewer.Script{
		Interviewer:               interviewer.Persona{Name: "Mirai", Company: "PT Teknologi Nusantara"},
		QuestionsBeforeEvaluation: 2,
		Types: map[string]interviewer.TypeScript{
			"hr": {
				Description: "Wawancara HR umum.",
				FocusAreas: []interviewer.FocusArea{
					{Name: "motivasi", Title: "motivasi", Guidance: "Gali motivasi."},
					{Name: "budaya", Title: "budaya", Guidance: "Gali kecocokan budaya."},
				},
			},
		},
	}
}

func newFixture(t *testing.T) *serverFixture {
	t.Helper()

	cfg := &config.Config{
		Env:                  "test",
		TranscriptionService: config.TranscriberHuggingFace,
		TTSService:           config.SpeechOpenAI,
		DefaultLanguage:      "id",
		AudioDir:             t.TempDir(),
		WelcomingDir:         t.TempDir(),
		SessionExpiryMin:     60,
		AudioRetentionSec:    300,
		MaxUploadBytes:       1 << 20,
		MaxAudioDurationSec:  60,
	}

	completer := &fakeCompleter{}
	store := session.NewStore(time.Hour)

	metrics, err := observe.NewMetrics(sdkmetric.NewMeterProvider())
	if err != nil {
		t.Fatalf("failed to build metrics: %v", err)
	}

	srv := New(
		cfg,
		store,
		&fakeNormalizer{err: audio.ErrUnsupportedFormat},
		&fakeTranscriber{text: "Saya siap memulai."},
		interviewer.NewService(interviewScript(), completer),
		&fakeSynthesizer{audio: []byte("mp3-bytes")},
		quiz.NewService(completer),
		advice.NewService(completer),
		&fakeLoader{docs: map[string]*roadmap.Document{
			"frontend-developer": {
				Role: "frontend-developer",
				Topics: []roadmap.Topic{
					{Title: "Internet", Description: "Dasar jaringan."},
					{Title: "HTML", Description: "Struktur halaman."},
				},
			},
		}},
		metrics,
	)
	// Retention timers must not fire during tests.
	srv.afterFunc = func(time.Duration, func()) *time.Timer { return nil }

	return &serverFixture{
		server:    srv,
		handler:   srv.Handler(),
		store:     store,
		completer: completer,
		cfg:       cfg,
	}
}

func speakRequest(t *testing.T, query string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", "recording.webm")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	if _, err := fw.Write([]byte("fake-audio")); err != nil {
		t.Fatalf("failed to write multipart body: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/speak?"+query, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeSpeak(t *testing.T, rec *httptest.ResponseRecorder) speakResponse {
	t.Helper()
	var resp speakResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestSpeak_FirstTurn(t *testing.T) {
	fx := newFixture(t)
	fx.completer.replies = []string{"Halo! Ceritakan motivasimu."}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, speakRequest(t, "user_id=user-1&position=Backend+Developer"))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSpeak(t, rec)
	if resp.Transcription != "Saya siap memulai." {
		t.Fatalf("unexpected transcription: %q", resp.Transcription)
	}
	if resp.AIResponse != "Halo! Ceritakan motivasimu." {
		t.Fatalf("unexpected reply: %q", resp.AIResponse)
	}
	if !strings.HasPrefix(resp.AudioURL, "/audio/temp_audio_user-1_") {
		t.Fatalf("unexpected audio url: %q", resp.AudioURL)
	}
	if resp.Selesai || resp.Skor != nil {
		t.Fatalf("first turn must not be final: %+v", resp)
	}

	saved, err := os.ReadFile(filepath.Join(fx.cfg.AudioDir, strings.TrimPrefix(resp.AudioURL, "/audio/")))
	if err != nil {
		t.Fatalf("reply audio was not stored: %v", err)
	}
	if string(saved) != "mp3-bytes" {
		t.Fatalf("unexpected stored audio: %q", saved)
	}

	if fx.store.Snapshot("user-1").QuestionIndex != 1 {
		t.Fatal("history must advance after a successful turn")
	}
}

func TestSpeak_EvaluationTurn(t *testing.T) {
	fx := newFixture(t)
	fx.store.Advance("user-1", "a", "b")
	fx.store.Advance("user-1", "c", "d")
	fx.completer.replies = []string{
		`{"pesan": "Terima kasih!", "skor": {"motivasi": 80, "technical_skills": 70, "pengalaman_proyek": 75, "pemecahan_masalah": 85, "kecocokan_budaya": 90}, "evaluasi_terperinci": "Solid."}`,
	}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, speakRequest(t, "user_id=user-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeSpeak(t, rec)
	if !resp.Selesai {
		t.Fatal("expected final turn")
	}
	if resp.Skor == nil || resp.Skor.Motivasi != 80 {
		t.Fatalf("unexpected scorecard: %+v", resp.Skor)
	}
	if resp.EvaluasiTerperinci != "Solid." {
		t.Fatalf("unexpected evaluation: %q", resp.EvaluasiTerperinci)
	}

	if fx.store.Snapshot("user-1").QuestionIndex != 0 {
		t.Fatal("session must reset after the evaluation")
	}
}

func TestSpeak_MissingUserID(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, speakRequest(t, "position=QA"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSpeak_MissingAudioField(t *testing.T) {
	fx := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/speak?user_id=user-1", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSpeak_ConcurrentUploadRejected(t *testing.T) {
	fx := newFixture(t)
	if err := fx.store.ClaimUpload("user-1"); err != nil {
		t.Fatalf("setup claim failed: %v", err)
	}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, speakRequest(t, "user_id=user-1"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestSpeak_TooLongAudio(t *testing.T) {
	fx := newFixture(t)
	fx.server.normalizer = &fakeNormalizer{duration: 2 * time.Minute}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, speakRequest(t, "user_id=user-1"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "longer") {
		t.Fatalf("expected duration error, got %s", rec.Body.String())
	}
}

func TestSpeak_TranscriberFailure(t *testing.T) {
	fx := newFixture(t)
	fx.server.transcriber = &fakeTranscriber{err: errors.New("model offline")}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, speakRequest(t, "user_id=user-1"))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if fx.store.Snapshot("user-1").QuestionIndex != 0 {
		t.Fatal("failed turn must not advance the interview")
	}
	if err := fx.store.ClaimUpload("user-1"); err != nil {
		t.Fatalf("upload claim must be released after failure: %v", err)
	}
}

func TestAudio_OwnershipGuard(t *testing.T) {
	fx := newFixture(t)
	name := fx.store.NewAudioFilename("user-1")
	path := filepath.Join(fx.cfg.AudioDir, name)
	if err := os.WriteFile(path, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("failed to write audio file: %v", err)
	}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/"+name+"?user_id=user-2", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign session, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/"+name, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without user_id, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/"+name+"?user_id=user-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("unexpected content type: %q", ct)
	}
	if body, _ := io.ReadAll(rec.Body); string(body) != "mp3" {
		t.Fatalf("unexpected body: %q", body)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove audio file: %v", err)
	}
	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/audio/"+name+"?user_id=user-1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted file, got %d", rec.Code)
	}
}

func TestConfigEndpoint(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/config", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["tts_service"] != config.SpeechOpenAI || resp["transcription_service"] != config.TranscriberHuggingFace {
		t.Fatalf("unexpected config payload: %+v", resp)
	}
}

func TestRoadmapEndpoint(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roadmaps/frontend-developer", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Internet") || strings.Index(body, "Internet") > strings.Index(body, "HTML") {
		t.Fatalf("topics missing or out of order: %s", body)
	}

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roadmaps/devops", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown role, got %d", rec.Code)
	}
}

func TestGenerateQuizEndpoint(t *testing.T) {
	fx := newFixture(t)
	fx.completer.replies = []string{
		`{"quiz": [{"question": "Apa itu HTTP?", "options": ["Protokol", "Bahasa"], "answer": "Protokol"}]}`,
	}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate_quiz?position=Backend", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp quiz.Quiz
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Quiz) != 1 || resp.Quiz[0].Answer != "Protokol" {
		t.Fatalf("unexpected quiz payload: %+v", resp)
	}
}

func TestRoadmapQuizEndpoint(t *testing.T) {
	fx := newFixture(t)
	fx.completer.replies = []string{
		`{"question": "Apa itu DNS?", "options": ["Penerjemah nama domain", "Protokol email", "Bahasa markup", "Server web"], "answer": "Penerjemah nama domain"}`,
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/roadmap_quiz", strings.NewReader(`{"title": "DNS", "description": "Sistem penamaan domain."}`))
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp quiz.Question
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Question != "Apa itu DNS?" || resp.Answer != "Penerjemah nama domain" {
		t.Fatalf("unexpected question payload: %+v", resp)
	}
}

func TestRoadmapQuizEndpoint_RequiresTitle(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/roadmap_quiz", strings.NewReader(`{"description": "tanpa judul"}`))
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func adviceRequest(t *testing.T, query, jsonFile string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if jsonFile != "" {
		fw, err := mw.CreateFormFile("json_file", "wordcloud.json")
		if err != nil {
			t.Fatalf("failed to build multipart body: %v", err)
		}
		if _, err := fw.Write([]byte(jsonFile)); err != nil {
			t.Fatalf("failed to write multipart body: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/jobseeker_advice?"+query, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestJobseekerAdviceEndpoint(t *testing.T) {
	fx := newFixture(t)
	fx.completer.replies = []string{
		"Kuasai Kubernetes dan Go.\n\nTonjolkan proyek cloud.\n\nLatih studi kasus arsitektur.\n\nJangan abaikan soft skills.\n\nIkuti komunitas lokal.",
	}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, adviceRequest(t, "job_title=Backend+Developer",
		`{"wordcloud_data": {"Kubernetes": 90, "Go": 80}}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Advice advice.Advice `json:"advice"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Advice.TechnicalSkills != "Kuasai Kubernetes dan Go." {
		t.Fatalf("unexpected technical skills: %q", resp.Advice.TechnicalSkills)
	}
	if resp.Advice.CareerGrowthTips != "Ikuti komunitas lokal." {
		t.Fatalf("unexpected growth tips: %q", resp.Advice.CareerGrowthTips)
	}

	prompt := fx.completer.lastReq.Messages[0].Content
	if !strings.Contains(prompt, "Kubernetes, Go") {
		t.Fatalf("uploaded skills should reach the prompt heaviest first: %q", prompt)
	}
	if !strings.Contains(prompt, "Backend Developer") {
		t.Fatalf("job title should reach the prompt: %q", prompt)
	}
}

func TestJobseekerAdviceEndpoint_MissingWordCloud(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, adviceRequest(t, "job_title=QA", `{"skills": {"Go": 1}}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "'wordcloud_data' missing") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestJobseekerAdviceEndpoint_MissingFile(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, adviceRequest(t, "job_title=QA", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "json_file") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestJobseekerAdviceEndpoint_MissingJobTitle(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, adviceRequest(t, "", `{"wordcloud_data": {"Go": 1}}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "job_title") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestJobseekerAdviceEndpoint_MalformedJSONFile(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, adviceRequest(t, "job_title=QA", `{not json`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed to parse") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestHealthzAndCORS(t *testing.T) {
	fx := newFixture(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS header on responses")
	}

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/speak", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
}

func TestSweepSessions_RemovesOrphanedAudio(t *testing.T) {
	fx := newFixture(t)

	store := session.NewStore(0)
	fx.server.store = store
	name := store.NewAudioFilename("user-1")
	path := filepath.Join(fx.cfg.AudioDir, name)
	if err := os.WriteFile(path, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("failed to write audio file: %v", err)
	}

	// Zero expiry makes every session stale immediately.
	time.Sleep(time.Millisecond)
	fx.server.SweepSessions()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected orphaned file to be deleted, stat err: %v", err)
	}
}
