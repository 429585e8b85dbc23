package interviewer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/miraihr/mirai/internal/llm"
)

type fakeCompleter struct {
	lastReq llm.Request
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.lastReq = req
	return f.reply, f.err
}

func testScript(t *testing.T) *Script {
	t.Helper()
	script, err := LoadScript(writeTestScript(t, testScriptYAML))
	if err != nil {
		t.Fatalf("failed to load test script: %v", err)
	}
	return script
}

func TestServiceRespond_OpeningTurn(t *testing.T) {
	completer := &fakeCompleter{reply: "Halo! Saya Mirai. Apa yang membuatmu tertarik melamar?"}
	svc := NewService(testScript(t), completer)

	reply, err := svc.Respond(context.Background(), Request{
		Position:      "Backend Developer",
		InterviewType: "hr",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Scorecard != nil {
		t.Fatalf("opening turn must not carry a scorecard: %+v", reply.Scorecard)
	}

	req := completer.lastReq
	if len(req.Messages) != 2 {
		t.Fatalf("expected system prompt and instruction only, got %d messages", len(req.Messages))
	}
	if !strings.Contains(req.Messages[0].Content, "Backend Developer") {
		t.Fatalf("system prompt should mention the position: %q", req.Messages[0].Content)
	}
	if !strings.Contains(req.Messages[1].Content, "awal wawancara") {
		t.Fatalf("expected opening instruction, got %q", req.Messages[1].Content)
	}
	if req.MaxTokens != questionMaxTokens {
		t.Fatalf("unexpected max tokens: %d", req.MaxTokens)
	}
}

func TestServiceRespond_MidInterviewCarriesHistory(t *testing.T) {
	completer := &fakeCompleter{reply: "Menarik. Bagaimana kamu menangani konflik di tim?"}
	svc := NewService(testScript(t), completer)

	_, err := svc.Respond(context.Background(), Request{
		Position:      "Backend Developer",
		InterviewType: "hr",
		Transcript:    "Saya termotivasi membangun produk yang berdampak.",
		History: []Exchange{
			{Candidate: "Halo", Interviewer: "Halo! Ceritakan motivasimu."},
		},
		QuestionIndex: 1,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req := completer.lastReq
	// system + 2 history + transcript + instruction
	if len(req.Messages) != 5 {
		t.Fatalf("unexpected message count: %d", len(req.Messages))
	}
	if req.Messages[1].Role != llm.RoleUser || req.Messages[2].Role != llm.RoleAssistant {
		t.Fatalf("history must alternate user/assistant, got %q/%q", req.Messages[1].Role, req.Messages[2].Role)
	}
	if req.Messages[3].Content != "Saya termotivasi membangun produk yang berdampak." {
		t.Fatalf("unexpected transcript message: %q", req.Messages[3].Content)
	}
	if !strings.Contains(req.Messages[4].Content, "kecocokan budaya") {
		t.Fatalf("expected second focus area in instruction, got %q", req.Messages[4].Content)
	}
}

func TestServiceRespond_EvaluationTurn(t *testing.T) {
	completer := &fakeCompleter{
		reply: `{"pesan": "Terima kasih!", "skor": {"motivasi": 80, "technical_skills": 70, "pengalaman_proyek": 75, "pemecahan_masalah": 85, "kecocokan_budaya": 90}, "evaluasi_terperinci": "Kandidat solid."}`,
	}
	svc := NewService(testScript(t), completer)

	reply, err := svc.Respond(context.Background(), Request{
		Position:      "Backend Developer",
		InterviewType: "hr",
		Transcript:    "Itu jawaban terakhir saya.",
		QuestionIndex: 2,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply.Scorecard == nil || reply.Scorecard.PemecahanMasalah != 85 {
		t.Fatalf("unexpected scorecard: %+v", reply.Scorecard)
	}
	if reply.DetailedEvaluation != "Kandidat solid." {
		t.Fatalf("unexpected evaluation: %q", reply.DetailedEvaluation)
	}

	req := completer.lastReq
	last := req.Messages[len(req.Messages)-1]
	if !strings.Contains(last.Content, "evaluasi_terperinci") {
		t.Fatalf("expected evaluation instruction, got %q", last.Content)
	}
	if req.MaxTokens != evaluationMaxTokens {
		t.Fatalf("unexpected max tokens for evaluation: %d", req.MaxTokens)
	}
}

func TestServiceRespond_CompleterError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("rate limited")}
	svc := NewService(testScript(t), completer)

	if _, err := svc.Respond(context.Background(), Request{Position: "QA"}); err == nil {
		t.Fatal("expected error from completer to propagate")
	}
}

func TestServiceFinished(t *testing.T) {
	svc := NewService(testScript(t), &fakeCompleter{})
	if svc.Finished(1) {
		t.Fatal("interview must not be finished before the question plan ends")
	}
	if !svc.Finished(2) {
		t.Fatal("interview must be finished once the question plan is exhausted")
	}
}
