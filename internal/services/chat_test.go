package services

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"elev8ai/assessment-api/internal/models"
)

func TestAskAppendsTurnToHistory(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeArtifactStore(`{"areas":[]}`)
	kb := &fakeKnowledgeBase{response: "You scored well."}

	svc := NewChatService(repo, store, kb, zap.NewNop())

	resp, err := svc.Ask(context.Background(), "a@x.com", "how did I do?")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if resp.Answer != "You scored well." {
		t.Fatalf("unexpected answer %q", resp.Answer)
	}

	record, err := repo.FindByEmail("a@x.com")
	if err != nil {
		t.Fatalf("record not stored: %v", err)
	}
	if len(record.ChatHistory) != 1 {
		t.Fatalf("expected one stored turn, got %d", len(record.ChatHistory))
	}
	turn := record.ChatHistory[0]
	if turn.Question != "how did I do?" || turn.Answer != "You scored well." {
		t.Fatalf("unexpected stored turn %+v", turn)
	}
	if turn.Timestamp == 0 {
		t.Fatalf("expected timestamp on stored turn")
	}
}

func TestAskUsesPriorHistoryInContext(t *testing.T) {
	repo := newFakeRepo()
	repo.records["a@x.com"] = &models.CandidateRecord{
		Email: "a@x.com",
		ChatHistory: models.ChatTurns{
			{Question: "earlier question", Answer: "earlier answer"},
		},
	}
	store := newFakeArtifactStore(`{"areas":[]}`)
	kb := &fakeKnowledgeBase{response: "ok"}

	svc := NewChatService(repo, store, kb, zap.NewNop())

	resp, err := svc.Ask(context.Background(), "a@x.com", "follow up")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if !strings.Contains(resp.Context, "Q: earlier question") {
		t.Fatalf("expected prior turn in context, got %q", resp.Context)
	}
	if !strings.Contains(resp.Context, "Current question: follow up") {
		t.Fatalf("expected current question in context, got %q", resp.Context)
	}
}

func TestAskDegradesToNoHistoryOnStoreError(t *testing.T) {
	repo := newFakeRepo()
	repo.failAll = true
	store := newFakeArtifactStore(`{"areas":[]}`)
	kb := &fakeKnowledgeBase{response: "ok"}

	svc := NewChatService(repo, store, kb, zap.NewNop())

	// History fetch fails, the turn store also fails, so Ask errors, but
	// the generation call must still have happened with an empty context.
	_, err := svc.Ask(context.Background(), "a@x.com", "question")
	if err == nil {
		t.Fatalf("expected store error to surface")
	}
	if len(kb.prompts) != 1 {
		t.Fatalf("expected a generation call despite history failure, got %d", len(kb.prompts))
	}
	if !strings.Contains(kb.prompts[0], "Current question: question") {
		t.Fatalf("expected bare current-question context, got %q", kb.prompts[0])
	}
}

func TestAskSearchesSharedKnowledgeBase(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeArtifactStore(`{"areas":[]}`)
	kb := &fakeKnowledgeBase{response: "ok"}

	svc := NewChatService(repo, store, kb, zap.NewNop())

	if _, err := svc.Ask(context.Background(), "a@x.com", "question"); err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if kb.emailFilters[0] != "" {
		t.Fatalf("chat retrieval must not be filtered to the candidate, got %q", kb.emailFilters[0])
	}
}

func TestAskPromptNeverExceedsCap(t *testing.T) {
	repo := newFakeRepo()
	store := newFakeArtifactStore(strings.Repeat(`{"k":"v"}`, 10000))
	kb := &fakeKnowledgeBase{response: "ok"}

	svc := NewChatService(repo, store, kb, zap.NewNop())

	if _, err := svc.Ask(context.Background(), "a@x.com", strings.Repeat("q", 30000)); err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if len(kb.prompts[0]) > maxPromptLength {
		t.Fatalf("prompt length %d exceeds cap", len(kb.prompts[0]))
	}
}
