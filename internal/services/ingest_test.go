package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitForStatus(t *testing.T, p *ingestPipeline, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, err := p.SyncStatus(context.Background())
		if err != nil {
			t.Fatalf("SyncStatus returned error: %v", err)
		}
		if status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	status, _ := p.SyncStatus(context.Background())
	t.Fatalf("timed out waiting for status %q, last was %q", want, status)
}

func TestStartSyncFailsOnUnreadableArtifact(t *testing.T) {
	store := newFakeArtifactStore("")
	store.objects[ArtifactKey("a@x.com")] = []byte("this is not a pdf")

	p := newIngestPipeline(store, NewPDFParserService(), NewTextChunker(), &fakeGemini{}, newFakeIndex(), zap.NewNop())

	if err := p.StartSync(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("StartSync returned error: %v", err)
	}

	waitForStatus(t, p, IngestStatusFailed)
}

func TestStartSyncFailsOnMissingArtifact(t *testing.T) {
	store := newFakeArtifactStore("")

	p := newIngestPipeline(store, NewPDFParserService(), NewTextChunker(), &fakeGemini{}, newFakeIndex(), zap.NewNop())

	if err := p.StartSync(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("StartSync returned error: %v", err)
	}

	waitForStatus(t, p, IngestStatusFailed)
}

func TestStartSyncRequiresEmail(t *testing.T) {
	p := newIngestPipeline(newFakeArtifactStore(""), NewPDFParserService(), NewTextChunker(), &fakeGemini{}, newFakeIndex(), zap.NewNop())

	if err := p.StartSync(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty email")
	}
}

func TestSyncStatusFallsBackToCollectionHealth(t *testing.T) {
	index := newFakeIndex()
	index.health = IngestStatusAvailable

	p := newIngestPipeline(newFakeArtifactStore(""), NewPDFParserService(), NewTextChunker(), &fakeGemini{}, index, zap.NewNop())

	status, err := p.SyncStatus(context.Background())
	if err != nil {
		t.Fatalf("SyncStatus returned error: %v", err)
	}
	if status != IngestStatusAvailable {
		t.Fatalf("expected collection health fallback, got %q", status)
	}
}
