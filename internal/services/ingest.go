package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// ingestPipeline re-indexes one candidate's artifact: fetch from the
// artifact store, extract text, chunk, embed, replace the candidate's points
// in the retrieval index. It runs in the background and exposes the job
// status the upload workflow polls.
type ingestPipeline struct {
	store   ArtifactStore
	parser  PDFParserService
	chunker TextChunker
	gemini  GeminiService
	index   IndexService
	log     *zap.Logger

	mu        sync.Mutex
	jobStatus string
}

func newIngestPipeline(store ArtifactStore, parser PDFParserService, chunker TextChunker, gemini GeminiService, index IndexService, log *zap.Logger) *ingestPipeline {
	return &ingestPipeline{
		store:   store,
		parser:  parser,
		chunker: chunker,
		gemini:  gemini,
		index:   index,
		log:     log,
	}
}

// StartSync kicks off a re-index of the candidate's artifact and returns
// immediately. Only one job status is tracked; a new sync takes it over.
func (p *ingestPipeline) StartSync(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("email is required to start a sync")
	}

	p.setStatus(IngestStatusCreating)
	go p.run(email)
	return nil
}

// SyncStatus reports the tracked job. Before any job has run in this
// process, it falls back to the retrieval index's collection health, so a
// concurrently completed refresh still reads as AVAILABLE.
func (p *ingestPipeline) SyncStatus(ctx context.Context) (string, error) {
	p.mu.Lock()
	status := p.jobStatus
	p.mu.Unlock()

	if status != "" {
		return status, nil
	}
	return p.index.CollectionHealth(ctx)
}

func (p *ingestPipeline) run(email string) {
	// The job outlives the request that started it.
	ctx := context.Background()

	data, err := p.store.GetArtifact(ctx, ArtifactKey(email))
	if err != nil {
		p.fail(email, fmt.Errorf("failed to fetch artifact: %w", err))
		return
	}

	text, err := p.parser.ExtractText(data)
	if err != nil {
		p.fail(email, fmt.Errorf("failed to extract artifact text: %w", err))
		return
	}

	p.setStatus(IngestStatusUpdating)

	chunks := p.chunker.ChunkText(text, chunkSize, chunkOverlap)
	indexChunks := make([]IndexChunk, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := p.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			p.fail(email, fmt.Errorf("failed to embed chunk: %w", err))
			return
		}
		indexChunks = append(indexChunks, IndexChunk{Text: chunk, Embedding: embedding})
	}

	if err := p.index.ReplaceCandidateChunks(ctx, email, indexChunks); err != nil {
		p.fail(email, fmt.Errorf("failed to index chunks: %w", err))
		return
	}

	p.setStatus(IngestStatusAvailable)
	p.log.Info("sync completed", zap.String("email", email), zap.Int("chunks", len(indexChunks)))
}

func (p *ingestPipeline) fail(email string, err error) {
	p.log.Error("sync failed", zap.String("email", email), zap.Error(err))
	p.setStatus(IngestStatusFailed)
}

func (p *ingestPipeline) setStatus(status string) {
	p.mu.Lock()
	p.jobStatus = status
	p.mu.Unlock()
}
