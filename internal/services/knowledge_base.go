package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// SearchResultsPlaceholder marks where retrieved knowledge is substituted
// into a prompt template. Prompts without it get the knowledge appended.
const SearchResultsPlaceholder = "$search_results$"

const retrievalLimit = 10

// KnowledgeBase is the retrieval-generation capability: grounded text
// generation over previously ingested documents, plus the asynchronous
// re-index operation and its status query.
type KnowledgeBase interface {
	// RetrieveAndGenerate retrieves content matching query (scoped to one
	// candidate when emailFilter is set), grounds prompt with it, and
	// returns the generated text.
	RetrieveAndGenerate(ctx context.Context, prompt, query, emailFilter string) (string, error)
	StartSync(ctx context.Context, email string) error
	SyncStatus(ctx context.Context) (string, error)
}

type knowledgeBase struct {
	gemini   GeminiService
	index    IndexService
	pipeline *ingestPipeline
	log      *zap.Logger
}

func NewKnowledgeBase(store ArtifactStore, parser PDFParserService, chunker TextChunker, gemini GeminiService, index IndexService, log *zap.Logger) KnowledgeBase {
	return &knowledgeBase{
		gemini:   gemini,
		index:    index,
		pipeline: newIngestPipeline(store, parser, chunker, gemini, index, log),
		log:      log,
	}
}

// RetrieveAndGenerate implements KnowledgeBase.
func (kb *knowledgeBase) RetrieveAndGenerate(ctx context.Context, prompt, query, emailFilter string) (string, error) {
	embedding, err := kb.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed retrieval query: %w", err)
	}

	results, err := kb.index.Search(ctx, embedding, emailFilter, retrievalLimit)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve knowledge: %w", err)
	}

	knowledge := renderSearchResults(results)

	var full string
	if strings.Contains(prompt, SearchResultsPlaceholder) {
		full = strings.ReplaceAll(prompt, SearchResultsPlaceholder, knowledge)
	} else {
		full = prompt + "\n\nRetrieved Knowledge:\n" + knowledge
	}

	kb.log.Debug("retrieve and generate",
		zap.Int("results", len(results)),
		zap.Int("prompt_length", len(full)),
		zap.String("email_filter", emailFilter))

	output, err := kb.gemini.GenerateText(ctx, full, 0.3)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// StartSync implements KnowledgeBase.
func (kb *knowledgeBase) StartSync(ctx context.Context, email string) error {
	return kb.pipeline.StartSync(ctx, email)
}

// SyncStatus implements KnowledgeBase.
func (kb *knowledgeBase) SyncStatus(ctx context.Context) (string, error) {
	return kb.pipeline.SyncStatus(ctx)
}

func renderSearchResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No relevant content found."
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Result %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
