package services

import (
	"context"
	"fmt"
	"sync"

	"elev8ai/assessment-api/internal/models"
	"elev8ai/assessment-api/internal/repositories"
)

type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*models.CandidateRecord
	failAll bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*models.CandidateRecord)}
}

func (r *fakeRepo) FindByEmail(email string) (*models.CandidateRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	record, ok := r.records[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeRepo) UpsertStatus(email string, status models.SyncStatus, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return fmt.Errorf("store unavailable")
	}
	record := r.getOrCreate(email)
	record.Status = status
	record.ErrorMessage = errorMessage
	return nil
}

func (r *fakeRepo) UpsertSummary(email string, summaryJSON string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return fmt.Errorf("store unavailable")
	}
	r.getOrCreate(email).SummaryJSON = summaryJSON
	return nil
}

func (r *fakeRepo) AppendChatTurn(email string, turn models.ChatTurn) (*models.ChatTurn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	record := r.getOrCreate(email)
	record.ChatHistory = append(record.ChatHistory, turn)
	stored := record.ChatHistory[len(record.ChatHistory)-1]
	return &stored, nil
}

func (r *fakeRepo) ListEmails() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll {
		return nil, fmt.Errorf("store unavailable")
	}
	var emails []string
	for email := range r.records {
		emails = append(emails, email)
	}
	return emails, nil
}

func (r *fakeRepo) getOrCreate(email string) *models.CandidateRecord {
	record, ok := r.records[email]
	if !ok {
		record = &models.CandidateRecord{Email: email}
		r.records[email] = record
	}
	return record
}

type fakeArtifactStore struct {
	matrix    string
	matrixErr error
	objects   map[string][]byte
}

func newFakeArtifactStore(matrix string) *fakeArtifactStore {
	return &fakeArtifactStore{matrix: matrix, objects: make(map[string][]byte)}
}

func (s *fakeArtifactStore) PutArtifact(ctx context.Context, email string, content []byte, metadata ArtifactMetadata) (string, error) {
	key := ArtifactKey(email)
	s.objects[key] = content
	return key, nil
}

func (s *fakeArtifactStore) GetCompetencyMatrix(ctx context.Context) (string, error) {
	if s.matrixErr != nil {
		return "", s.matrixErr
	}
	return s.matrix, nil
}

func (s *fakeArtifactStore) GetArtifact(ctx context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

type fakeKnowledgeBase struct {
	response    string
	generateErr error

	prompts      []string
	queries      []string
	emailFilters []string
}

func (kb *fakeKnowledgeBase) RetrieveAndGenerate(ctx context.Context, prompt, query, emailFilter string) (string, error) {
	kb.prompts = append(kb.prompts, prompt)
	kb.queries = append(kb.queries, query)
	kb.emailFilters = append(kb.emailFilters, emailFilter)
	if kb.generateErr != nil {
		return "", kb.generateErr
	}
	return kb.response, nil
}

func (kb *fakeKnowledgeBase) StartSync(ctx context.Context, email string) error { return nil }

func (kb *fakeKnowledgeBase) SyncStatus(ctx context.Context) (string, error) {
	return IngestStatusAvailable, nil
}

type fakeGemini struct {
	embedErr error
}

func (g *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if g.embedErr != nil {
		return nil, g.embedErr
	}
	return make([]float32, 768), nil
}

func (g *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return "", fmt.Errorf("not used")
}

type fakeIndex struct {
	mu       sync.Mutex
	replaced map[string][]IndexChunk
	health   string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{replaced: make(map[string][]IndexChunk), health: IngestStatusCreating}
}

func (i *fakeIndex) InitCollection() error { return nil }

func (i *fakeIndex) ReplaceCandidateChunks(ctx context.Context, email string, chunks []IndexChunk) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.replaced[email] = chunks
	return nil
}

func (i *fakeIndex) Search(ctx context.Context, queryEmbedding []float32, emailFilter string, limit int) ([]SearchResult, error) {
	return nil, nil
}

func (i *fakeIndex) CollectionHealth(ctx context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.health, nil
}
