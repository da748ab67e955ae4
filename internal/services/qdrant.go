package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// IndexService is the retrieval index behind the knowledge base: chunked
// artifact text, one point per chunk, payload tagged with the candidate's
// identity so evaluation retrieval can be scoped server-side.
type IndexService interface {
	InitCollection() error
	ReplaceCandidateChunks(ctx context.Context, email string, chunks []IndexChunk) error
	Search(ctx context.Context, queryEmbedding []float32, emailFilter string, limit int) ([]SearchResult, error)
	CollectionHealth(ctx context.Context) (string, error)
}

type IndexChunk struct {
	Text      string
	Embedding []float32
}

type SearchResult struct {
	ID    string
	Score float32
	Text  string
	Email string
}

type indexService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewIndexService(urlStr, apiKey, collectionName string) (IndexService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port unless the URL says otherwise
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &indexService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements IndexService.
func (q *indexService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// ReplaceCandidateChunks drops the candidate's previous points and upserts
// the fresh chunk set. Other candidates' points are untouched.
func (q *indexService) ReplaceCandidateChunks(ctx context.Context, email string, chunks []IndexChunk) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("email", email),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete previous chunks: %w", err)
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, chunk := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(uuid.New().ID())),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"email": email,
				"chunk": i,
				"text":  chunk.Text,
			}),
		})
	}

	_, err = q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}

	return nil
}

// Search implements IndexService. An empty emailFilter searches the whole
// knowledge base.
func (q *indexService) Search(ctx context.Context, queryEmbedding []float32, emailFilter string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if emailFilter != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("email", emailFilter),
			},
		}
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []SearchResult
	for _, point := range searchResult {
		payload := point.Payload

		result := SearchResult{
			Score: point.Score,
		}

		if text, ok := payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				result.Text = val.StringValue
			}
		}
		if email, ok := payload["email"]; ok {
			if val, ok := email.GetKind().(*qdrant.Value_StringValue); ok {
				result.Email = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// CollectionHealth maps the collection optimizer state onto the data-source
// status vocabulary the sync poller understands.
func (q *indexService) CollectionHealth(ctx context.Context) (string, error) {
	info, err := q.client.GetCollectionInfo(ctx, q.collectionName)
	if err != nil {
		return "", fmt.Errorf("failed to get collection info: %w", err)
	}

	switch info.GetStatus() {
	case qdrant.CollectionStatus_Green:
		return "AVAILABLE", nil
	case qdrant.CollectionStatus_Yellow:
		return "UPDATING", nil
	default:
		return "CREATING", nil
	}
}
