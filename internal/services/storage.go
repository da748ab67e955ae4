package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArtifactStore is the durable object storage holding uploaded artifacts,
// their metadata sidecars, and the competency matrix.
type ArtifactStore interface {
	PutArtifact(ctx context.Context, email string, content []byte, metadata ArtifactMetadata) (string, error)
	GetCompetencyMatrix(ctx context.Context) (string, error)
	GetArtifact(ctx context.Context, key string) ([]byte, error)
}

// ArtifactMetadata is the sidecar written next to each artifact so the
// retrieval index can tag documents by candidate.
type ArtifactMetadata struct {
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	ToDesignation   string   `json:"to_designation"`
	FromDesignation string   `json:"from_designation"`
	Tags            []string `json:"tags"`
}

type artifactStore struct {
	client    *minio.Client
	bucket    string
	matrixKey string
}

func NewArtifactStore(ctx context.Context, endpoint, region, accessKey, secretKey, bucket, matrixKey string, useSSL bool) (ArtifactStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &artifactStore{
		client:    client,
		bucket:    bucket,
		matrixKey: matrixKey,
	}, nil
}

// ArtifactKey derives the deterministic object key for a candidate's
// artifact from the local part of the email.
func ArtifactKey(email string) string {
	local := strings.SplitN(email, "@", 2)[0]
	return fmt.Sprintf("artifacts/%s/%s.pdf", local, local)
}

// PutArtifact writes the binary and its metadata sidecar as sibling objects
// and returns the artifact key.
func (s *artifactStore) PutArtifact(ctx context.Context, email string, content []byte, metadata ArtifactMetadata) (string, error) {
	key := ArtifactKey(email)

	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	sidecar, err := json.Marshal(map[string]ArtifactMetadata{"metadataAttributes": metadata})
	if err != nil {
		return "", fmt.Errorf("failed to marshal artifact metadata: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key+".metadata.json",
		bytes.NewReader(sidecar), int64(len(sidecar)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to store artifact metadata: %w", err)
	}

	return key, nil
}

// GetCompetencyMatrix fetches the matrix document. It is read per call, never
// cached: the matrix is versioned outside this system.
func (s *artifactStore) GetCompetencyMatrix(ctx context.Context) (string, error) {
	data, err := s.GetArtifact(ctx, s.matrixKey)
	if err != nil {
		return "", fmt.Errorf("failed to fetch competency matrix: %w", err)
	}

	// Compact so the prompt carries no incidental whitespace.
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("competency matrix is not valid JSON: %w", err)
	}
	return buf.String(), nil
}

// GetArtifact implements ArtifactStore.
func (s *artifactStore) GetArtifact(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}
