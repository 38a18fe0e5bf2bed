package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/xhad/aesop/internal/models"
)

type QdrantConfig struct {
	Host       string
	Port       int // gRPC port
	Collection string
	VectorDim  int
}

type QdrantStore struct {
	config QdrantConfig
	client *qdrant.Client
}

func NewQdrantWithConfig(ctx context.Context, config QdrantConfig) (*QdrantStore, error) {
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Port == 0 {
		config.Port = 6334
	}
	if config.Collection == "" {
		config.Collection = "aesop_fables"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: config.Host,
		Port: config.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	s := &QdrantStore{
		config: config,
		client: client,
	}

	if err := s.initialize(ctx); err != nil {
		client.Close()
		return nil, err
	}

	return s, nil
}

func (s *QdrantStore) initialize(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.config.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.config.VectorDim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Qdrant only accepts integer or UUID point ids, so urls are mapped to
// name-based UUIDs.
func pointID(id string) *qdrant.PointId {
	return qdrant.NewID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String())
}

func (s *QdrantStore) Reset(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.config.Collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return s.initialize(ctx)
}

func (s *QdrantStore) Upsert(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, e := range entries {
		if err := checkDim(s.config.VectorDim, len(e.Embedding)); err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}

		payload := map[string]any{
			"id":             e.ID,
			"document":       sanitizeUTF8(e.Document),
			"title":          e.Metadata.Title,
			"original_title": e.Metadata.OriginalTitle,
			"url":            e.Metadata.URL,
			"word_count":     int64(e.Metadata.WordCount),
			"cleaned_length": int64(e.Metadata.CleanedLength),
		}
		points = append(points, &qdrant.PointStruct{
			Id:      pointID(e.ID),
			Vectors: qdrant.NewVectorsDense(e.Embedding),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.config.Collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, embedding []float32, limit int) ([]models.Match, error) {
	if err := checkDim(s.config.VectorDim, len(embedding)); err != nil {
		return nil, err
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.config.Collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	matches := make([]models.Match, 0, len(points))
	for _, p := range points {
		matches = append(matches, models.Match{
			Entry:    entryFromPayload(p.GetPayload(), p.GetVectors()),
			Distance: 1 - float64(p.GetScore()),
		})
	}
	return matches, nil
}

func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.config.Collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(n), nil
}

func (s *QdrantStore) List(ctx context.Context) ([]models.Entry, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.config.Collection,
		Limit:          qdrant.PtrOf(uint32(n)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll points: %w", err)
	}

	entries := make([]models.Entry, 0, len(points))
	for _, p := range points {
		entries = append(entries, entryFromPayload(p.GetPayload(), p.GetVectors()))
	}
	return entries, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func entryFromPayload(payload map[string]*qdrant.Value, vectors *qdrant.VectorsOutput) models.Entry {
	return models.Entry{
		ID:        payload["id"].GetStringValue(),
		Document:  payload["document"].GetStringValue(),
		Embedding: vectors.GetVector().GetData(),
		Metadata: models.Metadata{
			Title:         payload["title"].GetStringValue(),
			OriginalTitle: payload["original_title"].GetStringValue(),
			URL:           payload["url"].GetStringValue(),
			WordCount:     int(payload["word_count"].GetIntegerValue()),
			CleanedLength: int(payload["cleaned_length"].GetIntegerValue()),
		},
	}
}
