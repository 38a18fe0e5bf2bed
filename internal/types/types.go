package types

import (
	"context"

	"github.com/xhad/aesop/internal/models"
)

// Core interfaces
type VectorStore interface {
	Reset(ctx context.Context) error
	Upsert(ctx context.Context, entries []models.Entry) error
	Query(ctx context.Context, embedding []float32, limit int) ([]models.Match, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.Entry, error)
	Close() error
}

// Embedder matches the langchaingo embeddings.Embedder method set.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type Processor interface {
	Process(fables []models.Fable) []models.ProcessedFable
}
