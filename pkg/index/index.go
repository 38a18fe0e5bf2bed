package index

import (
	"context"
	"fmt"

	"github.com/xhad/aesop/internal/models"
	"github.com/xhad/aesop/internal/types"
	"github.com/xhad/aesop/pkg/logging"
	"github.com/xhad/aesop/pkg/processor"
	"go.uber.org/zap"
)

type IndexerConfig struct {
	BatchSize int
	// Recreate empties the collection before indexing.
	Recreate   bool
	Processor  processor.ProcessorConfig
	Logger     *zap.Logger
	OnProgress func(done, total int)
}

// Indexer embeds fables and keeps them in a vector store, keyed by url.
type Indexer struct {
	config    IndexerConfig
	store     types.VectorStore
	embedder  types.Embedder
	processor types.Processor
	logger    *zap.Logger
}

func NewWithConfig(store types.VectorStore, embedder types.Embedder, config IndexerConfig) *Indexer {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}

	p := processor.NewWithConfig(config.Processor)

	return &Indexer{
		config:    config,
		store:     store,
		embedder:  embedder,
		processor: &p,
		logger:    logging.OrNop(config.Logger),
	}
}

// Index embeds every fable and upserts it. It returns the number of entries
// written.
func (ix *Indexer) Index(ctx context.Context, fables []models.Fable) (int, error) {
	seen := make(map[string]bool, len(fables))
	for _, f := range fables {
		if f.URL == "" {
			return 0, fmt.Errorf("fable %q has no url", f.Title)
		}
		if seen[f.URL] {
			return 0, fmt.Errorf("duplicate fable id %s", f.URL)
		}
		seen[f.URL] = true
	}

	if ix.config.Recreate {
		if err := ix.store.Reset(ctx); err != nil {
			return 0, fmt.Errorf("failed to reset collection: %w", err)
		}
		ix.logger.Debug("collection reset")
	}

	processed := ix.processor.Process(fables)

	written := 0
	for start := 0; start < len(processed); start += ix.config.BatchSize {
		end := min(start+ix.config.BatchSize, len(processed))
		batch := processed[start:end]

		texts := make([]string, len(batch))
		for i, f := range batch {
			texts[i] = f.Document
		}

		vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return written, fmt.Errorf("failed to embed batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return written, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(batch))
		}

		entries := make([]models.Entry, len(batch))
		for i, f := range batch {
			entries[i] = models.Entry{
				ID:        f.URL,
				Embedding: vectors[i],
				Metadata:  processor.Metadata(f),
				Document:  f.Document,
			}
		}

		if err := ix.store.Upsert(ctx, entries); err != nil {
			return written, fmt.Errorf("failed to store batch %d-%d: %w", start, end, err)
		}

		written += len(entries)
		ix.logger.Debug("indexed batch", zap.Int("start", start), zap.Int("end", end))
		if ix.config.OnProgress != nil {
			ix.config.OnProgress(written, len(processed))
		}
	}

	ix.logger.Info("indexed fables", zap.Int("count", written))
	return written, nil
}

// Search embeds text with the indexing model and returns the k nearest fables.
func (ix *Indexer) Search(ctx context.Context, text string, k int) ([]models.Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	vector, err := ix.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	matches, err := ix.store.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	return matches, nil
}
