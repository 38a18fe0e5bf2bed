package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/xhad/aesop/internal/models"
)

type PgvectorConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
}

type PgvectorStore struct {
	config PgvectorConfig
	pool   *pgxpool.Pool
}

func NewPgvectorWithConfig(ctx context.Context, config PgvectorConfig) (*PgvectorStore, error) {
	if config.ConnString == "" {
		return nil, fmt.Errorf("database url is required for the pgvector backend")
	}
	if config.TableName == "" {
		config.TableName = "aesop_fables"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &PgvectorStore{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *PgvectorStore) table() string {
	return pgx.Identifier{vs.config.TableName}.Sanitize()
}

func (vs *PgvectorStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT,
			content TEXT,
			embedding vector(%d),
			metadata JSONB
		)`, vs.table(), vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s
		ON %s
		USING hnsw (embedding vector_cosine_ops)`,
		pgx.Identifier{vs.config.TableName + "_embedding_idx"}.Sanitize(), vs.table())

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (vs *PgvectorStore) Reset(ctx context.Context) error {
	if _, err := vs.pool.Exec(ctx, "DROP TABLE IF EXISTS "+vs.table()); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}
	return vs.initialize(ctx)
}

func (vs *PgvectorStore) Upsert(ctx context.Context, entries []models.Entry) error {
	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		vs.table())

	for _, e := range entries {
		if err := checkDim(vs.config.VectorDim, len(e.Embedding)); err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}

		_, err = tx.Exec(ctx, stmt,
			e.ID,
			sanitizeUTF8(e.Metadata.Title),
			sanitizeUTF8(e.Document),
			pgvector.NewVector(e.Embedding),
			e.Metadata,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (vs *PgvectorStore) Query(ctx context.Context, embedding []float32, limit int) ([]models.Match, error) {
	if err := checkDim(vs.config.VectorDim, len(embedding)); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, content, metadata, embedding, embedding <=> $1 AS distance
		FROM %s
		ORDER BY distance
		LIMIT $2`,
		vs.table())

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var (
			m   models.Match
			vec pgvector.Vector
		)
		if err := rows.Scan(&m.ID, &m.Document, &m.Metadata, &vec, &m.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		m.Embedding = vec.Slice()
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	return matches, nil
}

func (vs *PgvectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := vs.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+vs.table()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (vs *PgvectorStore) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := vs.pool.Query(ctx, "SELECT id, content, metadata, embedding FROM "+vs.table()+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e   models.Entry
			vec pgvector.Vector
		)
		if err := rows.Scan(&e.ID, &e.Document, &e.Metadata, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.Embedding = vec.Slice()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	return entries, nil
}

func (vs *PgvectorStore) Close() error {
	if vs.pool != nil {
		vs.pool.Close()
	}
	return nil
}
