package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xhad/aesop/internal/models"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// SQLiteFile is the database file kept inside the store directory.
const SQLiteFile = "vectors.db"

type SQLiteConfig struct {
	Path       string
	Collection string
	// VectorDim fixes the collection dimension. Zero takes it from the first
	// upserted entry.
	VectorDim int
}

// SQLiteStore keeps collections in a single SQLite file and answers queries
// with a brute-force cosine scan.
type SQLiteStore struct {
	config SQLiteConfig
	db     *sql.DB
}

func NewSQLiteWithConfig(ctx context.Context, config SQLiteConfig) (*SQLiteStore, error) {
	if config.Path == "" {
		config.Path = "./fables_db"
	}
	if config.Collection == "" {
		config.Collection = "aesop_fables"
	}

	if err := os.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(config.Path, SQLiteFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		config: config,
		db:     db,
	}

	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			name TEXT PRIMARY KEY,
			dimension INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			document TEXT NOT NULL,
			metadata TEXT NOT NULL,
			embedding BLOB NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return s.ensureCollection(ctx)
}

func (s *SQLiteStore) ensureCollection(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collections (name, dimension) VALUES (?, ?)`,
		s.config.Collection, s.config.VectorDim)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

func (s *SQLiteStore) dimension(ctx context.Context) (int, error) {
	var dim int
	err := s.db.QueryRowContext(ctx,
		`SELECT dimension FROM collections WHERE name = ?`, s.config.Collection).Scan(&dim)
	if err != nil {
		return 0, fmt.Errorf("failed to read collection: %w", err)
	}
	return dim, nil
}

// Reset drops every entry of the collection and forgets its dimension.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE collection = ?`, s.config.Collection); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, s.config.Collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.ensureCollection(ctx)
}

func (s *SQLiteStore) Upsert(ctx context.Context, entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dim, err := s.dimension(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if dim == 0 {
		dim = len(entries[0].Embedding)
		_, err := tx.ExecContext(ctx, `UPDATE collections SET dimension = ? WHERE name = ?`, dim, s.config.Collection)
		if err != nil {
			return fmt.Errorf("failed to set collection dimension: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (collection, id, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			document = excluded.document,
			metadata = excluded.metadata,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if err := checkDim(dim, len(e.Embedding)); err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}

		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}

		_, err = stmt.ExecContext(ctx, s.config.Collection, e.ID, sanitizeUTF8(e.Document),
			string(metadata), encodeEmbedding(e.Embedding))
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, embedding []float32, limit int) ([]models.Match, error) {
	dim, err := s.dimension(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkDim(dim, len(embedding)); err != nil {
		return nil, err
	}

	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]models.Match, 0, len(entries))
	for _, e := range entries {
		d, err := CosineDistance(embedding, e.Embedding)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		matches = append(matches, models.Match{Entry: e, Distance: d})
	}

	return rank(matches, limit), nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE collection = ?`, s.config.Collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// List returns every entry in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document, metadata, embedding
		FROM entries
		WHERE collection = ?
		ORDER BY rowid`, s.config.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e        models.Entry
			metadata string
			blob     []byte
		)
		if err := rows.Scan(&e.ID, &e.Document, &metadata, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &e.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", e.ID, err)
		}
		if e.Embedding, err = decodeEmbedding(blob); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	return entries, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
