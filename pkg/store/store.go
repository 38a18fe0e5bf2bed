package store

import (
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/xhad/aesop/internal/models"
	"github.com/xhad/aesop/internal/types"
)

const (
	BackendSQLite   = "sqlite"
	BackendPgvector = "pgvector"
	BackendQdrant   = "qdrant"
)

type Config struct {
	Backend    string
	Path       string
	URL        string
	QdrantHost string
	QdrantPort int
	Collection string
	VectorDim  int
}

// Open connects to the configured backend. The caller owns the returned store
// and must Close it.
func Open(ctx context.Context, config Config) (types.VectorStore, error) {
	var (
		vs  types.VectorStore
		err error
	)

	switch config.Backend {
	case BackendSQLite, "":
		vs, err = NewSQLiteWithConfig(ctx, SQLiteConfig{
			Path:       config.Path,
			Collection: config.Collection,
			VectorDim:  config.VectorDim,
		})
	case BackendPgvector:
		vs, err = NewPgvectorWithConfig(ctx, PgvectorConfig{
			ConnString: config.URL,
			TableName:  config.Collection,
			VectorDim:  config.VectorDim,
		})
	case BackendQdrant:
		vs, err = NewQdrantWithConfig(ctx, QdrantConfig{
			Host:       config.QdrantHost,
			Port:       config.QdrantPort,
			Collection: config.Collection,
			VectorDim:  config.VectorDim,
		})
	default:
		return nil, fmt.Errorf("unknown vector store backend %q", config.Backend)
	}
	if err != nil {
		return nil, err
	}

	return vs, nil
}

// rank sorts matches by ascending distance and keeps the first limit.
func rank(matches []models.Match, limit int) []models.Match {
	slices.SortStableFunc(matches, func(a, b models.Match) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
