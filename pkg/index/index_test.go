package index_test

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/aesop/internal/models"
	"github.com/xhad/aesop/pkg/index"
	"github.com/xhad/aesop/pkg/processor"
	"github.com/xhad/aesop/pkg/store"
)

const dim = 256

// hashEmbedder is a deterministic bag-of-words embedder.
type hashEmbedder struct {
	calls int
	fail  bool
}

var stopWords = map[string]bool{"a": true, "an": true, "and": true, "the": true, "of": true, "to": true}

func embed(text string) []float32 {
	vec := make([]float32, dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool { return !unicode.IsLetter(r) })
	for _, w := range words {
		if stopWords[w] {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%dim]++
	}
	return vec
}

func (e *hashEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("ollama unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embed(t)
	}
	return out, nil
}

func (e *hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return embed(text), nil
}

const site = "https://aesopfables.com/cgi/aesop1.cgi?srch&fab/"

var fables = []models.Fable{
	{
		URL:   site + "FoxGrapes",
		Title: "THE FOX AND THE GRAPES",
		Content: "AesopFables.com - Aesop's Fables Online Collection\n" +
			"A famished Fox saw some clusters of ripe black grapes hanging from a trellised vine. " +
			"The fox could not reach the grapes and said they were sour.",
		WordCount: 30,
	},
	{
		URL:       site + "HareTortoise",
		Title:     "THE HARE AND THE TORTOISE",
		Content:   "A Hare one day ridiculed the short feet and slow pace of the Tortoise. The tortoise won the race.",
		WordCount: 20,
	},
	{
		URL:       site + "LionMouse",
		Title:     "THE LION AND THE MOUSE",
		Content:   "A Lion was awakened from sleep by a Mouse running over his face. The mouse later gnawed the net.",
		WordCount: 20,
	},
}

func newIndexer(t *testing.T, emb *hashEmbedder, config index.IndexerConfig) (*index.Indexer, *store.SQLiteStore) {
	t.Helper()
	vs, err := store.NewSQLiteWithConfig(context.Background(), store.SQLiteConfig{
		Path:      t.TempDir(),
		VectorDim: dim,
	})
	require.NoError(t, err)
	t.Cleanup(func() { vs.Close() })

	return index.NewWithConfig(vs, emb, config), vs
}

func ids(t *testing.T, vs *store.SQLiteStore) []string {
	entries, err := vs.List(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestIndexAndSearch(t *testing.T) {
	ctx := context.Background()
	var progress []int
	ix, vs := newIndexer(t, &hashEmbedder{}, index.IndexerConfig{
		BatchSize:  2,
		Recreate:   true,
		OnProgress: func(done, total int) { progress = append(progress, done) },
	})

	n, err := ix.Index(ctx, fables)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{2, 3}, progress)

	matches, err := ix.Search(ctx, "fox and grapes", 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, site+"FoxGrapes", matches[0].ID)
	assert.Equal(t, "THE FOX AND THE GRAPES", matches[0].Metadata.Title)
	assert.NotContains(t, matches[0].Document, "AesopFables.com")

	matches, err = ix.Search(ctx, "tortoise and hare", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, site+"HareTortoise", matches[0].ID)

	count, err := vs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIndexIsIdempotent(t *testing.T) {
	ctx := context.Background()

	for _, recreate := range []bool{true, false} {
		ix, vs := newIndexer(t, &hashEmbedder{}, index.IndexerConfig{Recreate: recreate})

		_, err := ix.Index(ctx, fables)
		require.NoError(t, err)
		first := ids(t, vs)

		_, err = ix.Index(ctx, fables)
		require.NoError(t, err)

		assert.Len(t, first, len(fables))
		assert.ElementsMatch(t, first, ids(t, vs))
	}
}

func TestIndexRejectsDuplicateIDs(t *testing.T) {
	emb := &hashEmbedder{}
	ix, _ := newIndexer(t, emb, index.IndexerConfig{})

	_, err := ix.Index(context.Background(), append([]models.Fable{fables[0]}, fables...))
	assert.ErrorContains(t, err, "duplicate fable id")
	assert.Zero(t, emb.calls)
}

func TestIndexEmbedderFailure(t *testing.T) {
	ix, _ := newIndexer(t, &hashEmbedder{fail: true}, index.IndexerConfig{})

	n, err := ix.Index(context.Background(), fables)
	assert.ErrorContains(t, err, "ollama unavailable")
	assert.Zero(t, n)
}

func TestSearchRejectsNonPositiveK(t *testing.T) {
	ix, _ := newIndexer(t, &hashEmbedder{}, index.IndexerConfig{})

	_, err := ix.Search(context.Background(), "fox", 0)
	assert.Error(t, err)
}

func TestIndexProcessorConfig(t *testing.T) {
	ctx := context.Background()
	ix, vs := newIndexer(t, &hashEmbedder{}, index.IndexerConfig{
		Processor: processor.ProcessorConfig{
			KeepBoilerplate: true,
			CustomNoise:     []string{"trellised "},
		},
	})

	_, err := ix.Index(ctx, fables[:1])
	require.NoError(t, err)

	entries, err := vs.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Document, "AesopFables.com")
	assert.NotContains(t, entries[0].Document, "trellised")
}
