package dedup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/aesop/internal/models"
	"github.com/xhad/aesop/pkg/dedup"
)

const base = "https://aesopfables.com/cgi/aesop1.cgi?srch&"

func fable(suffix, title string, words int, content string) models.Fable {
	return models.Fable{URL: base + suffix, Title: title, Content: content, WordCount: words}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"The Fox and the Grapes", "fox and the grapes"},
		{"THE FOX AND THE GRAPES", "fox and the grapes"},
		{"A Fox and the Grapes Fable", "fox and the grapes"},
		{"An Ant's Story", "ants"},
		{"  The   Wolf, the Kid & the Goat  ", "wolf the kid the goat"},
		{"Theory of Everything", "theory of everything"},
		{"The\u00a0Fox and the Grapes", "fox and the grapes"},
		{"The Fox\u00a0and the Grapes", "fox and the grapes"},
		{"The Cat\u00a0Fable", "cat"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, dedup.NormalizeTitle(tt.title))
		})
	}
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, dedup.Jaccard(nil, nil))
	assert.Equal(t, 0.0, dedup.Jaccard([]string{"fox"}, nil))
	assert.Equal(t, 1.0, dedup.Jaccard([]string{"hare", "tortois"}, []string{"tortois", "hare", "hare"}))
	assert.InDelta(t, 0.75, dedup.Jaccard([]string{"fox", "and", "the", "grape"}, []string{"fox", "the", "grape"}), 1e-9)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		words   int
		content string
		want    float64
	}{
		{"ideal length", 200, "A plain fable.", 1.0},
		{"short", 75, "A plain fable.", 0.8},
		{"long", 600, "A plain fable.", 0.9},
		{"tiny", 10, "A plain fable.", 0.5},
		{"huge", 1500, "A plain fable.", 0.5},
		{"site header", 200, "AesopFables.com header\nbody", 0.9},
		{"footer", 200, "body\nProcess took: 1s\nCopyright 2024", 0.7},
		{"moral bonus", 200, "body\nMoral: look before you leap", 1.2},
		{"short with header", 75, "AesopFables.com\nbody", 0.72},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, dedup.Score(models.Fable{WordCount: tt.words, Content: tt.content}), 1e-9)
		})
	}
}

func TestURLSuffix(t *testing.T) {
	assert.Equal(t, "fab/FoxGrapes", dedup.URLSuffix(base+"fab/FoxGrapes"))
	assert.Equal(t, "https://example.com/other", dedup.URLSuffix("https://example.com/other"))
}

func TestDeduplicate(t *testing.T) {
	fables := []models.Fable{
		fable("1", "THE FOX AND THE GRAPES", 60, "AesopFables.com\nshort fox"),
		fable("2", "The Hare and the Tortoise", 150, "hare body"),
		fable("3", "The Fox and the Grapes", 120, "full fox body"),
		fable("4", "The Tortoise and the Hare", 150, "hare body again"),
		fable("5", "The Lion and the Mouse", 90, "lion body"),
		fable("6", "The Dogs and the Wolf", 200, "dogs body"),
		fable("7", "The Dog and the Wolf", 200, "dog body"),
	}

	d := dedup.NewWithConfig(dedup.DedupConfig{})
	result := d.Deduplicate(fables)

	// Only identical normalized titles group by default.
	require.Len(t, result.Kept, 6)
	assert.Equal(t, base+"3", result.Kept[0].URL)
	assert.Equal(t, base+"2", result.Kept[1].URL)
	assert.Equal(t, base+"4", result.Kept[2].URL)
	assert.Equal(t, base+"6", result.Kept[4].URL)
	assert.Equal(t, base+"7", result.Kept[5].URL)

	assert.Equal(t, []string{"1"}, result.Removed)
	assert.Equal(t, len(fables)-len(result.Removed), len(result.Kept))
	assert.Len(t, result.Duplicates(), 1)
}

func TestDeduplicateStemmedWordSets(t *testing.T) {
	fables := []models.Fable{
		fable("1", "The Hare and the Tortoise", 150, "hare body"),
		fable("2", "The Tortoise and the Hare", 150, "hare body again"),
		fable("3", "The Dogs and the Wolf", 200, "dogs body"),
		fable("4", "The Dog and the Wolf", 200, "dog body"),
	}

	stemmed := dedup.NewWithConfig(dedup.DedupConfig{Stem: true}).Deduplicate(fables)
	assert.Len(t, stemmed.Kept, 3)
	assert.Equal(t, []string{"4"}, stemmed.Removed)

	loose := dedup.NewWithConfig(dedup.DedupConfig{Stem: true, SimilarityThreshold: 0.9}).Deduplicate(fables)
	require.Len(t, loose.Kept, 2)
	assert.Equal(t, base+"1", loose.Kept[0].URL, "tie keeps the earliest member")
	assert.Equal(t, base+"3", loose.Kept[1].URL)
	assert.Equal(t, []string{"2", "4"}, loose.Removed)
}

func TestDeduplicateKeysAreUnique(t *testing.T) {
	fables := []models.Fable{
		fable("a", "The Ant and the Grasshopper", 100, "x"),
		fable("b", "Ant and the Grasshopper", 100, "x"),
		fable("c", "THE ANT AND THE GRASSHOPPER", 100, "x"),
		fable("d", "The Crow and the Pitcher", 100, "x"),
		fable("e", "The Crow & the Pitcher", 100, "x"),
	}

	result := dedup.NewWithConfig(dedup.DedupConfig{}).Deduplicate(fables)

	seen := make(map[string]bool)
	for _, f := range result.Kept {
		key := dedup.NormalizeTitle(f.Title)
		assert.False(t, seen[key], "duplicate key %q", key)
		seen[key] = true
	}
	assert.Equal(t, len(fables)-len(result.Removed), len(result.Kept))
}

func TestDeduplicateThreshold(t *testing.T) {
	fables := []models.Fable{
		fable("1", "The Fox and the Grapes", 120, "x"),
		fable("2", "The Fox & the Grapes", 120, "x"),
	}

	strict := dedup.NewWithConfig(dedup.DedupConfig{SimilarityThreshold: 1.0}).Deduplicate(fables)
	assert.Len(t, strict.Kept, 2)
	assert.Empty(t, strict.Removed)

	loose := dedup.NewWithConfig(dedup.DedupConfig{SimilarityThreshold: 0.7}).Deduplicate(fables)
	assert.Len(t, loose.Kept, 1)
	assert.Equal(t, []string{"2"}, loose.Removed)
}

func TestDeduplicateDefaultKeepsDistinctTitles(t *testing.T) {
	fables := []models.Fable{
		fable("1", "The Hare and the Tortoise", 150, "x"),
		fable("2", "The Tortoise and the Hare", 150, "x"),
		fable("3", "The Dogs and the Wolf", 200, "x"),
		fable("4", "The Dog and the Wolf", 200, "x"),
	}

	result := dedup.NewWithConfig(dedup.DedupConfig{}).Deduplicate(fables)
	assert.Len(t, result.Kept, 4)
	assert.Empty(t, result.Removed)
}

func TestDeduplicateSameURLTwice(t *testing.T) {
	fables := []models.Fable{
		fable("1", "The Oak and the Reeds", 200, "x"),
		fable("1", "The Oak and the Reeds", 200, "x"),
	}

	result := dedup.NewWithConfig(dedup.DedupConfig{}).Deduplicate(fables)
	assert.Len(t, result.Kept, 1)
	assert.Equal(t, []string{"1"}, result.Removed)
}

func TestComputeStats(t *testing.T) {
	stats := dedup.ComputeStats([]models.Fable{{WordCount: 10}, {WordCount: 30}, {WordCount: 20}})
	assert.Equal(t, dedup.Stats{Total: 3, MinWords: 10, MaxWords: 30, AvgWords: 20}, stats)

	assert.Equal(t, dedup.Stats{}, dedup.ComputeStats(nil))
}
