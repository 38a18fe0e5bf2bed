package dedup

import (
	"strings"

	"github.com/xhad/aesop/internal/models"
	"github.com/xhad/aesop/pkg/logging"
	"go.uber.org/zap"
)

type DedupConfig struct {
	// SimilarityThreshold below 1 also groups titles whose word sets have at
	// least this Jaccard similarity. At 1 only identical normalized titles group.
	SimilarityThreshold float64
	// Stem reduces title words to their Snowball stems before comparing.
	Stem   bool
	Logger *zap.Logger
}

type Deduplicator struct {
	config DedupConfig
	logger *zap.Logger
}

// Group is a set of fables judged to be the same story.
type Group struct {
	Key     string
	Members []models.Fable
	Kept    models.Fable
}

type Result struct {
	Kept    []models.Fable
	Removed []string
	Groups  []Group
}

func (r Result) Duplicates() []Group {
	var dups []Group
	for _, g := range r.Groups {
		if len(g.Members) > 1 {
			dups = append(dups, g)
		}
	}
	return dups
}

func NewWithConfig(config DedupConfig) *Deduplicator {
	if config.SimilarityThreshold <= 0 || config.SimilarityThreshold > 1 {
		config.SimilarityThreshold = 1.0
	}

	return &Deduplicator{
		config: config,
		logger: logging.OrNop(config.Logger),
	}
}

type group struct {
	key     string
	words   []string
	members []models.Fable
}

// Deduplicate keeps one fable per title group. Groups and the kept fables are
// returned in order of first appearance.
func (d *Deduplicator) Deduplicate(fables []models.Fable) Result {
	var groups []*group
	byKey := make(map[string]*group)

	for _, fable := range fables {
		key, words := titleKey(fable.Title, d.config.Stem)

		g, ok := byKey[key]
		if !ok && d.config.SimilarityThreshold < 1 {
			g = d.closest(groups, words)
		}
		if g == nil {
			g = &group{key: key, words: words}
			groups = append(groups, g)
			byKey[key] = g
		}
		g.members = append(g.members, fable)
	}

	result := Result{
		Kept:   make([]models.Fable, 0, len(groups)),
		Groups: make([]Group, 0, len(groups)),
	}
	for _, g := range groups {
		keep := ChooseBest(g.members)
		best := g.members[keep]
		result.Kept = append(result.Kept, best)
		result.Groups = append(result.Groups, Group{Key: g.key, Members: g.members, Kept: best})

		if len(g.members) == 1 {
			continue
		}

		titles := make([]string, 0, len(g.members))
		for i, m := range g.members {
			titles = append(titles, m.Title)
			if i != keep {
				result.Removed = append(result.Removed, URLSuffix(m.URL))
			}
		}
		d.logger.Info("duplicate fables",
			zap.String("key", g.key),
			zap.Strings("versions", titles),
			zap.String("kept", best.Title),
			zap.Int("kept_words", best.WordCount))
	}

	d.logger.Info("deduplicated fables",
		zap.Int("original", len(fables)),
		zap.Int("removed", len(result.Removed)),
		zap.Int("kept", len(result.Kept)))

	return result
}

// closest returns the first group whose word set is similar enough to words.
func (d *Deduplicator) closest(groups []*group, words []string) *group {
	for _, g := range groups {
		if Jaccard(g.words, words) >= d.config.SimilarityThreshold {
			return g
		}
	}
	return nil
}

// URLSuffix returns the part of a fable url after "?srch&", or the whole url.
func URLSuffix(url string) string {
	if i := strings.LastIndex(url, "?srch&"); i >= 0 {
		return url[i+len("?srch&"):]
	}
	return url
}
