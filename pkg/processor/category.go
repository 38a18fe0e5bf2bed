package processor

import "strings"

const (
	CategoryPredators = "Predators"
	CategoryPrey      = "Prey Animals"
	CategoryDomestic  = "Domestic Animals"
	CategoryBirds     = "Birds"
	CategoryHuman     = "Human Stories"
	CategoryNature    = "Nature"
	CategoryOther     = "Other"
)

// Buckets are checked in order; the first keyword hit wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{CategoryPredators, []string{"fox", "wolf", "lion", "bear", "tiger"}},
	{CategoryPrey, []string{"hare", "rabbit", "mouse", "deer", "lamb"}},
	{CategoryDomestic, []string{"dog", "cat", "horse", "ass", "donkey"}},
	{CategoryBirds, []string{"crow", "eagle", "owl", "peacock", "swan", "nightingale"}},
	{CategoryHuman, []string{"man", "woman", "boy", "girl", "farmer", "king", "merchant"}},
	{CategoryNature, []string{"sun", "wind", "tree", "mountain", "river"}},
}

// Categorize assigns a coarse category from substrings of the title.
func Categorize(title string) string {
	title = strings.ToLower(title)
	for _, bucket := range categoryKeywords {
		for _, kw := range bucket.keywords {
			if strings.Contains(title, kw) {
				return bucket.category
			}
		}
	}
	return CategoryOther
}
