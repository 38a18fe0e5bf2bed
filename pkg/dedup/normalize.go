package dedup

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var (
	leadingArticle = regexp.MustCompile(`^(the|a|an)[\s\p{Z}]+`)
	trailingKind   = regexp.MustCompile(`[\s\p{Z}]+(fable|story|tale)$`)
	nonWord        = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}]`)
	spaces         = regexp.MustCompile(`[\s\p{Z}]+`)
)

// NormalizeTitle lower-cases a title and strips articles, genre suffixes and
// punctuation so that variants of the same title compare equal.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = leadingArticle.ReplaceAllString(title, "")
	title = trailingKind.ReplaceAllString(title, "")
	title = nonWord.ReplaceAllString(title, "")
	title = spaces.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

func stemWord(word string) string {
	stem, err := snowball.Stem(word, "english", true)
	if err != nil {
		return word
	}
	return stem
}

// titleKey is the normalized title, optionally reduced to word stems.
func titleKey(title string, stem bool) (string, []string) {
	words := strings.Fields(NormalizeTitle(title))
	if stem {
		for i, w := range words {
			words[i] = stemWord(w)
		}
	}
	return strings.Join(words, " "), words
}

// Jaccard returns |a ∩ b| / |a ∪ b| over the distinct words of a and b.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}

	union := len(set)
	inter := 0
	seen := make(map[string]bool, len(b))
	for _, w := range b {
		if seen[w] {
			continue
		}
		seen[w] = true
		if set[w] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
