package dedup

import (
	"strings"

	"github.com/xhad/aesop/internal/models"
)

// Score rates how complete a scraped fable looks. Higher is better.
func Score(fable models.Fable) float64 {
	var wordScore float64
	switch n := fable.WordCount; {
	case n >= 100 && n <= 500:
		wordScore = 1.0
	case n >= 50 && n < 100:
		wordScore = 0.8
	case n > 500 && n <= 1000:
		wordScore = 0.9
	default:
		wordScore = 0.5
	}

	content := fable.Content
	contentScore := 1.0
	if strings.Contains(content, "AesopFables.com") {
		contentScore -= 0.1
	}
	if strings.Contains(content, "Process took:") {
		contentScore -= 0.2
	}
	if strings.Contains(content, "Copyright") {
		contentScore -= 0.1
	}

	lower := strings.ToLower(content)
	for _, marker := range []string{"moral:", "lesson:", "application:"} {
		if strings.Contains(lower, marker) {
			contentScore += 0.2
			break
		}
	}

	return wordScore * contentScore
}

// ChooseBest returns the index of the highest scoring fable. Ties keep the
// earliest one.
func ChooseBest(fables []models.Fable) int {
	best, bestScore := 0, -1.0
	for i, f := range fables {
		if s := Score(f); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

type Stats struct {
	Total    int
	MinWords int
	MaxWords int
	AvgWords float64
}

func ComputeStats(fables []models.Fable) Stats {
	stats := Stats{Total: len(fables)}
	if len(fables) == 0 {
		return stats
	}

	stats.MinWords = fables[0].WordCount
	sum := 0
	for _, f := range fables {
		stats.MinWords = min(stats.MinWords, f.WordCount)
		stats.MaxWords = max(stats.MaxWords, f.WordCount)
		sum += f.WordCount
	}
	stats.AvgWords = float64(sum) / float64(len(fables))
	return stats
}
