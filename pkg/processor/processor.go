package processor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/xhad/aesop/internal/models"
)

type ProcessorConfig struct {
	KeepBoilerplate bool
	CustomNoise     []string
}

type Processor struct {
	config ProcessorConfig
}

var (
	siteHeader = regexp.MustCompile(`\AAesopFables\.com.*?\n`)
	footer     = regexp.MustCompile(`(?s)Process took:.*?Copyright.*\z`)
	returnTail = regexp.MustCompile(`(?s)RETURN\s*Process took.*\z`)
	theEndTail = regexp.MustCompile(`(?s)THE END\s*RETURN.*\z`)
	blankLines = regexp.MustCompile(`\n\s*\n`)
)

func NewWithConfig(config ProcessorConfig) Processor {
	return Processor{
		config: config,
	}
}

func (p *Processor) Process(fables []models.Fable) []models.ProcessedFable {
	processed := make([]models.ProcessedFable, 0, len(fables))

	for _, fable := range fables {
		processed = append(processed, models.ProcessedFable{
			Fable:    fable,
			Document: p.CleanContent(fable.Content),
			Category: Categorize(fable.Title),
		})
	}

	return processed
}

// CleanContent strips the site header and footer from a scraped page body.
func (p *Processor) CleanContent(content string) string {
	if !p.config.KeepBoilerplate {
		content = siteHeader.ReplaceAllString(content, "")
		content = footer.ReplaceAllString(content, "")
		content = returnTail.ReplaceAllString(content, "")
		content = theEndTail.ReplaceAllString(content, "")
	}

	for _, noise := range p.config.CustomNoise {
		content = strings.ReplaceAll(content, noise, "")
	}

	content = blankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// Metadata builds the stored metadata for a processed fable.
func Metadata(f models.ProcessedFable) models.Metadata {
	return models.Metadata{
		Title:         f.Title,
		OriginalTitle: f.OriginalTitle,
		URL:           f.URL,
		WordCount:     f.WordCount,
		CleanedLength: utf8.RuneCountInString(f.Document),
	}
}
