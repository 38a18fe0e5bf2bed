// Package corpus reads and writes the files passed between pipeline stages.
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xhad/aesop/internal/models"
)

const removedHeader = "Removed Story URL Suffixes (Duplicates):"

func Load(path string) ([]models.Fable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fables: %w", err)
	}

	var fables []models.Fable
	if err := json.Unmarshal(data, &fables); err != nil {
		return nil, fmt.Errorf("failed to parse fables from %s: %w", path, err)
	}
	return fables, nil
}

func Save(path string, fables []models.Fable) error {
	if fables == nil {
		fables = []models.Fable{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fables); err != nil {
		return fmt.Errorf("failed to encode fables: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write fables: %w", err)
	}
	return nil
}

// WriteRemoved writes the audit list of url suffixes dropped by dedup.
func WriteRemoved(path string, suffixes []string) error {
	var b strings.Builder
	b.WriteString(removedHeader)
	b.WriteString("\n\n")
	for _, s := range suffixes {
		b.WriteString(s)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write removed list: %w", err)
	}
	return nil
}
