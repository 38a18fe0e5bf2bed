// Package export writes a vector collection as TSV files that embedding
// projectors can load.
package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xhad/aesop/internal/models"
	"github.com/xhad/aesop/pkg/processor"
)

const (
	VectorsFile  = "vectors.tsv"
	MetadataFile = "metadata.tsv"
)

// WriteTSV writes one row per entry to dir/vectors.tsv and dir/metadata.tsv.
// Rows in both files line up.
func WriteTSV(dir string, entries []models.Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	err := writeLines(filepath.Join(dir, VectorsFile), len(entries), func(w *bufio.Writer, i int) {
		for j, v := range entries[i].Embedding {
			if j > 0 {
				w.WriteByte('\t')
			}
			w.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		}
	}, "")
	if err != nil {
		return err
	}

	return writeLines(filepath.Join(dir, MetadataFile), len(entries), func(w *bufio.Writer, i int) {
		md := entries[i].Metadata
		fmt.Fprintf(w, "%s\t%s\t%d", field(md.Title), processor.Categorize(md.Title), md.WordCount)
	}, "title\tcategory\tword_count")
}

func writeLines(path string, n int, row func(*bufio.Writer, int), header string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if header != "" {
		w.WriteString(header + "\n")
	}
	for i := 0; i < n; i++ {
		row(w, i)
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// field keeps a value on one TSV cell.
func field(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
