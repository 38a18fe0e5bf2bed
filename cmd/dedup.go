package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/aesop/pkg/corpus"
	"github.com/xhad/aesop/pkg/dedup"
)

func dedupCmd(a *app) *cobra.Command {
	var (
		input     string
		output    string
		removed   string
		threshold float64
		stem      bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Remove duplicate fables, keeping the most complete version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files := a.config.Files
			if input == "" {
				input = files.Scraped
			}
			if output == "" {
				output = files.Deduplicated
			}
			if removed == "" {
				removed = files.Removed
			}

			cfg := a.config.Dedup
			if cmd.Flags().Changed("threshold") {
				if threshold <= 0 || threshold > 1 {
					return fmt.Errorf("threshold must be in (0, 1], got %g", threshold)
				}
				cfg.SimilarityThreshold = threshold
			}
			if stem {
				cfg.Stem = true
			}

			fables, err := corpus.Load(input)
			if err != nil {
				return err
			}
			color.Blue("Loaded %d fables from %s", len(fables), input)

			result := dedup.NewWithConfig(dedup.DedupConfig{
				SimilarityThreshold: cfg.SimilarityThreshold,
				Stem:                cfg.Stem,
				Logger:              a.logger,
			}).Deduplicate(fables)

			dups := result.Duplicates()
			color.Cyan("\nFound %d duplicate groups", len(dups))
			if verbose {
				for _, g := range dups {
					fmt.Printf("\n'%s' has %d versions:\n", g.Key, len(g.Members))
					for _, m := range g.Members {
						marker := " "
						if m.URL == g.Kept.URL {
							marker = "✓"
						}
						fmt.Printf("  %s %s (%d words, score %.2f)\n", marker, m.Title, m.WordCount, dedup.Score(m))
					}
				}
			}

			if err := corpus.Save(output, result.Kept); err != nil {
				return err
			}
			if err := corpus.WriteRemoved(removed, result.Removed); err != nil {
				return err
			}

			stats := dedup.ComputeStats(result.Kept)
			color.Green("\n✓ Removed %d duplicates, kept %d fables", len(result.Removed), len(result.Kept))
			fmt.Printf("  Output: %s\n  Removed suffixes: %s\n", output, removed)
			fmt.Printf("  Word counts: min %d, max %d, avg %.1f\n", stats.MinWords, stats.MaxWords, stats.AvgWords)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Scraped JSON file (default files.scraped)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Deduplicated JSON file (default files.deduplicated)")
	cmd.Flags().StringVar(&removed, "removed", "", "Removed url suffix log (default files.removed)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Title similarity threshold in (0, 1]")
	cmd.Flags().BoolVar(&stem, "stem", false, "Compare stemmed title words")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every duplicate group")

	return cmd
}
