package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/aesop/pkg/corpus"
	"github.com/xhad/aesop/pkg/index"
	"github.com/xhad/aesop/pkg/processor"
)

// Searches run after indexing as a smoke test.
var probeQueries = []string{"fox and grapes", "tortoise and hare", "lion and mouse"}

func embedCmd(a *app) *cobra.Command {
	var (
		input     string
		recreate  bool
		batchSize int
		noProbe   bool
	)

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed the deduplicated fables into the vector store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if input == "" {
				input = a.config.Files.Deduplicated
			}
			if !cmd.Flags().Changed("batch-size") {
				batchSize = a.config.Database.BatchSize
			}

			fables, err := corpus.Load(input)
			if err != nil {
				return err
			}
			color.Blue("Loaded %d fables from %s", len(fables), input)

			vs, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer vs.Close()

			emb, err := a.newEmbedder()
			if err != nil {
				return err
			}

			bar := getProgressBar(len(fables), "Embedding fables")
			ix := index.NewWithConfig(vs, emb, index.IndexerConfig{
				BatchSize: batchSize,
				Recreate:  recreate,
				Processor: processor.ProcessorConfig{
					KeepBoilerplate: a.config.Processor.KeepBoilerplate,
					CustomNoise:     a.config.Processor.CustomNoise,
				},
				Logger:     a.logger,
				OnProgress: func(done, _ int) {
					bar.Set(done)
				},
			})

			n, err := ix.Index(ctx, fables)
			bar.Finish()
			if err != nil {
				return fmt.Errorf("failed to embed fables: %w", err)
			}
			color.Green("\n✓ Embedded %d fables with %s", n, emb.Model())

			if !noProbe {
				if err := runProbes(ctx, ix); err != nil {
					return err
				}
			}

			count, err := vs.Count(ctx)
			if err != nil {
				return err
			}
			color.Cyan("\nCollection %s holds %d fables", a.config.Database.Collection, count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Deduplicated JSON file (default files.deduplicated)")
	cmd.Flags().BoolVar(&recreate, "recreate", true, "Empty the collection before indexing")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Fables per embedding request (default database.batch_size)")
	cmd.Flags().BoolVar(&noProbe, "no-probe", false, "Skip the test searches after indexing")

	return cmd
}

func runProbes(ctx context.Context, ix *index.Indexer) error {
	color.Cyan("\nTesting search:")
	for _, q := range probeQueries {
		matches, err := ix.Search(ctx, q, 3)
		if err != nil {
			return fmt.Errorf("probe search %q: %w", q, err)
		}

		fmt.Printf("\n  %s:\n", q)
		for i, m := range matches {
			fmt.Printf("    %d. %s (distance %.3f)\n", i+1, m.Metadata.Title, m.Distance)
		}
	}
	return nil
}
