package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/aesop/internal/models"
	"github.com/xhad/aesop/pkg/index"
	"github.com/xhad/aesop/pkg/llm"
)

func queryCmd(a *app) *cobra.Command {
	var (
		topK   int
		answer bool
	)

	cmd := &cobra.Command{
		Use:   "query <text>...",
		Short: "Find the fables closest to a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			text := strings.Join(args, " ")
			if !cmd.Flags().Changed("top-k") {
				topK = a.config.Query.TopK
			}
			if topK <= 0 {
				return fmt.Errorf("top-k must be positive, got %d", topK)
			}

			vs, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer vs.Close()

			emb, err := a.newEmbedder()
			if err != nil {
				return err
			}

			spinner := getSpinner(" Searching fables...")
			matches, err := index.NewWithConfig(vs, emb, index.IndexerConfig{Logger: a.logger}).Search(ctx, text, topK)
			spinner.Finish()
			fmt.Print("\r")
			if err != nil {
				return err
			}

			printMatches(text, matches, a.config.Query.PreviewLen)

			if !answer {
				return nil
			}

			chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
				Model:       a.config.LLM.ChatModel,
				MaxTokens:   a.config.LLM.MaxTokens,
				Temperature: a.config.LLM.Temperature,
				BaseURL:     a.config.LLM.BaseURL,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize chat engine: %w", err)
			}

			spinner = getSpinner(" Generating answer...")
			response, err := chatEngine.Answer(ctx, text, matches)
			spinner.Finish()
			fmt.Print("\r")
			if err != nil {
				return err
			}

			color.New(color.FgCyan).Printf("\nAnswer: %s\n", response)
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of fables to return")
	cmd.Flags().BoolVar(&answer, "answer", false, "Ask the chat model to answer from the matched fables")

	return cmd
}

func printMatches(text string, matches []models.Match, previewLen int) {
	color.Cyan("\nQuery: %s", text)
	if len(matches) == 0 {
		color.Yellow("No fables found")
		return
	}

	fmt.Printf("Top %d results:\n", len(matches))
	for i, m := range matches {
		color.New(color.Bold).Printf("\n%d. %s\n", i+1, m.Metadata.Title)
		fmt.Printf("   Distance: %.3f | Word count: %d\n", m.Distance, m.Metadata.WordCount)
		fmt.Printf("   Preview: %s...\n", preview(m.Document, previewLen))
	}
}

// preview returns the first n runes of s on a single line.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n > 0 && len(r) > n {
		r = r[:n]
	}
	return string(r)
}
