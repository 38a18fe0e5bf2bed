package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/aesop/pkg/corpus"
	"github.com/xhad/aesop/pkg/scraper"
	"go.uber.org/zap"
)

func scrapeCmd(a *app) *cobra.Command {
	var (
		output     string
		maxFables  int
		skipErrors bool
		cachePath  string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Download every fable from the source site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := a.config.Scraper

			if output == "" {
				output = a.config.Files.Scraped
			}
			if cmd.Flags().Changed("max-fables") {
				cfg.MaxFables = maxFables
			}
			if cmd.Flags().Changed("skip-errors") {
				cfg.SkipErrors = skipErrors
			}
			if cmd.Flags().Changed("cache") {
				cfg.CachePath = cachePath
			}

			var cache *scraper.PageCache
			if cfg.CachePath != "" {
				c, err := scraper.OpenPageCache(cfg.CachePath)
				if err != nil {
					return err
				}
				defer c.Close()
				cache = c
			}

			color.Blue("\nScraping fables from %s\n", cfg.BaseURL)
			bar := startRateBar(-1, "Scraping fables", "pages")

			s, err := scraper.NewWithConfig(scraper.ScraperConfig{
				BaseURL:    cfg.BaseURL,
				MaxFables:  cfg.MaxFables,
				RateLimit:  cfg.RateLimit,
				Timeout:    cfg.Timeout,
				UserAgent:  cfg.UserAgent,
				SkipErrors: cfg.SkipErrors,
				Cache:      cache,
				Logger:     a.logger,
				OnProgress: func(string) { bar.Add(1) },
			})
			if err != nil {
				bar.Finish()
				return fmt.Errorf("failed to initialize scraper: %w", err)
			}

			fables, err := s.Scrape(ctx)
			bar.Finish()
			if err != nil {
				return fmt.Errorf("failed to scrape fables: %w", err)
			}

			if err := corpus.Save(output, fables); err != nil {
				return err
			}

			a.logger.Info("scrape finished", zap.Int("fables", len(fables)), zap.String("output", output))
			color.Green("\n✓ Scraped %d fables into %s\n", len(fables), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output JSON file (default files.scraped)")
	cmd.Flags().IntVar(&maxFables, "max-fables", 0, "Number of search results to request")
	cmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "Skip fables that fail to download instead of aborting")
	cmd.Flags().StringVar(&cachePath, "cache", "", "bbolt page cache file")

	return cmd
}
