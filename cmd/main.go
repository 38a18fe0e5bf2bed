package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/aesop/internal/types"
	cfgPkg "github.com/xhad/aesop/pkg/config"
	"github.com/xhad/aesop/pkg/llm"
	"github.com/xhad/aesop/pkg/logging"
	"github.com/xhad/aesop/pkg/store"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	ollamaURL  string
	dbURL      string

	config *cfgPkg.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	rootCmd := &cobra.Command{
		Use:               "aesop",
		Short:             "Scrape, deduplicate, embed and search Aesop's fables",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.ollamaURL, "ollama-url", "", "Ollama server URL")
	flags.StringVar(&a.dbURL, "db-url", "", "PostgreSQL connection string for the pgvector backend")

	rootCmd.AddCommand(
		scrapeCmd(a),
		dedupCmd(a),
		embedCmd(a),
		queryCmd(a),
		exportCmd(a),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := cfgPkg.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	// Command line flags win over the config file and environment
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.ollamaURL != "" {
		cfg.LLM.BaseURL = a.ollamaURL
	}
	if a.dbURL != "" {
		cfg.Database.URL = a.dbURL
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("  %s: %s", e.Field, e.Message)
		}
		return fmt.Errorf("invalid configuration (%d errors)", len(errs))
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.config = cfg
	a.logger = logger
	a.logger.Debug("configuration loaded", zap.String("command", cmd.Name()))
	return nil
}

func (a *app) openStore(ctx context.Context) (types.VectorStore, error) {
	db := a.config.Database
	vs, err := store.Open(ctx, store.Config{
		Backend:    db.Backend,
		Path:       db.Path,
		URL:        db.URL,
		QdrantHost: db.QdrantHost,
		QdrantPort: db.QdrantPort,
		Collection: db.Collection,
		VectorDim:  db.VectorDim,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}
	return vs, nil
}

func (a *app) newEmbedder() (*llm.Embedder, error) {
	emb, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     a.config.LLM.EmbeddingModel,
		BaseURL:   a.config.LLM.BaseURL,
		BatchSize: a.config.Database.BatchSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return emb, nil
}
