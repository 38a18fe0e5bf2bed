package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	Dedup     DedupConfig     `yaml:"dedup"`
	Processor ProcessorConfig `yaml:"processor"`
	Database  DatabaseConfig  `yaml:"database"`
	Files     FilesConfig     `yaml:"files"`
	Query     QueryConfig     `yaml:"query"`
	Log       LogConfig       `yaml:"log"`
}

type LLMConfig struct {
	BaseURL        string  `yaml:"base_url"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ChatModel      string  `yaml:"chat_model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
}

type ScraperConfig struct {
	BaseURL    string        `yaml:"base_url"`
	MaxFables  int           `yaml:"max_fables"`
	RateLimit  float64       `yaml:"rate_limit"`
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	CachePath  string        `yaml:"cache_path"`
	SkipErrors bool          `yaml:"skip_errors"`
}

type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	Stem                bool    `yaml:"stem"`
}

// ProcessorConfig controls how fable text is cleaned before embedding.
type ProcessorConfig struct {
	KeepBoilerplate bool     `yaml:"keep_boilerplate"`
	CustomNoise     []string `yaml:"custom_noise"`
}

type DatabaseConfig struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	URL        string `yaml:"url"`
	QdrantHost string `yaml:"qdrant_host"`
	QdrantPort int    `yaml:"qdrant_port"`
	Collection string `yaml:"collection"`
	VectorDim  int    `yaml:"vector_dim"`
	BatchSize  int    `yaml:"batch_size"`
}

type FilesConfig struct {
	Scraped      string `yaml:"scraped"`
	Deduplicated string `yaml:"deduplicated"`
	Removed      string `yaml:"removed"`
	ExportDir    string `yaml:"export_dir"`
}

type QueryConfig struct {
	TopK       int `yaml:"top_k"`
	PreviewLen int `yaml:"preview_len"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/aesop/config.yaml"),
			"/etc/aesop/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := newConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

// newConfig holds defaults whose zero value is a valid setting, so they can
// only be applied when the key is absent from the file.
func newConfig() Config {
	return Config{
		LLM: LLMConfig{Temperature: 0.7},
	}
}

func getDefaultConfig() (*Config, error) {
	config := newConfig()
	applyDefaults(&config)
	mergeWithEnv(&config)
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.BaseURL == "" {
		config.LLM.BaseURL = "http://localhost:11434"
	}
	if config.LLM.EmbeddingModel == "" {
		config.LLM.EmbeddingModel = "nomic-embed-text:latest"
	}
	if config.LLM.ChatModel == "" {
		config.LLM.ChatModel = "mistral"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}

	if config.Scraper.BaseURL == "" {
		config.Scraper.BaseURL = "https://aesopfables.com"
	}
	if config.Scraper.MaxFables == 0 {
		config.Scraper.MaxFables = 822
	}
	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if config.Scraper.Timeout == 0 {
		config.Scraper.Timeout = 30 * time.Second
	}

	if config.Dedup.SimilarityThreshold == 0 {
		config.Dedup.SimilarityThreshold = 1.0
	}

	if config.Database.Backend == "" {
		config.Database.Backend = "sqlite"
	}
	if config.Database.Path == "" {
		config.Database.Path = "./fables_db"
	}
	if config.Database.QdrantHost == "" {
		config.Database.QdrantHost = "localhost"
	}
	if config.Database.QdrantPort == 0 {
		config.Database.QdrantPort = 6334
	}
	if config.Database.Collection == "" {
		config.Database.Collection = "aesop_fables"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}

	if config.Files.Scraped == "" {
		config.Files.Scraped = "aesop_fables.json"
	}
	if config.Files.Deduplicated == "" {
		config.Files.Deduplicated = "aesop_fables_deduplicated.json"
	}
	if config.Files.Removed == "" {
		config.Files.Removed = "removed_stories.txt"
	}
	if config.Files.ExportDir == "" {
		config.Files.ExportDir = "export"
	}

	if config.Query.TopK == 0 {
		config.Query.TopK = 5
	}
	if config.Query.PreviewLen == 0 {
		config.Query.PreviewLen = 150
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "console"
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		config.Database.QdrantHost = host
	}
}
