package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("DATABASE_URL", "")

	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  base_url: "http://localhost:11434"
  embedding_model: "mxbai-embed-large"
  max_tokens: 1000
  temperature: 0.5

scraper:
  base_url: "https://fables.example.org"
  max_fables: 50
  rate_limit: 1.5
  timeout: 10s
  skip_errors: true

dedup:
  similarity_threshold: 0.8

database:
  backend: "pgvector"
  url: "postgres://localhost:5432/test"
  collection: "test_fables"
  vector_dim: 1024
  batch_size: 50

query:
  top_k: 3
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "mxbai-embed-large", config.LLM.EmbeddingModel)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "https://fables.example.org", config.Scraper.BaseURL)
	assert.Equal(t, 50, config.Scraper.MaxFables)
	assert.Equal(t, 10*time.Second, config.Scraper.Timeout)
	assert.True(t, config.Scraper.SkipErrors)
	assert.Equal(t, 0.8, config.Dedup.SimilarityThreshold)
	assert.Equal(t, "pgvector", config.Database.Backend)
	assert.Equal(t, "test_fables", config.Database.Collection)
	assert.Equal(t, 1024, config.Database.VectorDim)
	assert.Equal(t, 3, config.Query.TopK)

	// unset values fall back to defaults
	assert.Equal(t, "mistral", config.LLM.ChatModel)
	assert.Equal(t, "aesop_fables_deduplicated.json", config.Files.Deduplicated)
	assert.Equal(t, 150, config.Query.PreviewLen)
	assert.Empty(t, config.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfigIsValid(t *testing.T) {
	config, err := getDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", config.Database.Backend)
	assert.Equal(t, "aesop_fables", config.Database.Collection)
	assert.Equal(t, 822, config.Scraper.MaxFables)
	assert.Equal(t, 1.0, config.Dedup.SimilarityThreshold)
	assert.False(t, config.Dedup.Stem)
	assert.Equal(t, 0.7, config.LLM.Temperature)
	assert.Empty(t, config.Validate())
}

func TestLoadConfigTemperature(t *testing.T) {
	dir := t.TempDir()

	zero := filepath.Join(dir, "zero.yaml")
	require.NoError(t, os.WriteFile(zero, []byte("llm:\n  temperature: 0\n"), 0644))
	config, err := LoadConfig(zero)
	require.NoError(t, err)
	assert.Equal(t, 0.0, config.LLM.Temperature)
	assert.Empty(t, config.Validate())

	absent := filepath.Join(dir, "absent.yaml")
	require.NoError(t, os.WriteFile(absent, []byte("llm:\n  chat_model: llama3\n"), 0644))
	config, err = LoadConfig(absent)
	require.NoError(t, err)
	assert.Equal(t, 0.7, config.LLM.Temperature)
}

func TestLoadConfigProcessorAndDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
dedup:
  similarity_threshold: 0.9
  stem: true
processor:
  keep_boilerplate: true
  custom_noise:
    - "Process took:"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, config.Dedup.SimilarityThreshold)
	assert.True(t, config.Dedup.Stem)
	assert.True(t, config.Processor.KeepBoilerplate)
	assert.Equal(t, []string{"Process took:"}, config.Processor.CustomNoise)
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		c := Config{}
		applyDefaults(&c)
		return c
	}

	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "invalid llm",
			mutate: func(c *Config) {
				c.LLM.BaseURL = "invalid-url"
				c.LLM.MaxTokens = 5000
				c.LLM.Temperature = 3.0
			},
			errorMessages: []string{
				"llm.base_url: invalid Ollama base URL",
				"llm.max_tokens: max_tokens must be between 1 and 4096",
				"llm.temperature: temperature must be between 0 and 2",
			},
		},
		{
			name: "pgvector without url",
			mutate: func(c *Config) {
				c.Database.Backend = "pgvector"
				c.Database.VectorDim = -1
			},
			errorMessages: []string{
				"database.url: database URL is required for pgvector",
				"database.vector_dim: vector_dim must be positive",
			},
		},
		{
			name: "unknown backend and threshold",
			mutate: func(c *Config) {
				c.Dedup.SimilarityThreshold = 1.5
				c.Database.Backend = "chroma"
			},
			errorMessages: []string{
				"dedup.similarity_threshold: similarity_threshold must be in (0, 1]",
				"database.backend: backend must be one of sqlite, pgvector, qdrant",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			errors := config.Validate()
			require.Len(t, errors, len(tt.errorMessages))
			for i, msg := range tt.errorMessages {
				assert.Contains(t, errors[i].Error(), msg)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://env-ollama:11434")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/test")
	t.Setenv("QDRANT_HOST", "qdrant.internal")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "http://env-ollama:11434", config.LLM.BaseURL)
	assert.Equal(t, "postgres://env-db:5432/test", config.Database.URL)
	assert.Equal(t, "qdrant.internal", config.Database.QdrantHost)
}
