package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/xhad/aesop/internal/models"
)

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	SystemTemplate  string
	ContextTemplate string
	BaseURL         string // Ollama server URL
}

// ChatEngine answers questions about the fables returned by a search.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Model == "" {
		config.Model = "mistral" // Default Ollama model
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "You are a storyteller who knows Aesop's fables. Answer using only the fables provided."
	}
	if config.ContextTemplate == "" {
		config.ContextTemplate = "Fables:\n%s\nQuestion: %s"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	llm, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return newChatEngine(config, llm), nil
}

func newChatEngine(config ChatConfig, model llms.Model) *ChatEngine {
	return &ChatEngine{
		config: config,
		llm:    model,
	}
}

// Answer generates a response to question grounded on the matched fables.
func (ce *ChatEngine) Answer(ctx context.Context, question string, matches []models.Match) (string, error) {
	content := ce.messages(question, matches)

	response, err := ce.llm.GenerateContent(ctx, content,
		llms.WithTemperature(ce.config.Temperature),
		llms.WithMaxTokens(ce.config.MaxTokens))
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if response == nil || len(response.Choices) == 0 {
		return "", fmt.Errorf("chat error: no response from LLM")
	}

	answer := strings.TrimSpace(response.Choices[0].Content)
	return answer + ce.formatSources(matches), nil
}

func (ce *ChatEngine) messages(question string, matches []models.Match) []llms.MessageContent {
	var contextBuilder strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&contextBuilder, "Title: %s\nSource: %s\n%s\n\n", m.Metadata.Title, m.Metadata.URL, m.Document)
	}

	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, ce.config.SystemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(ce.config.ContextTemplate, contextBuilder.String(), question)),
	}
}

// formatSources formats the sources for citation.
func (ce *ChatEngine) formatSources(matches []models.Match) string {
	var sources []string
	seen := make(map[string]bool)

	for _, m := range matches {
		if m.Metadata.URL != "" && !seen[m.Metadata.URL] {
			sources = append(sources, m.Metadata.URL)
			seen[m.Metadata.URL] = true
		}
	}

	if len(sources) == 0 {
		return ""
	}

	return fmt.Sprintf("\n\nSources:\n%s", strings.Join(sources, "\n"))
}
