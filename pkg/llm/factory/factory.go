package factory

import (
	"context"
	"fmt"

	"policygen/pkg/llm"
	"policygen/pkg/llm/gemini"
	"policygen/pkg/llm/huggingface"
	"policygen/pkg/llm/ollama"
)

type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "":
		return gemini.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
