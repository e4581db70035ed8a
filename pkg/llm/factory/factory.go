package factory

import (
	"fmt"

	"docbox-be/pkg/llm"
	"docbox-be/pkg/llm/huggingface"
	"docbox-be/pkg/llm/ollama"
)

type Config struct {
	Provider string // "ollama" or "huggingface"

	OllamaBaseURL string
	OllamaModel   string

	HFApiKey  string
	HFBaseURL string
	HFModel   string
}

// NewLLMProvider builds a provider from config. Unknown provider names are
// a startup error, not a fallback.
func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	case "huggingface":
		if cfg.HFApiKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an api key")
		}
		return huggingface.NewHuggingFaceProvider(cfg.HFApiKey, cfg.HFBaseURL, cfg.HFModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
