package factory

import (
	"fmt"

	"github.com/fahim-ux/hsbc-backend-sub000/pkg/llm"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/llm/gemini"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/llm/huggingface"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/llm/ollama"
)

// NewLLMProvider builds the configured model backend. apiKey is ignored by
// backends that do not need one.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewProvider(baseURL, modelName), nil
	case "gemini":
		return gemini.NewProvider(apiKey, modelName), nil
	case "huggingface":
		return huggingface.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
