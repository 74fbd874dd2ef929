package embedding

import (
	"context"
	"fmt"
	"math"
)

// Task types hint retrieval-tuned models about how the vector will be used.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Provider generates a text embedding. Vectors are normalized to unit length
// so cosine distance in pgvector is meaningful.
type Provider interface {
	Embed(ctx context.Context, text, taskType string) ([]float32, error)
}

// NewProvider builds the configured embedding backend.
func NewProvider(providerType, baseURL, apiKey, model string) (Provider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	case "gemini":
		return NewGeminiProvider(apiKey), nil
	case "jina":
		return NewJinaProvider(apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}

// normalize scales a vector to unit length. Cosine distance in pgvector
// assumes normalized vectors.
func normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
