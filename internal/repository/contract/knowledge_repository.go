package contract

import (
	"context"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
)

// ScoredDocument pairs a knowledge document with its cosine similarity to the
// query vector.
type ScoredDocument struct {
	Document   *entity.KnowledgeDocument
	Similarity float64
}

type KnowledgeRepository interface {
	Create(ctx context.Context, doc *entity.KnowledgeDocument) error

	// SearchSimilarWithScore runs a pgvector cosine search and returns matches
	// at or above the threshold, best first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredDocument, error)

	// SearchLexical is the keyword fallback when no embedding provider is
	// available or the vector search comes back empty.
	SearchLexical(ctx context.Context, query string, limit int) ([]*entity.KnowledgeDocument, error)
}
