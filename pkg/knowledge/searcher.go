package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/embedding"
)

// Config encapsulates retrieval parameters.
type Config struct {
	Threshold float64
	TopK      int
}

func DefaultConfig() Config {
	return Config{
		Threshold: 0.35,
		TopK:      3,
	}
}

// Searcher answers free-form banking questions from the knowledge base.
// Vector search first; when the embedder is missing, fails, or finds nothing
// above the threshold, keyword search takes over.
type Searcher struct {
	embedder embedding.Provider
	repo     contract.KnowledgeRepository
	config   Config
	logger   logger.ILogger
}

func NewSearcher(embedder embedding.Provider, repo contract.KnowledgeRepository, config Config, log logger.ILogger) *Searcher {
	if config.TopK <= 0 {
		config = DefaultConfig()
	}
	return &Searcher{
		embedder: embedder,
		repo:     repo,
		config:   config,
		logger:   log,
	}
}

// Search returns a short prose answer assembled from the best-matching
// documents, or an error when nothing relevant exists.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("empty query")
	}

	if s.embedder != nil {
		if answer, ok := s.searchVector(ctx, query); ok {
			return answer, nil
		}
	}

	docs, err := s.repo.SearchLexical(ctx, keywordFor(query), s.config.TopK)
	if err != nil {
		return "", fmt.Errorf("lexical search: %w", err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("no knowledge documents match %q", query)
	}

	s.logger.Debug("Knowledge", "Lexical fallback answered query", map[string]interface{}{
		"query":   query,
		"matches": len(docs),
	})
	return docs[0].Content, nil
}

func (s *Searcher) searchVector(ctx context.Context, query string) (string, bool) {
	vec, err := s.embedder.Embed(ctx, query, embedding.TaskQuery)
	if err != nil {
		s.logger.Warn("Knowledge", "Embedding failed, falling back to lexical", map[string]interface{}{
			"error": err.Error(),
		})
		return "", false
	}

	scored, err := s.repo.SearchSimilarWithScore(ctx, vec, s.config.TopK, s.config.Threshold)
	if err != nil {
		s.logger.Warn("Knowledge", "Vector search failed, falling back to lexical", map[string]interface{}{
			"error": err.Error(),
		})
		return "", false
	}
	if len(scored) == 0 {
		return "", false
	}

	s.logger.Debug("Knowledge", "Vector search answered query", map[string]interface{}{
		"query":      query,
		"matches":    len(scored),
		"best_score": scored[0].Similarity,
	})
	return scored[0].Document.Content, true
}

// keywordFor strips question scaffolding so ILIKE matches on the topic words.
func keywordFor(query string) string {
	lower := strings.ToLower(query)
	for _, prefix := range []string{"what is", "what are", "how do i", "how do", "how to", "tell me about"} {
		if strings.HasPrefix(lower, prefix) {
			lower = strings.TrimSpace(lower[len(prefix):])
			break
		}
	}
	return strings.Trim(lower, " ?.!")
}
