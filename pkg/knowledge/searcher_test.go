package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return make([]float32, 768), nil
}

type stubRepo struct {
	scored       []*contract.ScoredDocument
	scoredErr    error
	lexical      []*entity.KnowledgeDocument
	lexicalErr   error
	lexicalQuery string
}

func (s *stubRepo) Create(ctx context.Context, doc *entity.KnowledgeDocument) error { return nil }

func (s *stubRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredDocument, error) {
	return s.scored, s.scoredErr
}

func (s *stubRepo) SearchLexical(ctx context.Context, query string, limit int) ([]*entity.KnowledgeDocument, error) {
	s.lexicalQuery = query
	return s.lexical, s.lexicalErr
}

func doc(content string) *entity.KnowledgeDocument {
	return &entity.KnowledgeDocument{Topic: "t", Content: content}
}

func TestSearchPrefersVectorMatch(t *testing.T) {
	repo := &stubRepo{
		scored: []*contract.ScoredDocument{
			{Document: doc("vector answer"), Similarity: 0.82},
		},
		lexical: []*entity.KnowledgeDocument{doc("lexical answer")},
	}
	s := NewSearcher(&stubEmbedder{}, repo, DefaultConfig(), logger.NewNopLogger())

	got, err := s.Search(context.Background(), "what are your transfer limits")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if got != "vector answer" {
		t.Errorf("answer = %q, want the vector result", got)
	}
}

func TestSearchFallsBackWhenVectorEmpty(t *testing.T) {
	repo := &stubRepo{
		scored:  nil,
		lexical: []*entity.KnowledgeDocument{doc("lexical answer")},
	}
	s := NewSearcher(&stubEmbedder{}, repo, DefaultConfig(), logger.NewNopLogger())

	got, err := s.Search(context.Background(), "what are your transfer limits")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if got != "lexical answer" {
		t.Errorf("answer = %q, want the lexical result", got)
	}
	if repo.lexicalQuery != "your transfer limits" {
		t.Errorf("lexical query = %q, want question scaffolding stripped", repo.lexicalQuery)
	}
}

func TestSearchFallsBackWhenEmbedderFails(t *testing.T) {
	repo := &stubRepo{lexical: []*entity.KnowledgeDocument{doc("lexical answer")}}
	s := NewSearcher(&stubEmbedder{err: errors.New("embedding service down")}, repo, DefaultConfig(), logger.NewNopLogger())

	got, err := s.Search(context.Background(), "transfer limits")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if got != "lexical answer" {
		t.Errorf("answer = %q, want the lexical result", got)
	}
}

func TestSearchWithoutEmbedderUsesLexicalOnly(t *testing.T) {
	repo := &stubRepo{lexical: []*entity.KnowledgeDocument{doc("lexical answer")}}
	s := NewSearcher(nil, repo, DefaultConfig(), logger.NewNopLogger())

	got, err := s.Search(context.Background(), "card charges")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if got != "lexical answer" {
		t.Errorf("answer = %q, want the lexical result", got)
	}
}

func TestSearchNoMatchIsAnError(t *testing.T) {
	s := NewSearcher(nil, &stubRepo{}, DefaultConfig(), logger.NewNopLogger())
	if _, err := s.Search(context.Background(), "quantum mortgages"); err == nil {
		t.Fatal("expected error when nothing matches")
	}
}

func TestSearchEmptyQueryIsAnError(t *testing.T) {
	s := NewSearcher(nil, &stubRepo{}, DefaultConfig(), logger.NewNopLogger())
	if _, err := s.Search(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestKeywordFor(t *testing.T) {
	cases := []struct{ in, want string }{
		{"What is a savings account?", "a savings account"},
		{"how do i raise my transfer limit", "raise my transfer limit"},
		{"tell me about loan interest rates", "loan interest rates"},
		{"working hours", "working hours"},
	}
	for _, tc := range cases {
		if got := keywordFor(tc.in); got != tc.want {
			t.Errorf("keywordFor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
