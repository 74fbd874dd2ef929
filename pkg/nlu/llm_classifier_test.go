package nlu

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/llm"
)

type stubProvider struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	return s.response, s.err
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	s.lastPrompt = prompt
	return s.response, s.err
}

func TestClassifyParsesPlainJSON(t *testing.T) {
	provider := &stubProvider{response: `{"intent": "transfer", "confidence": 0.92, "entities": {"amount": "500"}}`}
	c := NewLLMClassifier(provider, logger.NewNopLogger())

	got, err := c.Classify(context.Background(), "send 500 to my landlord", nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.Intent != "transfer" {
		t.Errorf("intent = %q, want %q", got.Intent, "transfer")
	}
	if got.Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", got.Confidence)
	}
	if got.Entities["amount"] != "500" {
		t.Errorf("entities = %v, want amount=500", got.Entities)
	}
}

func TestClassifyExtractsJSONFromProse(t *testing.T) {
	// Models routinely wrap the JSON in markdown fences or commentary.
	provider := &stubProvider{response: "Sure! Here is the classification:\n```json\n{\"intent\": \"CARD_BLOCK\", \"confidence\": 0.8, \"entities\": {}}\n```"}
	c := NewLLMClassifier(provider, logger.NewNopLogger())

	got, err := c.Classify(context.Background(), "my card is gone", nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.Intent != "card_block" {
		t.Errorf("intent = %q, want lowercased %q", got.Intent, "card_block")
	}
}

func TestClassifyClampsConfidence(t *testing.T) {
	cases := []struct {
		response string
		want     float64
	}{
		{`{"intent": "balance", "confidence": 1.7}`, 1},
		{`{"intent": "balance", "confidence": -0.2}`, 0},
	}
	for _, tc := range cases {
		provider := &stubProvider{response: tc.response}
		c := NewLLMClassifier(provider, logger.NewNopLogger())

		got, err := c.Classify(context.Background(), "balance please", nil)
		if err != nil {
			t.Fatalf("Classify returned error: %v", err)
		}
		if got.Confidence != tc.want {
			t.Errorf("confidence for %s = %v, want %v", tc.response, got.Confidence, tc.want)
		}
	}
}

func TestClassifyNilEntitiesBecomeEmptyMap(t *testing.T) {
	provider := &stubProvider{response: `{"intent": "general_inquiry", "confidence": 0.5}`}
	c := NewLLMClassifier(provider, logger.NewNopLogger())

	got, err := c.Classify(context.Background(), "hmm", nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if got.Entities == nil {
		t.Error("entities should never be nil")
	}
}

func TestClassifyProviderErrorIsPropagated(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	c := NewLLMClassifier(provider, logger.NewNopLogger())

	if _, err := c.Classify(context.Background(), "hello", nil); err == nil {
		t.Fatal("expected error when provider fails")
	}
}

func TestClassifyRejectsNonJSONResponse(t *testing.T) {
	provider := &stubProvider{response: "I think the user wants a transfer."}
	c := NewLLMClassifier(provider, logger.NewNopLogger())

	if _, err := c.Classify(context.Background(), "send money", nil); err == nil {
		t.Fatal("expected error for response with no JSON")
	}
}

func TestPromptCarriesUtteranceAndHistory(t *testing.T) {
	provider := &stubProvider{response: `{"intent": "transfer", "confidence": 0.9}`}
	c := NewLLMClassifier(provider, logger.NewNopLogger())

	_, err := c.Classify(context.Background(), "send it there", []string{"user: i want to pay rent"})
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !strings.Contains(provider.lastPrompt, "send it there") {
		t.Error("prompt missing the utterance")
	}
	if !strings.Contains(provider.lastPrompt, "i want to pay rent") {
		t.Error("prompt missing the history tail")
	}
	if !strings.Contains(provider.lastPrompt, "clarification_needed") {
		t.Error("prompt missing the output contract")
	}
}
