package extractor

import (
	"context"
	"reflect"
	"testing"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/catalog"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/nlu"
)

// stubClassifier returns canned entities for fallback extraction.
type stubClassifier struct {
	entities map[string]string
	calls    int
}

func (s *stubClassifier) Classify(_ context.Context, _ string, _ []string) (*nlu.Classification, error) {
	s.calls++
	return &nlu.Classification{Intent: "general_inquiry", Confidence: 0.9, Entities: s.entities}, nil
}

func TestExtractDeterministic(t *testing.T) {
	tests := []struct {
		name      string
		task      catalog.TaskType
		utterance string
		missing   []string
		want      map[string]string
	}{
		{
			name:      "loan type enum",
			task:      catalog.TaskLoanApply,
			utterance: "personal",
			missing:   []string{"loan_type", "amount", "tenure"},
			want:      map[string]string{"loan_type": "personal"},
		},
		{
			name:      "loan type inside a sentence",
			task:      catalog.TaskLoanApply,
			utterance: "I'd like a Home loan please",
			missing:   []string{"loan_type", "amount", "tenure"},
			want:      map[string]string{"loan_type": "home"},
		},
		{
			name:      "plain amount",
			task:      catalog.TaskLoanApply,
			utterance: "50000",
			missing:   []string{"amount", "tenure"},
			want:      map[string]string{"amount": "50000"},
		},
		{
			name:      "amount with scale word",
			task:      catalog.TaskLoanApply,
			utterance: "about 50k",
			missing:   []string{"amount", "tenure"},
			want:      map[string]string{"amount": "50000"},
		},
		{
			name:      "tenure with unit",
			task:      catalog.TaskLoanApply,
			utterance: "36 months",
			missing:   []string{"tenure"},
			want:      map[string]string{"tenure": "36"},
		},
		{
			name:      "bare number fills tenure when it is the only missing field",
			task:      catalog.TaskLoanApply,
			utterance: "36",
			missing:   []string{"tenure"},
			want:      map[string]string{"tenure": "36"},
		},
		{
			name:      "card suffix",
			task:      catalog.TaskCardBlock,
			utterance: "it's 1234",
			missing:   []string{"card_number"},
			want:      map[string]string{"card_number": "1234"},
		},
		{
			name:      "transfer account and amount from one utterance",
			task:      catalog.TaskTransfer,
			utterance: "send 500 to 12345678",
			missing:   []string{"to_account", "amount"},
			want:      map[string]string{"to_account": "12345678", "amount": "500"},
		},
		{
			name:      "account number alone is not mistaken for an amount",
			task:      catalog.TaskTransfer,
			utterance: "12345678",
			missing:   []string{"to_account", "amount"},
			want:      map[string]string{"to_account": "12345678"},
		},
		{
			name:      "complaint category enum",
			task:      catalog.TaskComplaintFile,
			utterance: "it's a card problem",
			missing:   []string{"category"},
			want:      map[string]string{"category": "card"},
		},
		{
			name:      "free text fills the awaited subject",
			task:      catalog.TaskComplaintFile,
			utterance: "ATM did not dispense cash",
			missing:   []string{"subject", "description", "category"},
			want:      map[string]string{"subject": "ATM did not dispense cash"},
		},
		{
			name:      "subject survives a category keyword in the same answer",
			task:      catalog.TaskComplaintFile,
			utterance: "my card was charged twice",
			missing:   []string{"subject", "description", "category"},
			want:      map[string]string{"subject": "my card was charged twice", "category": "card"},
		},
		{
			name:      "nothing extractable",
			task:      catalog.TaskLoanApply,
			utterance: "hmm let me think",
			missing:   []string{"loan_type", "amount", "tenure"},
			want:      map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractDeterministic(tt.task, tt.utterance, tt.missing)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractDeterministic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	e := New(nil, logger.NewNopLogger())
	missing := []string{"to_account", "amount"}

	first := e.Extract(context.Background(), catalog.TaskTransfer, "send 500 to 12345678", missing)
	second := e.Extract(context.Background(), catalog.TaskTransfer, "send 500 to 12345678", missing)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction is not idempotent: %v vs %v", first, second)
	}
}

func TestExtractFallsBackToClassifier(t *testing.T) {
	stub := &stubClassifier{entities: map[string]string{"amount": "250"}}
	e := New(stub, logger.NewNopLogger())

	// The account matches deterministically, so only the amount should come
	// from the collaborator.
	got := e.Extract(context.Background(), catalog.TaskTransfer,
		"send some money to 12345678", []string{"to_account", "amount"})

	if got["to_account"] != "12345678" {
		t.Errorf("to_account = %q, want deterministic match %q", got["to_account"], "12345678")
	}
	if got["amount"] != "250" {
		t.Errorf("amount = %q, want collaborator entity", got["amount"])
	}
	if stub.calls != 1 {
		t.Errorf("classifier calls = %d, want 1", stub.calls)
	}
}

func TestExtractSkipsFallbackWhenComplete(t *testing.T) {
	stub := &stubClassifier{entities: map[string]string{"card_number": "9999"}}
	e := New(stub, logger.NewNopLogger())

	got := e.Extract(context.Background(), catalog.TaskCardBlock, "1234", []string{"card_number"})

	if got["card_number"] != "1234" {
		t.Errorf("card_number = %q, want deterministic 1234", got["card_number"])
	}
	if stub.calls != 0 {
		t.Errorf("classifier should not be called when patterns succeed, got %d calls", stub.calls)
	}
}
