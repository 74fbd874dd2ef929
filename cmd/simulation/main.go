// Scripted end-to-end conversation against the dialogue engine with canned
// collaborators. No database, language service or network required: useful
// for eyeballing phase transitions and reply wording.
package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/bank"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/executor"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/extractor"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/intent"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/nlu"

	"github.com/fatih/color"
)

// scriptedClassifier answers from a fixed utterance table so the run is
// deterministic.
type scriptedClassifier struct {
	script map[string]*nlu.Classification
}

func (s *scriptedClassifier) Classify(ctx context.Context, utterance string, historyTail []string) (*nlu.Classification, error) {
	if c, ok := s.script[strings.ToLower(strings.TrimSpace(utterance))]; ok {
		return c, nil
	}
	return &nlu.Classification{Intent: "general_inquiry", Confidence: 0.3}, nil
}

type demoBank struct{}

func (demoBank) BalanceInquiry(ctx context.Context, userID string) (*bank.BalanceResult, error) {
	return &bank.BalanceResult{Balance: 12450.75, AccountType: "savings"}, nil
}

func (demoBank) Transfer(ctx context.Context, userID, toAccount string, amount float64, description string) (*bank.TransferResult, error) {
	return &bank.TransferResult{TransactionID: "TXN-DEMO-0001"}, nil
}

func (demoBank) BlockCard(ctx context.Context, userID, cardNumber string) (*bank.CardBlockResult, error) {
	return &bank.CardBlockResult{Status: "blocked"}, nil
}

func (demoBank) ApplyLoan(ctx context.Context, userID, loanType string, amount float64, tenureMonths int) (*bank.LoanResult, error) {
	return &bank.LoanResult{ApplicationID: "LN-DEMO-0001", Status: "under_review"}, nil
}

func (demoBank) FileComplaint(ctx context.Context, userID, subject, description, category string) (*bank.ComplaintResult, error) {
	return &bank.ComplaintResult{ComplaintID: "CMP-DEMO-0001"}, nil
}

func (demoBank) LookupInformation(ctx context.Context, query string) (*bank.InformationResult, error) {
	return &bank.InformationResult{Summary: "Our branches are open Monday to Friday, 9 AM to 5 PM."}, nil
}

// memoryStore is a plain map store; the demo is single-goroutine but the
// engine still takes its per-conversation lock.
type memoryStore struct {
	mu   sync.Mutex
	data map[string]*dialogue.ConversationContext
}

func (m *memoryStore) Get(id string) (*dialogue.ConversationContext, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data[id]
	return c, ok
}

func (m *memoryStore) Put(c *dialogue.ConversationContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[c.Id] = c
}

func (m *memoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
}

func main() {
	fmt.Println("=== Banking Assistant Simulation ===")

	classifier := &scriptedClassifier{script: map[string]*nlu.Classification{
		"i want to send some money": {Intent: "transfer", Confidence: 0.92},
		"what are your working hours": {
			Intent: "information_lookup", Confidence: 0.88,
			Entities: map[string]string{"query": "working hours"},
		},
		"actually i need to block my card": {Intent: "card_block", Confidence: 0.9},
	}}

	log := logger.NewNopLogger()
	store := &memoryStore{data: make(map[string]*dialogue.ConversationContext)}
	engine := dialogue.NewEngine(
		store,
		intent.NewRouter(classifier, 0.6, log),
		extractor.New(classifier, log),
		executor.New(demoBank{}, log),
		log,
		0, 0,
	)

	script := []string{
		"hello",
		"i want to send some money",
		"send it to account 9876543210",
		"1500 dollars",
		"yes",
		"what are your working hours",
		"actually i need to block my card",
		"card ending 4532",
		"yes",
		"thanks, bye",
	}

	userSays := color.New(color.FgCyan, color.Bold)
	botSays := color.New(color.FgGreen)
	phaseNote := color.New(color.FgYellow, color.Faint)

	ctx := context.Background()
	for _, line := range script {
		userSays.Printf("you> %s\n", line)

		turn, err := engine.ProcessMessage(ctx, "sim-conversation", "sim-user", line)
		if err != nil {
			log.Error("Simulation", "turn failed", map[string]interface{}{"error": err.Error()})
			continue
		}

		botSays.Printf("bot> %s\n", turn.Reply)
		phaseNote.Printf("     [phase=%s task=%s]\n\n", turn.Context.Phase, turn.Context.CurrentTask)
	}

	fmt.Println("=== Simulation complete ===")
}
