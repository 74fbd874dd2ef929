package dialogue_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/bank"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/catalog"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/executor"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/extractor"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/intent"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/nlu"
)

// mapStore is a plain in-memory ContextStore for tests.
type mapStore struct {
	mu sync.Mutex
	m  map[string]*dialogue.ConversationContext
}

func newMapStore() *mapStore {
	return &mapStore{m: make(map[string]*dialogue.ConversationContext)}
}

func (s *mapStore) Get(id string) (*dialogue.ConversationContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[id]
	return c, ok
}

func (s *mapStore) Put(c *dialogue.ConversationContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.Id] = c
}

func (s *mapStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

// scriptedClassifier answers from a fixed utterance→classification table, so
// scenario tests run without a live model.
type scriptedClassifier struct {
	script    map[string]*nlu.Classification
	err       error
	panicNext bool
}

func (s *scriptedClassifier) Classify(_ context.Context, utterance string, _ []string) (*nlu.Classification, error) {
	if s.panicNext {
		s.panicNext = false
		panic("classifier blew up")
	}
	if s.err != nil {
		return nil, s.err
	}
	if c, ok := s.script[strings.ToLower(strings.TrimSpace(utterance))]; ok {
		return c, nil
	}
	return &nlu.Classification{Intent: "general_inquiry", Confidence: 0.9}, nil
}

func newTestEngine(classifier nlu.Classifier, ops bank.Operations) (*dialogue.Engine, *mapStore) {
	log := logger.NewNopLogger()
	store := newMapStore()
	engine := dialogue.NewEngine(
		store,
		intent.NewRouter(classifier, 0.6, log),
		extractor.New(nil, log),
		executor.New(ops, log),
		log,
		0, 0,
	)
	return engine, store
}

func say(t *testing.T, e *dialogue.Engine, conversationID, text string) *dialogue.Turn {
	t.Helper()
	turn, err := e.ProcessMessage(context.Background(), conversationID, "user-1", text)
	require.NoError(t, err)
	require.NotNil(t, turn)
	return turn
}

func TestBalanceScenario(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"what's my balance": {Intent: "balance_inquiry", Confidence: 0.95},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})

	turn := say(t, engine, "conv-balance", "hi")
	assert.Equal(t, dialogue.PhaseGreeting, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "banking assistant")

	turn = say(t, engine, "conv-balance", "what's my balance")
	assert.Equal(t, dialogue.PhaseCompletion, turn.Context.Phase)
	assert.Equal(t, dialogue.TaskStatusCompleted, turn.Context.LastTaskStatus)
	assert.Contains(t, turn.Reply, "$12,450.75")
	require.NotNil(t, turn.Outcome)
	assert.Equal(t, catalog.TaskBalanceInquiry, turn.Outcome.Task)
	assert.Equal(t, dialogue.TaskStatusCompleted, turn.Outcome.Status)
}

func TestLoanHappyPath(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"i want a loan": {Intent: "loan_apply", Confidence: 0.9},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-loan"

	turn := say(t, engine, conv, "I want a loan")
	assert.Equal(t, dialogue.PhaseSlotFilling, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "type of loan")

	turn = say(t, engine, conv, "personal")
	assert.Contains(t, turn.Reply, "borrow")

	turn = say(t, engine, conv, "50000")
	assert.Contains(t, turn.Reply, "repay")

	turn = say(t, engine, conv, "36")
	assert.Equal(t, dialogue.PhaseConfirmation, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "personal")
	assert.Contains(t, turn.Reply, "50000")
	assert.Contains(t, turn.Reply, "Shall I go ahead?")

	turn = say(t, engine, conv, "yes")
	assert.Equal(t, dialogue.PhaseCompletion, turn.Context.Phase)
	assert.Equal(t, dialogue.TaskStatusCompleted, turn.Context.LastTaskStatus)
	assert.Contains(t, turn.Reply, "LN-2024-042")
}

func TestTaskSwitchDiscardsCollectedFields(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"i want a loan": {Intent: "loan_apply", Confidence: 0.9},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-switch"

	say(t, engine, conv, "I want a loan")
	say(t, engine, conv, "personal")

	turn := say(t, engine, conv, "block my card instead")
	assert.Equal(t, catalog.TaskCardBlock, turn.Context.CurrentTask)
	assert.Equal(t, dialogue.PhaseSlotFilling, turn.Context.Phase)
	assert.Empty(t, turn.Context.CollectedFields, "old task's fields must not survive the switch")
	assert.Contains(t, turn.Reply, "4 digits")

	turn = say(t, engine, conv, "1234")
	assert.Equal(t, dialogue.PhaseConfirmation, turn.Context.Phase)

	turn = say(t, engine, conv, "yes")
	assert.Equal(t, dialogue.TaskStatusCompleted, turn.Context.LastTaskStatus)
	assert.Contains(t, turn.Reply, "blocked")
}

func TestPreFilledEntitiesSkipSlotFilling(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"send 500 to 12345678": {
			Intent:     "transfer",
			Confidence: 0.9,
			Entities:   map[string]string{"to_account": "12345678", "amount": "500"},
		},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})

	turn := say(t, engine, "conv-prefill", "send 500 to 12345678")
	assert.Equal(t, dialogue.PhaseConfirmation, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "12345678")
	assert.Contains(t, turn.Reply, "500")
}

func TestInvalidEntityIsDroppedAndAskedFor(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"transfer 500 to my sister": {
			Intent:     "transfer",
			Confidence: 0.9,
			Entities:   map[string]string{"to_account": "my sister", "amount": "500"},
		},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})

	turn := say(t, engine, "conv-badentity", "transfer 500 to my sister")
	assert.Equal(t, dialogue.PhaseSlotFilling, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "account number")
	assert.Empty(t, turn.Context.Entities["to_account"])
}

func TestValidationFailureRepromptsThenAbandons(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"i want a loan": {Intent: "loan_apply", Confidence: 0.9},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-retry"

	say(t, engine, conv, "I want a loan")
	say(t, engine, conv, "personal")

	turn := say(t, engine, conv, "500")
	assert.Contains(t, turn.Reply, "between 1,000 and 10,000,000")
	assert.Equal(t, dialogue.PhaseSlotFilling, turn.Context.Phase)
	assert.Empty(t, turn.Context.CollectedFields["amount"], "invalid value must not be stored")

	turn = say(t, engine, conv, "500")
	assert.Contains(t, turn.Reply, "between 1,000 and 10,000,000")

	turn = say(t, engine, conv, "500")
	assert.Equal(t, dialogue.PhaseIntentDetection, turn.Context.Phase)
	assert.Empty(t, string(turn.Context.CurrentTask))
	assert.Contains(t, turn.Reply, "start fresh")
}

func TestRejectedConfirmationRecollects(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"send 500 to 12345678": {
			Intent:     "transfer",
			Confidence: 0.9,
			Entities:   map[string]string{"to_account": "12345678", "amount": "500"},
		},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-reject"

	say(t, engine, conv, "send 500 to 12345678")

	turn := say(t, engine, conv, "no")
	assert.Equal(t, dialogue.PhaseSlotFilling, turn.Context.Phase)
	assert.Equal(t, catalog.TaskTransfer, turn.Context.CurrentTask)
	assert.Empty(t, turn.Context.CollectedFields)
	assert.Contains(t, turn.Reply, "account number")
}

func TestAmbiguousConfirmationReasks(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"send 500 to 12345678": {
			Intent:     "transfer",
			Confidence: 0.9,
			Entities:   map[string]string{"to_account": "12345678", "amount": "500"},
		},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-unsure"

	say(t, engine, conv, "send 500 to 12345678")

	turn := say(t, engine, conv, "maybe later")
	assert.Equal(t, dialogue.PhaseConfirmation, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "yes or no")
}

func TestRefusalWordedAroundGoAheadDoesNotExecute(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"send 500 to 12345678": {
			Intent:     "transfer",
			Confidence: 0.9,
			Entities:   map[string]string{"to_account": "12345678", "amount": "500"},
		},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-mixed"

	say(t, engine, conv, "send 500 to 12345678")

	// "go ahead" sits inside an explicit refusal; the transfer must not run.
	turn := say(t, engine, conv, "no, don't go ahead")
	assert.Equal(t, dialogue.PhaseConfirmation, turn.Context.Phase)
	assert.NotContains(t, turn.Reply, "TXN-1001")
	assert.Contains(t, turn.Reply, "yes or no")
	assert.Nil(t, turn.Outcome)
}

func TestClarificationQuestionIsRelayedVerbatim(t *testing.T) {
	const question = "Do you want to transfer money or check your balance?"
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"money stuff": {
			Intent:                "transfer",
			Confidence:            0.5,
			ClarificationNeeded:   true,
			ClarificationQuestion: question,
		},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})

	turn := say(t, engine, "conv-clarify", "money stuff")
	assert.Equal(t, question, turn.Reply)
	assert.Equal(t, dialogue.PhaseIntentDetection, turn.Context.Phase)
	assert.Empty(t, string(turn.Context.CurrentTask))
}

func TestClassifierErrorFallsBackGracefully(t *testing.T) {
	cls := &scriptedClassifier{err: assert.AnError}
	engine, _ := newTestEngine(cls, &stubBank{})

	turn := say(t, engine, "conv-down", "I want to do something")
	assert.Equal(t, dialogue.PhaseIntentDetection, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "didn't quite get that")
}

func TestPanicRecoversToIntentDetection(t *testing.T) {
	cls := &scriptedClassifier{
		panicNext: true,
		script: map[string]*nlu.Classification{
			"what's my balance": {Intent: "balance_inquiry", Confidence: 0.95},
		},
	}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-panic"

	turn := say(t, engine, conv, "what's my balance")
	assert.Equal(t, dialogue.PhaseIntentDetection, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "something went wrong")

	// The conversation stays usable after recovery.
	turn = say(t, engine, conv, "what's my balance")
	assert.Equal(t, dialogue.PhaseCompletion, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "$12,450.75")
}

func TestOperationFailureEndsTaskWithoutRetry(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"what's my balance": {Intent: "balance_inquiry", Confidence: 0.95},
	}}
	engine, _ := newTestEngine(cls, &stubBank{failAll: true})

	turn := say(t, engine, "conv-opfail", "what's my balance")
	assert.Equal(t, dialogue.PhaseCompletion, turn.Context.Phase)
	assert.Equal(t, dialogue.TaskStatusFailed, turn.Context.LastTaskStatus)
	assert.Contains(t, turn.Reply, "Sorry")
}

func TestCompletionClosesOrRoutesNextRequest(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"what's my balance": {Intent: "balance_inquiry", Confidence: 0.95},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-again"

	say(t, engine, conv, "what's my balance")

	turn := say(t, engine, conv, "thanks")
	assert.Equal(t, dialogue.PhaseCompletion, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "Have a great day")

	// A new request in completion resets and is routed in the same turn.
	turn = say(t, engine, conv, "what's my balance")
	assert.Equal(t, dialogue.PhaseCompletion, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "$12,450.75")
}

func TestClosingWordWithNewRequestStartsTheTask(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"what's my balance": {Intent: "balance_inquiry", Confidence: 0.95},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-thanks-then"

	say(t, engine, conv, "what's my balance")

	// "thanks" alone would close; the card request in the same breath wins.
	turn := say(t, engine, conv, "thanks, now block my card")
	assert.Equal(t, catalog.TaskCardBlock, turn.Context.CurrentTask)
	assert.Equal(t, dialogue.PhaseSlotFilling, turn.Context.Phase)
	assert.Contains(t, turn.Reply, "4 digits")
}

func TestExactlyTwoMessagesPerTurn(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"i want a loan": {Intent: "loan_apply", Confidence: 0.9},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-transcript"

	inputs := []string{"hi", "I want a loan", "personal", "50000", "36", "yes"}
	for i, in := range inputs {
		turn := say(t, engine, conv, in)
		require.Len(t, turn.Context.Messages, 2*(i+1))
		assert.Equal(t, dialogue.RoleUser, turn.Context.Messages[2*i].Role)
		assert.Equal(t, dialogue.RoleAssistant, turn.Context.Messages[2*i+1].Role)
	}
}

func TestEmptyMessageIsRejected(t *testing.T) {
	engine, _ := newTestEngine(&scriptedClassifier{}, &stubBank{})

	_, err := engine.ProcessMessage(context.Background(), "conv-empty", "user-1", "   ")
	assert.Error(t, err)

	_, err = engine.ProcessMessage(context.Background(), "", "user-1", "hello")
	assert.Error(t, err)
}

func TestClearConversationForgetsState(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"i want a loan": {Intent: "loan_apply", Confidence: 0.9},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})
	const conv = "conv-clear"

	say(t, engine, conv, "I want a loan")
	engine.ClearConversation(conv)

	_, found := engine.GetContext(conv)
	assert.False(t, found)

	// A fresh conversation starts at greeting again.
	turn := say(t, engine, conv, "hi")
	assert.Equal(t, dialogue.PhaseGreeting, turn.Context.Phase)
}

func TestConcurrentConversationsDoNotInterfere(t *testing.T) {
	cls := &scriptedClassifier{script: map[string]*nlu.Classification{
		"i want a loan":     {Intent: "loan_apply", Confidence: 0.9},
		"what's my balance": {Intent: "balance_inquiry", Confidence: 0.95},
	}}
	engine, _ := newTestEngine(cls, &stubBank{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		conv := "conv-parallel-" + string(rune('a'+i))
		go func() {
			defer wg.Done()
			say(t, engine, conv, "I want a loan")
			say(t, engine, conv, "personal")
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		conv := "conv-parallel-" + string(rune('a'+i))
		c, found := engine.GetContext(conv)
		require.True(t, found)
		assert.Equal(t, catalog.TaskLoanApply, c.CurrentTask)
		assert.Equal(t, "personal", c.CollectedFields["loan_type"])
	}
}

// stubBank returns canned payloads so scenario tests run without a database.
type stubBank struct {
	failAll bool
}

func (s *stubBank) BalanceInquiry(_ context.Context, _ string) (*bank.BalanceResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("balance_inquiry", "core banking unavailable")
	}
	return &bank.BalanceResult{Balance: 12450.75, AccountType: "savings"}, nil
}

func (s *stubBank) Transfer(_ context.Context, _, _ string, _ float64, _ string) (*bank.TransferResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("transfer", "insufficient funds")
	}
	return &bank.TransferResult{TransactionID: "TXN-1001"}, nil
}

func (s *stubBank) BlockCard(_ context.Context, _, _ string) (*bank.CardBlockResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("card_block", "card service down")
	}
	return &bank.CardBlockResult{Status: "blocked"}, nil
}

func (s *stubBank) ApplyLoan(_ context.Context, _, _ string, _ float64, _ int) (*bank.LoanResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("loan_apply", "scoring down")
	}
	return &bank.LoanResult{ApplicationID: "LN-2024-042", Status: "under_review"}, nil
}

func (s *stubBank) FileComplaint(_ context.Context, _, _, _, _ string) (*bank.ComplaintResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("complaint_file", "ticketing down")
	}
	return &bank.ComplaintResult{ComplaintID: "CMP-7"}, nil
}

func (s *stubBank) LookupInformation(_ context.Context, _ string) (*bank.InformationResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("information_lookup", "index unavailable")
	}
	return &bank.InformationResult{Summary: "Savings accounts earn 3.5% interest per year."}, nil
}
