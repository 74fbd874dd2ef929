package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/bank"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/catalog"
)

// stubOperations records what was forwarded to each banking call and returns
// canned payloads.
type stubOperations struct {
	failAll      bool
	lastTransfer struct {
		toAccount   string
		amount      float64
		description string
	}
}

func (s *stubOperations) BalanceInquiry(_ context.Context, _ string) (*bank.BalanceResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("balance_inquiry", "core banking unavailable")
	}
	return &bank.BalanceResult{Balance: 12450.75, AccountType: "savings"}, nil
}

func (s *stubOperations) Transfer(_ context.Context, _, toAccount string, amount float64, description string) (*bank.TransferResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("transfer", "insufficient funds")
	}
	s.lastTransfer.toAccount = toAccount
	s.lastTransfer.amount = amount
	s.lastTransfer.description = description
	return &bank.TransferResult{TransactionID: "TXN-1001"}, nil
}

func (s *stubOperations) BlockCard(_ context.Context, _, _ string) (*bank.CardBlockResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("card_block", "card service down")
	}
	return &bank.CardBlockResult{Status: "blocked"}, nil
}

func (s *stubOperations) ApplyLoan(_ context.Context, _, _ string, _ float64, _ int) (*bank.LoanResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("loan_apply", "scoring service down")
	}
	return &bank.LoanResult{ApplicationID: "LN-2024-042", Status: "under_review"}, nil
}

func (s *stubOperations) FileComplaint(_ context.Context, _, _, _, _ string) (*bank.ComplaintResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("complaint_file", "ticketing down")
	}
	return &bank.ComplaintResult{ComplaintID: "CMP-7"}, nil
}

func (s *stubOperations) LookupInformation(_ context.Context, _ string) (*bank.InformationResult, error) {
	if s.failAll {
		return nil, bank.NewOperationError("information_lookup", "index unavailable")
	}
	return &bank.InformationResult{Summary: "Savings accounts earn 3.5% interest per year."}, nil
}

func TestExecuteFormatsSuccess(t *testing.T) {
	tests := []struct {
		name     string
		task     catalog.TaskType
		fields   map[string]string
		contains []string
	}{
		{
			name:     "balance",
			task:     catalog.TaskBalanceInquiry,
			contains: []string{"$12,450.75", "savings"},
		},
		{
			name:     "transfer",
			task:     catalog.TaskTransfer,
			fields:   map[string]string{"to_account": "12345678", "amount": "500"},
			contains: []string{"$500.00", "12345678", "TXN-1001"},
		},
		{
			name:     "card block",
			task:     catalog.TaskCardBlock,
			fields:   map[string]string{"card_number": "1234"},
			contains: []string{"1234", "blocked"},
		},
		{
			name:     "loan",
			task:     catalog.TaskLoanApply,
			fields:   map[string]string{"loan_type": "personal", "amount": "50000", "tenure": "36"},
			contains: []string{"personal", "$50,000.00", "36 months", "LN-2024-042", "under_review"},
		},
		{
			name:     "complaint",
			task:     catalog.TaskComplaintFile,
			fields:   map[string]string{"subject": "ATM failure", "description": "no cash dispensed", "category": "card"},
			contains: []string{"ATM failure", "card", "CMP-7"},
		},
		{
			name:     "information",
			task:     catalog.TaskInformationLookup,
			fields:   map[string]string{"query": "interest rates"},
			contains: []string{"3.5%"},
		},
	}

	e := New(&stubOperations{}, logger.NewNopLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Execute(context.Background(), "user-1", tt.task, tt.fields)
			if !res.Success {
				t.Fatalf("Execute() success = false, reply = %q", res.Reply)
			}
			if res.Payload == nil {
				t.Error("Execute() payload is nil on success")
			}
			for _, want := range tt.contains {
				if !strings.Contains(res.Reply, want) {
					t.Errorf("reply %q does not contain %q", res.Reply, want)
				}
			}
		})
	}
}

func TestExecuteFailureUsesApology(t *testing.T) {
	e := New(&stubOperations{failAll: true}, logger.NewNopLogger())

	res := e.Execute(context.Background(), "user-1", catalog.TaskTransfer,
		map[string]string{"to_account": "12345678", "amount": "500"})

	if res.Success {
		t.Fatal("Execute() success = true, want false")
	}
	if !strings.Contains(res.Reply, "transfer") {
		t.Errorf("apology %q does not name the task", res.Reply)
	}
	if strings.Contains(res.Reply, "insufficient funds") {
		t.Errorf("apology %q leaks internal error detail", res.Reply)
	}
}

func TestExecuteForwardsOnlyDeclaredParams(t *testing.T) {
	ops := &stubOperations{}
	e := New(ops, logger.NewNopLogger())

	fields := map[string]string{
		"to_account": "87654321",
		"amount":     "250.50",
		"loan_type":  "personal", // stale leftover, must not be forwarded
	}
	res := e.Execute(context.Background(), "user-1", catalog.TaskTransfer, fields)

	if !res.Success {
		t.Fatalf("Execute() success = false, reply = %q", res.Reply)
	}
	if ops.lastTransfer.toAccount != "87654321" || ops.lastTransfer.amount != 250.50 {
		t.Errorf("transfer received %+v", ops.lastTransfer)
	}
	if ops.lastTransfer.description != "" {
		t.Errorf("description = %q, want empty when not collected", ops.lastTransfer.description)
	}
}

func TestExecuteInvalidAmountDoesNotCallBackend(t *testing.T) {
	ops := &stubOperations{}
	e := New(ops, logger.NewNopLogger())

	res := e.Execute(context.Background(), "user-1", catalog.TaskTransfer,
		map[string]string{"to_account": "12345678", "amount": "lots"})

	if res.Success {
		t.Fatal("Execute() success = true for an unparseable amount")
	}
	if ops.lastTransfer.toAccount != "" {
		t.Error("backend transfer was called despite invalid amount")
	}
}

func TestExecuteUnknownTask(t *testing.T) {
	e := New(&stubOperations{}, logger.NewNopLogger())
	res := e.Execute(context.Background(), "user-1", catalog.TaskGeneralInquiry, nil)
	if res.Success {
		t.Fatal("Execute() success = true for a non-dispatchable task")
	}
	if res.Reply == "" {
		t.Error("reply is empty for a non-dispatchable task")
	}
}
