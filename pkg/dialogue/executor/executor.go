package executor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/bank"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/catalog"
)

// Result is the outcome of dispatching one completed task.
type Result struct {
	Reply   string
	Success bool
	Payload interface{}
}

// Executor maps a completed task plus its collected fields onto a banking
// operation, and formats the outcome as a user-facing message. It performs no
// retries: a failed operation ends the task as failed.
type Executor struct {
	ops    bank.Operations
	logger logger.ILogger
}

func New(ops bank.Operations, log logger.ILogger) *Executor {
	return &Executor{ops: ops, logger: log}
}

// entry declares which fields an operation consumes and how to run it. The
// table is static: one row per dispatchable task type.
type entry struct {
	params []string
	run    func(ctx context.Context, ops bank.Operations, userID string, fields map[string]string) (interface{}, error)
}

var dispatch = map[catalog.TaskType]entry{
	catalog.TaskBalanceInquiry: {
		run: func(ctx context.Context, ops bank.Operations, userID string, _ map[string]string) (interface{}, error) {
			return ops.BalanceInquiry(ctx, userID)
		},
	},
	catalog.TaskTransfer: {
		params: []string{"to_account", "amount", "description"},
		run: func(ctx context.Context, ops bank.Operations, userID string, fields map[string]string) (interface{}, error) {
			amount, err := strconv.ParseFloat(fields["amount"], 64)
			if err != nil {
				return nil, bank.NewOperationError("transfer", "invalid amount %q", fields["amount"])
			}
			return ops.Transfer(ctx, userID, fields["to_account"], amount, fields["description"])
		},
	},
	catalog.TaskCardBlock: {
		params: []string{"card_number"},
		run: func(ctx context.Context, ops bank.Operations, userID string, fields map[string]string) (interface{}, error) {
			return ops.BlockCard(ctx, userID, fields["card_number"])
		},
	},
	catalog.TaskLoanApply: {
		params: []string{"loan_type", "amount", "tenure"},
		run: func(ctx context.Context, ops bank.Operations, userID string, fields map[string]string) (interface{}, error) {
			amount, err := strconv.ParseFloat(fields["amount"], 64)
			if err != nil {
				return nil, bank.NewOperationError("loan_apply", "invalid amount %q", fields["amount"])
			}
			tenure, err := strconv.Atoi(fields["tenure"])
			if err != nil {
				return nil, bank.NewOperationError("loan_apply", "invalid tenure %q", fields["tenure"])
			}
			return ops.ApplyLoan(ctx, userID, fields["loan_type"], amount, tenure)
		},
	},
	catalog.TaskComplaintFile: {
		params: []string{"subject", "description", "category"},
		run: func(ctx context.Context, ops bank.Operations, userID string, fields map[string]string) (interface{}, error) {
			return ops.FileComplaint(ctx, userID, fields["subject"], fields["description"], fields["category"])
		},
	},
	catalog.TaskInformationLookup: {
		params: []string{"query"},
		run: func(ctx context.Context, ops bank.Operations, userID string, fields map[string]string) (interface{}, error) {
			return ops.LookupInformation(ctx, fields["query"])
		},
	},
}

// formatters render each operation's payload as a human-readable summary.
// Raw structured data never reaches the user unformatted.
var formatters = map[catalog.TaskType]func(payload interface{}, fields map[string]string) string{
	catalog.TaskBalanceInquiry: func(payload interface{}, _ map[string]string) string {
		r := payload.(*bank.BalanceResult)
		return fmt.Sprintf("Your %s account balance is %s.", r.AccountType, formatMoney(r.Balance))
	},
	catalog.TaskTransfer: func(payload interface{}, fields map[string]string) string {
		r := payload.(*bank.TransferResult)
		return fmt.Sprintf("Done! I've transferred %s to account %s. Your transaction reference is %s.",
			formatMoneyString(fields["amount"]), fields["to_account"], r.TransactionID)
	},
	catalog.TaskCardBlock: func(payload interface{}, fields map[string]string) string {
		r := payload.(*bank.CardBlockResult)
		return fmt.Sprintf("The card ending in %s is now %s. A replacement will reach you within 7 working days.",
			fields["card_number"], r.Status)
	},
	catalog.TaskLoanApply: func(payload interface{}, fields map[string]string) string {
		r := payload.(*bank.LoanResult)
		return fmt.Sprintf("Your %s loan application for %s over %s months has been submitted. Application ID %s, current status: %s.",
			fields["loan_type"], formatMoneyString(fields["amount"]), fields["tenure"], r.ApplicationID, r.Status)
	},
	catalog.TaskComplaintFile: func(payload interface{}, fields map[string]string) string {
		r := payload.(*bank.ComplaintResult)
		return fmt.Sprintf("I've filed your complaint about %q under the %s category. Your reference number is %s.",
			fields["subject"], fields["category"], r.ComplaintID)
	},
	catalog.TaskInformationLookup: func(payload interface{}, _ map[string]string) string {
		r := payload.(*bank.InformationResult)
		return r.Summary
	},
}

// apologies name the task but never expose internal error detail.
var apologies = map[catalog.TaskType]string{
	catalog.TaskBalanceInquiry:    "Sorry, I couldn't fetch your balance right now. Please try again in a moment.",
	catalog.TaskTransfer:          "Sorry, the transfer could not be completed. No money has left your account.",
	catalog.TaskCardBlock:         "Sorry, I couldn't block the card right now. Please call our hotline if the card is at risk.",
	catalog.TaskLoanApply:         "Sorry, I couldn't submit your loan application right now. Please try again later.",
	catalog.TaskComplaintFile:     "Sorry, I couldn't file your complaint right now. Please try again later.",
	catalog.TaskInformationLookup: "Sorry, I couldn't look that up right now.",
}

// Execute dispatches a completed task. The returned Result always carries a
// user-facing reply; Success reports whether the operation went through.
func (e *Executor) Execute(ctx context.Context, userID string, task catalog.TaskType, fields map[string]string) Result {
	row, ok := dispatch[task]
	if !ok {
		return Result{Reply: "Sorry, I can't action that request. Is there something else I can help with?"}
	}

	forwarded := make(map[string]string, len(row.params))
	for _, p := range row.params {
		forwarded[p] = fields[p]
	}

	payload, err := row.run(ctx, e.ops, userID, forwarded)
	if err != nil {
		e.logger.Error("Executor", "Operation failed", map[string]interface{}{
			"task":  string(task),
			"error": err.Error(),
		})
		return Result{Reply: apologies[task]}
	}

	e.logger.Info("Executor", "Operation completed", map[string]interface{}{"task": string(task)})
	return Result{
		Reply:   formatters[task](payload, forwarded),
		Success: true,
		Payload: payload,
	}
}

func formatMoney(amount float64) string {
	return "$" + addThousandsSeparators(strconv.FormatFloat(amount, 'f', 2, 64))
}

func formatMoneyString(amount string) string {
	n, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return amount
	}
	return formatMoney(n)
}

func addThousandsSeparators(s string) string {
	intPart, fracPart := s, ""
	if i := strings.Index(s, "."); i != -1 {
		intPart, fracPart = s[:i], s[i:]
	}
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String() + fracPart
}
