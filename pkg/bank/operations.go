package bank

import (
	"context"
	"fmt"
)

// BalanceResult is the payload of a successful balance inquiry.
type BalanceResult struct {
	Balance     float64 `json:"balance"`
	AccountType string  `json:"account_type"`
}

type TransferResult struct {
	TransactionID string `json:"transaction_id"`
}

type CardBlockResult struct {
	Status string `json:"status"`
}

type LoanResult struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}

type ComplaintResult struct {
	ComplaintID string `json:"complaint_id"`
}

type InformationResult struct {
	Summary string `json:"summary"`
}

// OperationError is the typed failure every banking call returns on error.
// No operation may partially succeed.
type OperationError struct {
	Op      string
	Message string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func NewOperationError(op, format string, args ...interface{}) *OperationError {
	return &OperationError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// Operations is the banking back end the dialogue engine dispatches to. Each
// call is a single request/response unit: it either returns a payload or a
// typed failure, never partial state.
type Operations interface {
	BalanceInquiry(ctx context.Context, userID string) (*BalanceResult, error)
	Transfer(ctx context.Context, userID, toAccount string, amount float64, description string) (*TransferResult, error)
	BlockCard(ctx context.Context, userID, cardNumber string) (*CardBlockResult, error)
	ApplyLoan(ctx context.Context, userID, loanType string, amount float64, tenureMonths int) (*LoanResult, error)
	FileComplaint(ctx context.Context, userID, subject, description, category string) (*ComplaintResult, error)
	LookupInformation(ctx context.Context, query string) (*InformationResult, error)
}
