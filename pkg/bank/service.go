package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/implementation"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/knowledge"
)

// Service implements Operations on the demo bank's database. Every method is
// all-or-nothing: a returned error means nothing was persisted.
type Service struct {
	accounts   contract.AccountRepository
	cards      contract.CardRepository
	loans      contract.LoanRepository
	complaints contract.ComplaintRepository
	knowledge  *knowledge.Searcher
	logger     logger.ILogger
}

var _ Operations = (*Service)(nil)

func NewService(
	accounts contract.AccountRepository,
	cards contract.CardRepository,
	loans contract.LoanRepository,
	complaints contract.ComplaintRepository,
	searcher *knowledge.Searcher,
	log logger.ILogger,
) *Service {
	return &Service{
		accounts:   accounts,
		cards:      cards,
		loans:      loans,
		complaints: complaints,
		knowledge:  searcher,
		logger:     log,
	}
}

func (s *Service) BalanceInquiry(ctx context.Context, userID string) (*BalanceResult, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, NewOperationError("balance_inquiry", "invalid user id")
	}

	account, err := s.accounts.FindByUserId(ctx, uid)
	if err != nil {
		return nil, NewOperationError("balance_inquiry", "account lookup failed: %v", err)
	}
	if account == nil {
		return nil, NewOperationError("balance_inquiry", "no account for user")
	}

	return &BalanceResult{
		Balance:     account.Balance,
		AccountType: account.AccountType,
	}, nil
}

func (s *Service) Transfer(ctx context.Context, userID, toAccount string, amount float64, description string) (*TransferResult, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, NewOperationError("transfer", "invalid user id")
	}

	account, err := s.accounts.FindByUserId(ctx, uid)
	if err != nil {
		return nil, NewOperationError("transfer", "account lookup failed: %v", err)
	}
	if account == nil {
		return nil, NewOperationError("transfer", "no account for user")
	}

	reference := newReference("TXN")
	err = s.accounts.TransferFunds(ctx, account.Id, toAccount, amount, description, reference)
	if errors.Is(err, implementation.ErrInsufficientFunds) {
		return nil, NewOperationError("transfer", "insufficient funds")
	}
	if err != nil {
		return nil, NewOperationError("transfer", "transfer failed: %v", err)
	}

	s.logger.Info("Bank", "Transfer completed", map[string]interface{}{
		"user_id":   userID,
		"reference": reference,
	})
	return &TransferResult{TransactionID: reference}, nil
}

func (s *Service) BlockCard(ctx context.Context, userID, cardNumber string) (*CardBlockResult, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, NewOperationError("card_block", "invalid user id")
	}

	card, err := s.cards.FindByUserAndLastFour(ctx, uid, cardNumber)
	if err != nil {
		return nil, NewOperationError("card_block", "card lookup failed: %v", err)
	}
	if card == nil {
		return nil, NewOperationError("card_block", "no card ending in %s", cardNumber)
	}
	if card.Status == entity.CardStatusBlocked {
		return &CardBlockResult{Status: string(entity.CardStatusBlocked)}, nil
	}

	if err := s.cards.UpdateStatus(ctx, card.Id, entity.CardStatusBlocked); err != nil {
		return nil, NewOperationError("card_block", "status update failed: %v", err)
	}

	s.logger.Info("Bank", "Card blocked", map[string]interface{}{
		"user_id":   userID,
		"last_four": cardNumber,
	})
	return &CardBlockResult{Status: string(entity.CardStatusBlocked)}, nil
}

func (s *Service) ApplyLoan(ctx context.Context, userID, loanType string, amount float64, tenureMonths int) (*LoanResult, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, NewOperationError("loan_apply", "invalid user id")
	}

	loan := entity.Loan{
		UserId:         uid,
		ApplicationRef: newReference("LN"),
		LoanType:       loanType,
		Amount:         amount,
		TenureMonths:   tenureMonths,
		Status:         entity.LoanStatusUnderReview,
	}
	if err := s.loans.Create(ctx, &loan); err != nil {
		return nil, NewOperationError("loan_apply", "application failed: %v", err)
	}

	s.logger.Info("Bank", "Loan application submitted", map[string]interface{}{
		"user_id":   userID,
		"reference": loan.ApplicationRef,
	})
	return &LoanResult{
		ApplicationID: loan.ApplicationRef,
		Status:        string(loan.Status),
	}, nil
}

func (s *Service) FileComplaint(ctx context.Context, userID, subject, description, category string) (*ComplaintResult, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, NewOperationError("complaint_file", "invalid user id")
	}

	complaint := entity.Complaint{
		UserId:      uid,
		Reference:   newReference("CMP"),
		Subject:     subject,
		Description: description,
		Category:    category,
		Status:      entity.ComplaintStatusOpen,
	}
	if err := s.complaints.Create(ctx, &complaint); err != nil {
		return nil, NewOperationError("complaint_file", "filing failed: %v", err)
	}

	s.logger.Info("Bank", "Complaint filed", map[string]interface{}{
		"user_id":   userID,
		"reference": complaint.Reference,
	})
	return &ComplaintResult{ComplaintID: complaint.Reference}, nil
}

func (s *Service) LookupInformation(ctx context.Context, query string) (*InformationResult, error) {
	answer, err := s.knowledge.Search(ctx, query)
	if err != nil {
		return nil, NewOperationError("information_lookup", "lookup failed: %v", err)
	}
	return &InformationResult{Summary: answer}, nil
}

// newReference builds a short human-readable reference like TXN-1A2B3C4D.
func newReference(prefix string) string {
	id := strings.ToUpper(uuid.New().String())
	return fmt.Sprintf("%s-%s", prefix, id[:8])
}
