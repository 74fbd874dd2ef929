package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Account, error)
	FindByNumber(ctx context.Context, accountNumber string) (*entity.Account, error)

	// TransferFunds debits the source account, credits the destination when it
	// is held at this bank, and records the transaction rows, all inside one
	// database transaction. It fails without side effects when the balance is
	// insufficient.
	TransferFunds(ctx context.Context, fromAccountId uuid.UUID, toAccountNumber string, amount float64, description, reference string) error
}
