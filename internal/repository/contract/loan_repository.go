package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
)

type LoanRepository interface {
	Create(ctx context.Context, loan *entity.Loan) error
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.Loan, error)
}
