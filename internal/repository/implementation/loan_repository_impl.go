package implementation

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"
)

type LoanRepositoryImpl struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) contract.LoanRepository {
	return &LoanRepositoryImpl{db: db}
}

func (r *LoanRepositoryImpl) Create(ctx context.Context, loan *entity.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *LoanRepositoryImpl) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.Loan, error) {
	var loans []*entity.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}
