package implementation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

type AccountRepositoryImpl struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) contract.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

func (r *AccountRepositoryImpl) Create(ctx context.Context, account *entity.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *AccountRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryImpl) FindByNumber(ctx context.Context, accountNumber string) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).Where("account_number = ?", accountNumber).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryImpl) TransferFunds(ctx context.Context, fromAccountId uuid.UUID, toAccountNumber string, amount float64, description, reference string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var from entity.Account
		// Row lock so concurrent transfers cannot overdraw the account.
		if err := tx.Clauses(forUpdate()).Where("id = ?", fromAccountId).First(&from).Error; err != nil {
			return fmt.Errorf("load source account: %w", err)
		}
		if from.Balance < amount {
			return ErrInsufficientFunds
		}

		if err := tx.Model(&entity.Account{}).Where("id = ?", from.Id).
			Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
			return fmt.Errorf("debit source account: %w", err)
		}

		debit := entity.Transaction{
			AccountId:   from.Id,
			Reference:   reference,
			Type:        "debit",
			Amount:      amount,
			ToAccount:   toAccountNumber,
			Description: description,
		}
		if err := tx.Create(&debit).Error; err != nil {
			return fmt.Errorf("record debit: %w", err)
		}

		// Internal destination accounts are credited in the same transaction;
		// unknown numbers are treated as external and only the debit is kept.
		var to entity.Account
		err := tx.Clauses(forUpdate()).Where("account_number = ?", toAccountNumber).First(&to).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load destination account: %w", err)
		}

		if err := tx.Model(&entity.Account{}).Where("id = ?", to.Id).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return fmt.Errorf("credit destination account: %w", err)
		}

		credit := entity.Transaction{
			AccountId:   to.Id,
			Reference:   reference + "-C",
			Type:        "credit",
			Amount:      amount,
			ToAccount:   toAccountNumber,
			Description: description,
		}
		if err := tx.Create(&credit).Error; err != nil {
			return fmt.Errorf("record credit: %w", err)
		}
		return nil
	})
}
