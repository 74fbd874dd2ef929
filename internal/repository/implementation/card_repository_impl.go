package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"
)

type CardRepositoryImpl struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) contract.CardRepository {
	return &CardRepositoryImpl{db: db}
}

func (r *CardRepositoryImpl) Create(ctx context.Context, card *entity.Card) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *CardRepositoryImpl) FindByUserAndLastFour(ctx context.Context, userId uuid.UUID, lastFour string) (*entity.Card, error) {
	var card entity.Card
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND last_four = ?", userId, lastFour).
		First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (r *CardRepositoryImpl) FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.Card, error) {
	var cards []*entity.Card
	if err := r.db.WithContext(ctx).Where("user_id = ?", userId).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *CardRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.CardStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Card{}).
		Where("id = ?", id).
		Update("status", status).Error
}
