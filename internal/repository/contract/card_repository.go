package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
)

type CardRepository interface {
	Create(ctx context.Context, card *entity.Card) error
	FindByUserAndLastFour(ctx context.Context, userId uuid.UUID, lastFour string) (*entity.Card, error)
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.Card, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.CardStatus) error
}
