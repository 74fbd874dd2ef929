package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}
