package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
)

type ComplaintRepository interface {
	Create(ctx context.Context, complaint *entity.Complaint) error
	FindAllByUser(ctx context.Context, userId uuid.UUID) ([]*entity.Complaint, error)
}
