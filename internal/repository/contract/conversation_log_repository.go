package contract

import (
	"context"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
)

type ConversationLogRepository interface {
	Append(ctx context.Context, logs ...*entity.ConversationLog) error
	FindByConversation(ctx context.Context, conversationId string, limit int) ([]*entity.ConversationLog, error)
}
