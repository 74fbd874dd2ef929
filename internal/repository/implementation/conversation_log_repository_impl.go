package implementation

import (
	"context"

	"gorm.io/gorm"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"
)

type ConversationLogRepositoryImpl struct {
	db *gorm.DB
}

func NewConversationLogRepository(db *gorm.DB) contract.ConversationLogRepository {
	return &ConversationLogRepositoryImpl{db: db}
}

func (r *ConversationLogRepositoryImpl) Append(ctx context.Context, logs ...*entity.ConversationLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(logs).Error
}

func (r *ConversationLogRepositoryImpl) FindByConversation(ctx context.Context, conversationId string, limit int) ([]*entity.ConversationLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var logs []*entity.ConversationLog
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Order("created_at ASC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
