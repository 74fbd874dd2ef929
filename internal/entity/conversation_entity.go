package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationLog is one persisted transcript line. The live per-turn state
// stays in the in-memory session store; this table is the durable audit trail.
type ConversationLog struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationId string    `gorm:"type:varchar(100);not null;index"`
	UserId         uuid.UUID `gorm:"type:uuid;index"`
	Role           string    `gorm:"type:varchar(20);not null"`
	Text           string    `gorm:"type:text;not null"`
	Phase          string    `gorm:"type:varchar(50)"`
	Task           string    `gorm:"type:varchar(50)"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ConversationLog) TableName() string {
	return "conversation_logs"
}
