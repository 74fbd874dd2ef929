// FILE: internal/service/assistant_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/dto"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/entity"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/repository/contract"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/events"

	"github.com/google/uuid"
)

const transcriptLimit = 200

type IAssistantService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetConversation(ctx context.Context, userId uuid.UUID, conversationId string) (*dto.ConversationStateResponse, error)
	GetTranscript(ctx context.Context, userId uuid.UUID, conversationId string) ([]dto.TranscriptItem, error)
	ClearConversation(ctx context.Context, userId uuid.UUID, conversationId string) error
}

type assistantService struct {
	engine         *dialogue.Engine
	logRepo        contract.ConversationLogRepository
	eventPublisher *events.Publisher
	logger         logger.ILogger
}

func NewAssistantService(
	engine *dialogue.Engine,
	logRepo contract.ConversationLogRepository,
	eventPublisher *events.Publisher,
	logger logger.ILogger,
) IAssistantService {
	return &assistantService{
		engine:         engine,
		logRepo:        logRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *assistantService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	conversationId := req.ConversationId
	if conversationId == "" {
		conversationId = uuid.New().String()
	}

	turn, err := s.engine.ProcessMessage(ctx, conversationId, userId.String(), req.Message)
	if err != nil {
		return nil, err
	}

	s.persistTurn(ctx, userId, turn, req.Message)

	if turn.Outcome != nil {
		s.publishOutcome(conversationId, userId, turn.Outcome)
	}

	return &dto.SendMessageResponse{
		ConversationId: conversationId,
		Reply:          turn.Reply,
		Phase:          string(turn.Context.Phase),
		Task:           string(turn.Context.CurrentTask),
		TaskStatus:     string(turn.Context.LastTaskStatus),
	}, nil
}

// persistTurn appends the user and assistant lines of this turn to the
// durable transcript. Persistence failures are logged, never surfaced: the
// reply the user already saw must not be retracted over an audit write.
func (s *assistantService) persistTurn(ctx context.Context, userId uuid.UUID, turn *dialogue.Turn, userText string) {
	now := time.Now()
	c := turn.Context
	logs := []*entity.ConversationLog{
		{
			Id:             uuid.New(),
			ConversationId: c.Id,
			UserId:         userId,
			Role:           "user",
			Text:           userText,
			Phase:          string(c.Phase),
			Task:           string(c.CurrentTask),
			CreatedAt:      now,
		},
		{
			Id:             uuid.New(),
			ConversationId: c.Id,
			UserId:         userId,
			Role:           "assistant",
			Text:           turn.Reply,
			Phase:          string(c.Phase),
			Task:           string(c.CurrentTask),
			CreatedAt:      now,
		},
	}
	if err := s.logRepo.Append(ctx, logs...); err != nil {
		s.logger.Error("AssistantService", "Failed to persist conversation turn", map[string]interface{}{
			"conversation_id": c.Id,
			"error":           err.Error(),
		})
	}
}

func (s *assistantService) publishOutcome(conversationId string, userId uuid.UUID, outcome *dialogue.TaskOutcome) {
	if s.eventPublisher == nil {
		return
	}

	var event events.TaskEvent
	if outcome.Status == dialogue.TaskStatusCompleted {
		var data map[string]interface{}
		if outcome.Payload != nil {
			data = map[string]interface{}{"result": outcome.Payload}
		}
		event = events.NewTaskCompleted(conversationId, userId.String(), string(outcome.Task), outcome.Reply, data)
	} else {
		event = events.NewTaskFailed(conversationId, userId.String(), string(outcome.Task), outcome.Reply)
	}

	if err := s.eventPublisher.PublishTaskEvent(event); err != nil {
		s.logger.Warn("AssistantService", "Failed to publish task event", map[string]interface{}{
			"conversation_id": conversationId,
			"task":            string(outcome.Task),
			"error":           err.Error(),
		})
	}
}

func (s *assistantService) GetConversation(ctx context.Context, userId uuid.UUID, conversationId string) (*dto.ConversationStateResponse, error) {
	c, ok := s.engine.GetContext(conversationId)
	if !ok {
		return nil, errors.New("conversation not found")
	}
	if c.UserId != userId.String() {
		return nil, errors.New("conversation not found")
	}

	resp := &dto.ConversationStateResponse{
		ConversationId:  c.Id,
		Phase:           string(c.Phase),
		Task:            string(c.CurrentTask),
		CollectedFields: c.CollectedFields,
		Messages:        make([]dto.ConversationMessage, 0, len(c.Messages)),
	}
	for _, m := range c.Messages {
		resp.Messages = append(resp.Messages, dto.ConversationMessage{
			Role:      m.Role,
			Text:      m.Text,
			Timestamp: m.Timestamp,
		})
	}
	return resp, nil
}

func (s *assistantService) GetTranscript(ctx context.Context, userId uuid.UUID, conversationId string) ([]dto.TranscriptItem, error) {
	logs, err := s.logRepo.FindByConversation(ctx, conversationId, transcriptLimit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TranscriptItem, 0, len(logs))
	for _, l := range logs {
		if l.UserId != userId {
			continue
		}
		items = append(items, dto.TranscriptItem{
			Role:      l.Role,
			Text:      l.Text,
			Phase:     l.Phase,
			Task:      l.Task,
			CreatedAt: l.CreatedAt,
		})
	}
	return items, nil
}

func (s *assistantService) ClearConversation(ctx context.Context, userId uuid.UUID, conversationId string) error {
	if c, ok := s.engine.GetContext(conversationId); ok && c.UserId != userId.String() {
		return errors.New("conversation not found")
	}
	s.engine.ClearConversation(conversationId)
	return nil
}
