// FILE: internal/service/event_consumer_service.go
package service

import (
	"context"
	"encoding/json"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/internal/websocket"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the task-event topic and pushes each event to the
// owning user's open websocket connections.
type consumerService struct {
	pubSub *gochannel.GoChannel
	hub    *websocket.Hub
	logger logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, hub *websocket.Hub, logger logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub: pubSub,
		hub:    hub,
		logger: logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, events.TopicTaskEvents)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var event events.TaskEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal task event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack malformed payloads to prevent infinite redelivery.
		msg.Ack()
		return
	}

	userId, err := uuid.Parse(event.UserID)
	if err != nil {
		cs.logger.Error("ConsumerService", "Task event carries invalid user id", map[string]interface{}{
			"message_id": msg.UUID,
			"user_id":    event.UserID,
		})
		msg.Ack()
		return
	}

	cs.hub.SendTaskEvent(userId, event)

	cs.logger.Debug("ConsumerService", "Task event delivered", map[string]interface{}{
		"conversation_id": event.ConversationID,
		"task":            event.Task,
		"type":            event.Type,
	})
	msg.Ack()
}
