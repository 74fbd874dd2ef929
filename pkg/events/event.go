package events

import "time"

// Topic and event type codes for the in-process bus.
const (
	TopicTaskEvents = "assistant.task.events"

	TypeTaskCompleted = "TASK_COMPLETED"
	TypeTaskFailed    = "TASK_FAILED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event.
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// TaskEvent announces that a banking task finished, successfully or not.
// Subscribers use it for websocket push and audit.
type TaskEvent struct {
	Type           string                 `json:"type"`
	ConversationID string                 `json:"conversation_id"`
	UserID         string                 `json:"user_id"`
	Task           string                 `json:"task"`
	Reply          string                 `json:"reply"`
	Data           map[string]interface{} `json:"data,omitempty"`
	OccurredAt     time.Time              `json:"occurred_at"`
}

var _ Event = TaskEvent{}

func (e TaskEvent) EventType() string {
	return e.Type
}

func (e TaskEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e TaskEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewTaskCompleted(conversationID, userID, task, reply string, data map[string]interface{}) TaskEvent {
	return TaskEvent{
		Type:           TypeTaskCompleted,
		ConversationID: conversationID,
		UserID:         userID,
		Task:           task,
		Reply:          reply,
		Data:           data,
		OccurredAt:     time.Now(),
	}
}

func NewTaskFailed(conversationID, userID, task, reply string) TaskEvent {
	return TaskEvent{
		Type:           TypeTaskFailed,
		ConversationID: conversationID,
		UserID:         userID,
		Task:           task,
		Reply:          reply,
		OccurredAt:     time.Now(),
	}
}
