package dto

import "time"

type SendMessageRequest struct {
	// ConversationId may be empty on the first message; the server then
	// assigns one and returns it in the response.
	ConversationId string `json:"conversation_id"`
	Message        string `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	ConversationId string `json:"conversation_id"`
	Reply          string `json:"reply"`
	Phase          string `json:"phase"`
	Task           string `json:"task,omitempty"`
	TaskStatus     string `json:"task_status,omitempty"`
}

type ConversationMessage struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationStateResponse struct {
	ConversationId  string                `json:"conversation_id"`
	Phase           string                `json:"phase"`
	Task            string                `json:"task,omitempty"`
	CollectedFields map[string]string     `json:"collected_fields,omitempty"`
	Messages        []ConversationMessage `json:"messages"`
}

type TranscriptItem struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Phase     string    `json:"phase,omitempty"`
	Task      string    `json:"task,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
