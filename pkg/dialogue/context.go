package dialogue

import (
	"time"

	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/catalog"
)

// Phase is one discrete state of the per-conversation state machine.
type Phase string

const (
	PhaseGreeting        Phase = "greeting"
	PhaseIntentDetection Phase = "intent_detection"
	PhaseSlotFilling     Phase = "slot_filling"
	PhaseConfirmation    Phase = "confirmation"
	PhaseExecution       Phase = "execution"
	PhaseCompletion      Phase = "completion"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TaskStatus records how the last dispatched task ended.
type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Message is one transcript entry. The transcript is append-only.
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationContext is the per-conversation state owned by the engine's
// session store. No other component retains a reference across calls.
type ConversationContext struct {
	Id              string            `json:"id"`
	UserId          string            `json:"user_id"`
	Phase           Phase             `json:"phase"`
	CurrentTask     catalog.TaskType  `json:"current_task,omitempty"`
	RequiredFields  []string          `json:"required_fields,omitempty"`
	CollectedFields map[string]string `json:"collected_fields"`
	Entities        map[string]string `json:"entities"`
	FieldAttempts   map[string]int    `json:"field_attempts,omitempty"`
	Messages        []Message         `json:"messages"`
	LastTaskStatus  TaskStatus        `json:"last_task_status,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	// outcome of a task dispatched during the current turn, cleared at the
	// start of every ProcessMessage call
	pendingOutcome *TaskOutcome
}

// NewConversationContext creates a fresh context in the greeting phase.
func NewConversationContext(id, userId string) *ConversationContext {
	now := time.Now()
	return &ConversationContext{
		Id:              id,
		UserId:          userId,
		Phase:           PhaseGreeting,
		CollectedFields: make(map[string]string),
		Entities:        make(map[string]string),
		FieldAttempts:   make(map[string]int),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (c *ConversationContext) appendMessage(role, text string, at time.Time) {
	c.Messages = append(c.Messages, Message{Role: role, Text: text, Timestamp: at})
}

// setTask switches the active task. Collected fields, entities, required
// fields and attempt counters reset together so two tasks never mix state.
func (c *ConversationContext) setTask(task catalog.TaskType) {
	def := catalog.Lookup(task)
	c.CurrentTask = task
	c.RequiredFields = append([]string(nil), def.RequiredFields...)
	c.CollectedFields = make(map[string]string)
	c.Entities = make(map[string]string)
	c.FieldAttempts = make(map[string]int)
}

// clearTask drops the active task entirely.
func (c *ConversationContext) clearTask() {
	c.CurrentTask = ""
	c.RequiredFields = nil
	c.CollectedFields = make(map[string]string)
	c.Entities = make(map[string]string)
	c.FieldAttempts = make(map[string]int)
}

// clearFields keeps the task but discards everything collected for it.
func (c *ConversationContext) clearFields() {
	c.CollectedFields = make(map[string]string)
	c.Entities = make(map[string]string)
	c.FieldAttempts = make(map[string]int)
}

// missingFields computes what is still needed, in catalog order.
func (c *ConversationContext) missingFields() []string {
	return catalog.MissingFields(c.CurrentTask, c.CollectedFields, c.Entities)
}

// allFields is the union of collected fields and collaborator entities;
// explicitly collected answers win on conflict.
func (c *ConversationContext) allFields() map[string]string {
	fields := make(map[string]string, len(c.CollectedFields)+len(c.Entities))
	for k, v := range c.Entities {
		fields[k] = v
	}
	for k, v := range c.CollectedFields {
		fields[k] = v
	}
	return fields
}
