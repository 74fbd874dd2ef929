package dialogue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fahim-ux/hsbc-backend-sub000/internal/pkg/logger"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/catalog"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/executor"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/extractor"
	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue/intent"
)

const (
	welcomeReply = "Hello! I'm your banking assistant. I can help you check balances, transfer money, block cards, apply for loans or file complaints. What can I do for you today?"

	capabilitiesReply = "I can help with balance inquiries, money transfers, card blocking, loan applications and complaints. What would you like to do?"

	fallbackReply = "I'm sorry, I didn't quite get that. Could you tell me again what you'd like to do?"

	recoveryReply = "I'm sorry, something went wrong on my side. Let's start over - what would you like to do?"

	abandonReply = "I'm having trouble getting that right. Let's start fresh - what would you like to do?"

	idleCompletionReply = "Is there anything else I can help you with?"

	closingReply = "Thank you for banking with us. Have a great day!"

	reconfirmReply = "Just to be sure - shall I go ahead? Please answer yes or no."
)

// maxFieldAttempts bounds consecutive failures on one field before the
// engine abandons the task and returns to intent detection.
const maxFieldAttempts = 3

// historyTailSize is how many recent transcript lines accompany a cold-start
// classification call.
const historyTailSize = 4

// Turn is the outcome of processing one user message.
type Turn struct {
	Reply   string
	Context *ConversationContext

	// Outcome is non-nil only when this turn dispatched a task.
	Outcome *TaskOutcome
}

// TaskOutcome describes one dispatched task: which task ran, how it ended and
// what the executor returned.
type TaskOutcome struct {
	Task    catalog.TaskType
	Status  TaskStatus
	Reply   string
	Payload interface{}
}

// Engine is the dialogue orchestrator: it owns per-conversation contexts,
// routes each message to the handler for the current phase and dispatches
// completed tasks to the operation executor.
type Engine struct {
	store     ContextStore
	router    *intent.Router
	extractor *extractor.Extractor
	executor  *executor.Executor
	logger    logger.ILogger

	collabTimeout time.Duration
	opTimeout     time.Duration

	// one mutex per conversation id: turns within a conversation are
	// strictly serialized, different conversations run independently
	locks sync.Map
}

func NewEngine(
	store ContextStore,
	router *intent.Router,
	slotExtractor *extractor.Extractor,
	opExecutor *executor.Executor,
	log logger.ILogger,
	collabTimeout, opTimeout time.Duration,
) *Engine {
	if collabTimeout <= 0 {
		collabTimeout = 15 * time.Second
	}
	if opTimeout <= 0 {
		opTimeout = 15 * time.Second
	}
	return &Engine{
		store:         store,
		router:        router,
		extractor:     slotExtractor,
		executor:      opExecutor,
		logger:        log,
		collabTimeout: collabTimeout,
		opTimeout:     opTimeout,
	}
}

func (e *Engine) lockFor(conversationID string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(conversationID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ProcessMessage runs one turn: it appends the user message, invokes the
// handler for the current phase and appends the assistant reply. Exactly one
// user and one assistant message are added per call. A panic in any handler
// resets the phase to intent detection instead of propagating.
func (e *Engine) ProcessMessage(ctx context.Context, conversationID, userID, text string) (*Turn, error) {
	text = strings.TrimSpace(text)
	if conversationID == "" || text == "" {
		return nil, fmt.Errorf("conversation id and message text are required")
	}

	mu := e.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()

	c, found := e.store.Get(conversationID)
	if !found {
		c = NewConversationContext(conversationID, userID)
		e.logger.Info("Dialogue", "Conversation created", map[string]interface{}{
			"conversation_id": conversationID,
			"user_id":         userID,
		})
	}

	now := time.Now()
	c.appendMessage(RoleUser, text, now)
	c.pendingOutcome = nil

	reply := e.dispatch(ctx, c, text)

	c.appendMessage(RoleAssistant, reply, time.Now())
	c.UpdatedAt = time.Now()
	e.store.Put(c)

	return &Turn{Reply: reply, Context: c, Outcome: c.pendingOutcome}, nil
}

// GetContext returns the current context for a conversation, if any.
func (e *Engine) GetContext(conversationID string) (*ConversationContext, bool) {
	return e.store.Get(conversationID)
}

// ClearConversation removes a conversation and its lock.
func (e *Engine) ClearConversation(conversationID string) {
	mu := e.lockFor(conversationID)
	mu.Lock()
	defer mu.Unlock()
	e.store.Delete(conversationID)
	e.locks.Delete(conversationID)
}

func (e *Engine) dispatch(ctx context.Context, c *ConversationContext, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Dialogue", "Phase handler panicked", map[string]interface{}{
				"conversation_id": c.Id,
				"phase":           string(c.Phase),
				"panic":           fmt.Sprint(r),
			})
			c.clearTask()
			c.Phase = PhaseIntentDetection
			reply = recoveryReply
		}
	}()

	switch c.Phase {
	case PhaseGreeting:
		return e.handleGreeting(ctx, c, text)
	case PhaseIntentDetection:
		return e.handleIntentDetection(ctx, c, text)
	case PhaseSlotFilling:
		return e.handleSlotFilling(ctx, c, text)
	case PhaseConfirmation:
		return e.handleConfirmation(ctx, c, text)
	case PhaseExecution, PhaseCompletion:
		return e.handleCompletion(ctx, c, text)
	default:
		c.Phase = PhaseIntentDetection
		return capabilitiesReply
	}
}

func (e *Engine) handleGreeting(ctx context.Context, c *ConversationContext, text string) string {
	if matchesAny(text, catalog.Greetings) {
		return welcomeReply
	}
	// A first message that is not a greeting already carries the request.
	c.Phase = PhaseIntentDetection
	return e.handleIntentDetection(ctx, c, text)
}

func (e *Engine) handleIntentDetection(ctx context.Context, c *ConversationContext, text string) string {
	cctx, cancel := context.WithTimeout(ctx, e.collabTimeout)
	defer cancel()

	det, err := e.router.Detect(cctx, text, e.historyTail(c))
	if err != nil {
		// Collaborator failure: unrecognized intent, stay put.
		e.logger.Warn("Dialogue", "Intent detection failed", map[string]interface{}{
			"conversation_id": c.Id,
			"error":           err.Error(),
		})
		return fallbackReply
	}

	if det.NeedsClarification {
		if det.Question != "" {
			return det.Question
		}
		return fallbackReply
	}

	if det.Task == "" || det.Task == catalog.TaskGeneralInquiry {
		return capabilitiesReply
	}

	return e.beginTask(ctx, c, det.Task, det.Entities, text)
}

// beginTask installs a newly detected task and decides the next phase:
// zero-field tasks execute immediately, fully pre-filled tasks go to
// confirmation, anything else enters slot filling.
func (e *Engine) beginTask(ctx context.Context, c *ConversationContext, task catalog.TaskType, entities map[string]string, text string) string {
	c.setTask(task)

	for field, value := range entities {
		if !isRequiredField(c, field) && field != "description" {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || catalog.ValidateField(task, field, normalizeValue(task, field, value)) != nil {
			continue
		}
		c.Entities[field] = normalizeValue(task, field, value)
	}

	if task == catalog.TaskInformationLookup {
		query := strings.TrimSpace(entities["query"])
		if query == "" {
			query = text
		}
		c.CollectedFields["query"] = query
	}

	e.logger.Info("Dialogue", "Task started", map[string]interface{}{
		"conversation_id": c.Id,
		"task":            string(task),
	})

	if len(c.RequiredFields) == 0 {
		return e.executeTask(ctx, c)
	}

	missing := c.missingFields()
	if len(missing) == 0 {
		c.Phase = PhaseConfirmation
		return e.confirmationPrompt(c)
	}

	c.Phase = PhaseSlotFilling
	return catalog.PromptFor(task, missing[0])
}

func (e *Engine) handleSlotFilling(ctx context.Context, c *ConversationContext, text string) string {
	// Interruption check comes first: if the utterance signals a different
	// task, the switch wins even when the text would also satisfy the
	// currently awaited field.
	if sw := e.router.DetectSwitch(text); sw != "" && sw != c.CurrentTask {
		return e.switchTask(ctx, c, sw, text)
	}
	return e.fillFromUtterance(ctx, c, text, "")
}

// switchTask abandons the current task and re-enters slot filling for the new
// one. Previously collected fields are discarded atomically.
func (e *Engine) switchTask(ctx context.Context, c *ConversationContext, task catalog.TaskType, text string) string {
	e.logger.Info("Dialogue", "Task switched", map[string]interface{}{
		"conversation_id": c.Id,
		"from":            string(c.CurrentTask),
		"to":              string(task),
	})
	c.setTask(task)

	if task == catalog.TaskInformationLookup {
		c.CollectedFields["query"] = text
	}
	if len(c.RequiredFields) == 0 {
		return e.executeTask(ctx, c)
	}

	c.Phase = PhaseSlotFilling
	return e.fillFromUtterance(ctx, c, text, "Sure, let's do that instead. ")
}

// fillFromUtterance runs extraction for the missing fields and merges results
// one field at a time in catalog order, validating each candidate. The first
// validation error is surfaced; nothing after it is merged.
func (e *Engine) fillFromUtterance(ctx context.Context, c *ConversationContext, text, prefix string) string {
	missing := c.missingFields()
	if len(missing) == 0 {
		c.Phase = PhaseConfirmation
		return prefix + e.confirmationPrompt(c)
	}

	cctx, cancel := context.WithTimeout(ctx, e.collabTimeout)
	defer cancel()
	fields := e.extractor.Extract(cctx, c.CurrentTask, text, missing)

	filled := false
	for _, field := range c.RequiredFields {
		value, ok := fields[field]
		if !ok || value == "" || !isMissing(c, field) {
			continue
		}
		value = normalizeValue(c.CurrentTask, field, value)
		if err := catalog.ValidateField(c.CurrentTask, field, value); err != nil {
			if msg, abandoned := e.noteFailedAttempt(c, field); abandoned {
				return msg
			}
			return err.Error()
		}
		c.CollectedFields[field] = value
		delete(c.FieldAttempts, field)
		filled = true
	}

	missing = c.missingFields()
	if len(missing) == 0 {
		c.Phase = PhaseConfirmation
		return prefix + e.confirmationPrompt(c)
	}

	next := missing[0]
	if !filled && prefix == "" {
		if msg, abandoned := e.noteFailedAttempt(c, next); abandoned {
			return msg
		}
		return "Sorry, I didn't catch that. " + catalog.PromptFor(c.CurrentTask, next)
	}
	return prefix + catalog.PromptFor(c.CurrentTask, next)
}

func (e *Engine) noteFailedAttempt(c *ConversationContext, field string) (string, bool) {
	c.FieldAttempts[field]++
	if c.FieldAttempts[field] < maxFieldAttempts {
		return "", false
	}
	e.logger.Warn("Dialogue", "Task abandoned after repeated failures", map[string]interface{}{
		"conversation_id": c.Id,
		"task":            string(c.CurrentTask),
		"field":           field,
	})
	c.clearTask()
	c.Phase = PhaseIntentDetection
	return abandonReply, true
}

func (e *Engine) handleConfirmation(ctx context.Context, c *ConversationContext, text string) string {
	if sw := e.router.DetectSwitch(text); sw != "" && sw != c.CurrentTask {
		return e.switchTask(ctx, c, sw, text)
	}

	affirmed := matchesAny(text, catalog.Affirmations)
	declined := matchesAny(text, catalog.Negations)

	switch {
	case affirmed && declined:
		// "no, don't go ahead" hits both vocabularies. A refusal word anywhere
		// in the reply means we must not execute, and a mixed signal is not a
		// clean refusal either, so ask again.
		return reconfirmReply
	case declined:
		c.clearFields()
		c.Phase = PhaseSlotFilling
		missing := c.missingFields()
		if len(missing) == 0 {
			// Task has no fields to re-collect; start over instead.
			c.clearTask()
			c.Phase = PhaseIntentDetection
			return capabilitiesReply
		}
		return "No problem, let's try that again. " + catalog.PromptFor(c.CurrentTask, missing[0])
	case affirmed:
		return e.executeTask(ctx, c)
	default:
		return reconfirmReply
	}
}

// executeTask dispatches the completed task. Success or failure, the
// conversation advances to completion; failed tasks are not retried.
func (e *Engine) executeTask(ctx context.Context, c *ConversationContext) string {
	c.Phase = PhaseExecution

	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	result := e.executor.Execute(opCtx, c.UserId, c.CurrentTask, c.allFields())

	c.Phase = PhaseCompletion
	if result.Success {
		c.LastTaskStatus = TaskStatusCompleted
	} else {
		c.LastTaskStatus = TaskStatusFailed
	}
	c.pendingOutcome = &TaskOutcome{
		Task:    c.CurrentTask,
		Status:  c.LastTaskStatus,
		Reply:   result.Reply,
		Payload: result.Payload,
	}
	return result.Reply
}

func (e *Engine) handleCompletion(ctx context.Context, c *ConversationContext, text string) string {
	// "thanks, now block my card" is a new request wearing a pleasantry, so
	// look for a task switch before reading the message as a goodbye.
	if sw := e.router.DetectSwitch(text); sw != "" {
		c.clearTask()
		return e.beginTask(ctx, c, sw, nil, text)
	}
	if matchesAny(text, catalog.Closings) {
		return closingReply
	}
	// Anything else signals another need: full reset, then treat this very
	// message as intent-detection input.
	c.clearTask()
	c.Phase = PhaseIntentDetection
	return e.handleIntentDetection(ctx, c, text)
}

func (e *Engine) confirmationPrompt(c *ConversationContext) string {
	def := catalog.Lookup(c.CurrentTask)
	fields := c.allFields()

	var b strings.Builder
	b.WriteString("Here's what I have for your request (")
	b.WriteString(strings.ToLower(def.Description))
	b.WriteString("):\n")
	for _, field := range def.RequiredFields {
		b.WriteString("- ")
		b.WriteString(strings.ReplaceAll(field, "_", " "))
		b.WriteString(": ")
		b.WriteString(fields[field])
		b.WriteString("\n")
	}
	b.WriteString("Shall I go ahead?")
	return b.String()
}

func (e *Engine) historyTail(c *ConversationContext) []string {
	start := len(c.Messages) - 1 - historyTailSize
	if start < 0 {
		start = 0
	}
	// the current user message is already appended; exclude it
	var tail []string
	for _, m := range c.Messages[start : len(c.Messages)-1] {
		tail = append(tail, m.Role+": "+m.Text)
	}
	return tail
}

func isRequiredField(c *ConversationContext, field string) bool {
	for _, f := range c.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

func isMissing(c *ConversationContext, field string) bool {
	return c.CollectedFields[field] == "" && c.Entities[field] == ""
}

// normalizeValue canonicalizes enum answers so "Personal" and "personal"
// collect identically.
func normalizeValue(task catalog.TaskType, field, value string) string {
	if rule, ok := catalog.FieldRule(task, field); ok && rule.Kind == catalog.RuleEnum {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return strings.TrimSpace(value)
}

// matchesAny reports whether the utterance contains one of the vocabulary
// phrases on word boundaries.
func matchesAny(text string, vocab []string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, phrase := range vocab {
		if containsPhrase(lower, phrase) {
			return true
		}
	}
	return false
}

func containsPhrase(text, phrase string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], phrase)
		if idx == -1 {
			return false
		}
		start := from + idx
		end := start + len(phrase)
		startOk := start == 0 || !isWordChar(text[start-1])
		endOk := end == len(text) || !isWordChar(text[end])
		if startOk && endOk {
			return true
		}
		from = start + 1
	}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '\''
}
