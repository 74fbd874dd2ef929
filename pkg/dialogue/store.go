package dialogue

// ContextStore is the session store mapping conversation id to its context.
// Implementations must be safe for concurrent use across different ids; the
// engine serializes turns within one id itself.
type ContextStore interface {
	Get(conversationID string) (*ConversationContext, bool)
	Put(c *ConversationContext)
	Delete(conversationID string)
}
