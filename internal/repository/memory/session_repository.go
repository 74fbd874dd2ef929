package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/fahim-ux/hsbc-backend-sub000/pkg/dialogue"
)

// SessionRepository keeps live conversation contexts in process memory with a
// sliding expiry, so abandoned conversations age out on their own.
type SessionRepository struct {
	cache *cache.Cache
}

var _ dialogue.ContextStore = (*SessionRepository)(nil)

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SessionRepository) Get(conversationID string) (*dialogue.ConversationContext, bool) {
	if x, found := r.cache.Get(conversationID); found {
		return x.(*dialogue.ConversationContext), true
	}
	return nil, false
}

func (r *SessionRepository) Put(c *dialogue.ConversationContext) {
	r.cache.Set(c.Id, c, cache.DefaultExpiration)
}

func (r *SessionRepository) Delete(conversationID string) {
	r.cache.Delete(conversationID)
}
