package memory

import (
	"sort"
	"time"

	"ai-docchat-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live chat sessions in memory. Sessions do not
// survive a restart.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions never expire on their own; the cache is used for its
	// thread-safe map semantics.
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(runtime *store.Runtime) {
	r.cache.Set(runtime.ID(), runtime, cache.NoExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Runtime, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Runtime), true
	}
	return nil, false
}

// ListByUser returns the user's sessions, newest first.
func (r *SessionRepository) ListByUser(userID uuid.UUID) []*store.Runtime {
	var out []*store.Runtime
	for _, item := range r.cache.Items() {
		runtime, ok := item.Object.(*store.Runtime)
		if !ok {
			continue
		}
		if runtime.Session.UserId == userID {
			out = append(out, runtime)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Session.CreatedAt.After(out[j].Session.CreatedAt)
	})
	return out
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
