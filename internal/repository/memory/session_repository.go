package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"policygen/pkg/wizard"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	// Expired wizard sessions are purged every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

// Save stores the session and restarts its expiry.
func (r *SessionRepository) Save(session *wizard.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*wizard.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*wizard.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
