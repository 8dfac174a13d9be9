package memory

import (
	"context"
	"fmt"
	"time"

	"bpmn-interview-be/internal/repository/contract"
	"bpmn-interview-be/pkg/interview"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps sessions in process memory. Save renews the
// expiry; Get never writes, so an unlocked read cannot overwrite a newer
// save.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
		ttl:   ttl,
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *interview.Session) error {
	r.cache.Set(session.ID, session.Clone(), r.ttl)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*interview.Session, error) {
	x, found := r.cache.Get(id)
	if !found {
		return nil, fmt.Errorf("%w: %s", contract.ErrSessionNotFound, id)
	}
	return x.(*interview.Session).Clone(), nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}
