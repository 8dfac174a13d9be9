package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bpmn-interview-be/internal/repository/contract"
	"bpmn-interview-be/pkg/interview"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "interview:session:"

// SessionRepository stores sessions as JSON in Redis so several API
// instances can serve the same interview.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func (r *SessionRepository) Save(ctx context.Context, session *interview.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.rdb.Set(ctx, key(session.ID), data, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*interview.Session, error) {
	data, err := r.rdb.GetEx(ctx, key(id), r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", contract.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var s interview.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	normalize(&s)
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, key(id)).Err()
}

// normalize restores the empty collections JSON null would leave nil.
func normalize(s *interview.Session) {
	if s.History == nil {
		s.History = interview.TopicHistory{}
	}
	if s.Answers == nil {
		s.Answers = map[string]string{}
	}
	if s.TopicsCompleted == nil {
		s.TopicsCompleted = []string{}
	}
	if s.Transcript == nil {
		s.Transcript = []interview.TranscriptEntry{}
	}
}
