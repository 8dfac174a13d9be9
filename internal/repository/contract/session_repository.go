package contract

import (
	"context"
	"errors"

	"bpmn-interview-be/pkg/interview"
)

var ErrSessionNotFound = errors.New("interview session not found")

// SessionRepository stores interview sessions between requests. Get returns
// a copy; changes are only visible to others after Save.
type SessionRepository interface {
	Save(ctx context.Context, session *interview.Session) error
	Get(ctx context.Context, id string) (*interview.Session, error)
	Delete(ctx context.Context, id string) error
}
