package repository

import (
	"context"
	"time"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

// SessionRepository stores login sessions. Get fails with
// domain.ErrSessionNotFound once a session is deleted or has expired.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// ExtendUntil moves the session expiry to until.
	ExtendUntil(ctx context.Context, id string, until time.Time) error
}
