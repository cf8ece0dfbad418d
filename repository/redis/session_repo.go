package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
)

const sessionPrefix = "hermes:session:"

type sessionRepository struct {
	client redislib.Cmdable
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository. Sessions
// expire with their key.
func NewSessionRepository(client redislib.Cmdable, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{client: client, ttl: ttl}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	result, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(result, &session); err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = r.ttl
	}

	return r.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err()
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}

// ExtendUntil pushes both the key TTL and the stored expiry forward. A zero
// until falls back to the default TTL.
func (r *sessionRepository) ExtendUntil(ctx context.Context, id string, until time.Time) error {
	if until.IsZero() {
		until = time.Now().Add(r.ttl)
	}

	session, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	session.ExpiresAt = until.UTC()
	return r.Save(ctx, session)
}

func sessionKey(id string) string {
	return sessionPrefix + id
}
