package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
)

// Config controls token signing and session lifetime.
type Config struct {
	Secret     string
	Issuer     string
	TokenTTL   time.Duration
	SessionTTL time.Duration
}

// Result is returned by Login and Refresh.
type Result struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   *domain.Session `json:"session"`
	Worker    *domain.Worker  `json:"worker,omitempty"`
}

type UseCase struct {
	workers  repository.WorkerRepository
	sessions repository.SessionRepository
	cfg      Config
	clock    usecase.Clock
	logger   *zap.Logger
}

func New(workers repository.WorkerRepository, sessions repository.SessionRepository, cfg Config, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.TokenTTL <= 0 || cfg.TokenTTL > cfg.SessionTTL {
		cfg.TokenTTL = cfg.SessionTTL
	}
	return &UseCase{
		workers:  workers,
		sessions: sessions,
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
	}
}

// Login verifies the credentials, opens a session and signs a token for it.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.Invalidf("username and password are required")
	}

	worker, err := uc.workers.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrWorkerNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if worker.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(worker.PasswordHash), []byte(password)) != nil {
		uc.logger.Info("login rejected", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}
	if !worker.IsActive() {
		return nil, domain.NewError(domain.ErrCodeForbidden, "account is inactive")
	}

	now := uc.clock.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    worker.ID,
		Role:      worker.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.SessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	result, err := uc.issue(session, now)
	if err != nil {
		return nil, err
	}
	result.Worker = worker
	uc.logger.Info("login succeeded", zap.String("worker_id", worker.ID), zap.String("role", string(worker.Role)))
	return result, nil
}

// Refresh extends a live session and signs a new token.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string) (*Result, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	session.ExpiresAt = now.Add(uc.cfg.SessionTTL)
	if err := uc.sessions.ExtendUntil(ctx, sessionID, session.ExpiresAt); err != nil {
		return nil, err
	}

	return uc.issue(session, now)
}

// Logout revokes the session; tokens bound to it stop working.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrSessionNotFound
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// GetSession returns a live session or ErrSessionNotFound.
func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.clock.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) issue(session *domain.Session, now time.Time) (*Result, error) {
	expires := now.Add(uc.cfg.TokenTTL)
	if session.ExpiresAt.Before(expires) {
		expires = session.ExpiresAt
	}
	token, err := SignToken(uc.cfg.Secret, Claims{
		UserID:    session.UserID,
		Role:      session.Role,
		SessionID: session.ID,
		Issuer:    uc.cfg.Issuer,
		IssuedAt:  now,
		ExpiresAt: expires,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &Result{Token: token, ExpiresAt: expires, Session: session}, nil
}

// HashPassword returns the bcrypt hash stored for a worker.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", domain.Invalidf("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Claims are the fields carried by an access token.
type Claims struct {
	UserID    string
	Role      domain.Role
	SessionID string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SignToken produces an HS256 token for claims.
func SignToken(secret string, claims Claims) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    claims.UserID,
		"role":       string(claims.Role),
		"session_id": claims.SessionID,
		"iss":        claims.Issuer,
		"iat":        claims.IssuedAt.Unix(),
		"exp":        claims.ExpiresAt.Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseToken verifies an HS256 token and returns its claims. An issuer
// mismatch is rejected when issuer is non-empty.
func ParseToken(secret, issuer, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if issuer != "" && !mapClaims.VerifyIssuer(issuer, true) {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "unexpected token issuer")
	}

	claims := &Claims{}
	claims.UserID, _ = mapClaims["user_id"].(string)
	claims.SessionID, _ = mapClaims["session_id"].(string)
	claims.Issuer, _ = mapClaims["iss"].(string)
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = domain.Role(role)
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if claims.UserID == "" || !claims.Role.IsValid() {
		return nil, domain.NewError(domain.ErrCodeUnauthorized, "token is missing identity claims")
	}
	return claims, nil
}
