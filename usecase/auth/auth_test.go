package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	"github.com/Likheet/hermes-monitoring-sub002/usecase/auth"
)

type fakeWorkers struct {
	byUsername map[string]*domain.Worker
}

func (f *fakeWorkers) GetByID(_ context.Context, id string) (*domain.Worker, error) {
	for _, w := range f.byUsername {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, domain.ErrWorkerNotFound
}

func (f *fakeWorkers) GetByUsername(_ context.Context, username string) (*domain.Worker, error) {
	if w, ok := f.byUsername[username]; ok {
		return w, nil
	}
	return nil, domain.ErrWorkerNotFound
}

func (f *fakeWorkers) List(context.Context, repository.WorkerFilter) ([]domain.Worker, error) {
	return nil, nil
}

func (f *fakeWorkers) Upsert(context.Context, *domain.Worker) error { return nil }

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func (f *fakeSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeSessions) Save(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) ExtendUntil(_ context.Context, id string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = until
	f.sessions[id] = s
	return nil
}

const secret = "test-secret"

func newUseCase(t *testing.T) (*auth.UseCase, *fakeSessions) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("housekeeping1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	workers := &fakeWorkers{byUsername: map[string]*domain.Worker{
		"maria": {ID: "w-1", Username: "maria", Role: domain.RoleWorker, Status: domain.WorkerStatusActive, PasswordHash: string(hash)},
		"old":   {ID: "w-2", Username: "old", Role: domain.RoleWorker, Status: domain.WorkerStatusInactive, PasswordHash: string(hash)},
	}}
	sessions := &fakeSessions{sessions: map[string]domain.Session{}}

	uc := auth.New(workers, sessions, auth.Config{
		Secret:     secret,
		Issuer:     "hermes",
		TokenTTL:   time.Hour,
		SessionTTL: 12 * time.Hour,
	}, nil, nil)
	return uc, sessions
}

func TestLogin(t *testing.T) {
	t.Parallel()

	uc, sessions := newUseCase(t)

	result, err := uc.Login(context.Background(), "maria", "housekeeping1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, ok := sessions.sessions[result.Session.ID]; !ok {
		t.Fatalf("session was not stored")
	}

	claims, err := auth.ParseToken(secret, "hermes", result.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "w-1" || claims.Role != domain.RoleWorker || claims.SessionID != result.Session.ID {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if d := result.ExpiresAt.Sub(result.Session.CreatedAt); d != time.Hour {
		t.Errorf("token lifetime = %v, want 1h", d)
	}
}

func TestLogin_Rejections(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		username, password string
		code               domain.ErrorCode
	}{
		"unknown user":   {username: "ghost", password: "housekeeping1", code: domain.ErrCodeUnauthorized},
		"wrong password": {username: "maria", password: "nope-nope", code: domain.ErrCodeUnauthorized},
		"inactive":       {username: "old", password: "housekeeping1", code: domain.ErrCodeForbidden},
		"empty password": {username: "maria", password: "", code: domain.ErrCodeInvalid},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			uc, _ := newUseCase(t)
			if _, err := uc.Login(context.Background(), tc.username, tc.password); !domain.IsDomainError(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	t.Parallel()

	uc, _ := newUseCase(t)
	ctx := context.Background()

	login, err := uc.Login(ctx, "maria", "housekeeping1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := uc.Refresh(ctx, login.Session.ID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.Session.ID != login.Session.ID || refreshed.Token == "" {
		t.Errorf("unexpected refresh result: %+v", refreshed)
	}

	if err := uc.Logout(ctx, login.Session.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := uc.GetSession(ctx, login.Session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected session to be revoked, got %v", err)
	}
	if _, err := uc.Refresh(ctx, login.Session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("expected refresh of revoked session to fail, got %v", err)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	t.Parallel()

	now := time.Now()
	valid := auth.Claims{UserID: "w-1", Role: domain.RoleAdmin, SessionID: "s", Issuer: "hermes", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}

	expired := valid
	expired.ExpiresAt = now.Add(-time.Minute)

	noRole := valid
	noRole.Role = ""

	tests := map[string]struct {
		secret string
		claims auth.Claims
		issuer string
	}{
		"wrong secret": {secret: "other", claims: valid, issuer: "hermes"},
		"expired":      {secret: secret, claims: expired, issuer: "hermes"},
		"wrong issuer": {secret: secret, claims: valid, issuer: "someone-else"},
		"missing role": {secret: secret, claims: noRole, issuer: "hermes"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			token, err := auth.SignToken(tc.secret, tc.claims)
			if err != nil {
				t.Fatalf("SignToken: %v", err)
			}
			if _, err := auth.ParseToken(secret, tc.issuer, token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
				t.Fatalf("expected UNAUTHORIZED, got %v", err)
			}
		})
	}
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	if _, err := auth.HashPassword("short"); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("expected INVALID for short password, got %v", err)
	}
	hash, err := auth.HashPassword("long-enough")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("long-enough")) != nil {
		t.Errorf("hash does not verify")
	}
}
