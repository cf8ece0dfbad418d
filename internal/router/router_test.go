package router_test

import (
	"context"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/Likheet/hermes-monitoring-sub002/api/handler"
	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/internal/middleware"
	"github.com/Likheet/hermes-monitoring-sub002/internal/router"
	authUC "github.com/Likheet/hermes-monitoring-sub002/usecase/auth"
)

type liveSessions struct{}

func (liveSessions) GetSession(_ context.Context, id string) (*domain.Session, error) {
	return &domain.Session{ID: id, UserID: "w-1", Role: domain.RoleWorker}, nil
}

func TestRouter_GuardsRoutes(t *testing.T) {
	t.Parallel()

	auth := middleware.JWTAuth(middleware.AuthConfig{Secret: "secret", Issuer: "hermes"}, liveSessions{}, zap.NewNop())
	handler := router.New(router.Handlers{
		Auth:       &apiHandler.AuthHandler{},
		Worker:     &apiHandler.WorkerHandler{},
		Schedule:   &apiHandler.ScheduleHandler{},
		Task:       &apiHandler.TaskHandler{},
		Escalation: &apiHandler.EscalationHandler{},
		Health:     &apiHandler.HealthHandler{},
	}, auth, zap.NewNop())

	workerToken, err := authUC.SignToken("secret", authUC.Claims{
		UserID:    "w-1",
		Role:      domain.RoleWorker,
		SessionID: "s-1",
		Issuer:    "hermes",
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	tests := map[string]struct {
		method     string
		path       string
		token      string
		wantStatus int
	}{
		"tasks without token":         {method: "GET", path: "/api/v1/tasks", wantStatus: fasthttp.StatusUnauthorized},
		"logout without token":        {method: "POST", path: "/api/v1/auth/logout", wantStatus: fasthttp.StatusUnauthorized},
		"worker deleting a task":      {method: "DELETE", path: "/api/v1/tasks/t-1", token: workerToken, wantStatus: fasthttp.StatusForbidden},
		"worker writing a schedule":   {method: "PUT", path: "/api/v1/workers/w-1/schedules/2024-05-01", token: workerToken, wantStatus: fasthttp.StatusForbidden},
		"worker creating a worker":    {method: "POST", path: "/api/v1/workers", token: workerToken, wantStatus: fasthttp.StatusForbidden},
		"unknown route":               {method: "GET", path: "/api/v1/rooms", wantStatus: fasthttp.StatusNotFound},
		"wrong method on known route": {method: "PATCH", path: "/api/v1/tasks", wantStatus: fasthttp.StatusMethodNotAllowed},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var ctx fasthttp.RequestCtx
			ctx.Request.Header.SetMethod(tc.method)
			ctx.Request.SetRequestURI(tc.path)
			if tc.token != "" {
				ctx.Request.Header.Set("Authorization", "Bearer "+tc.token)
			}

			handler(&ctx)

			if got := ctx.Response.StatusCode(); got != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", got, tc.wantStatus, ctx.Response.Body())
			}
		})
	}
}
