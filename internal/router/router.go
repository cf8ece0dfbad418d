package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/Likheet/hermes-monitoring-sub002/api/handler"
	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/internal/middleware"
)

type Handlers struct {
	Auth       *apiHandler.AuthHandler
	Worker     *apiHandler.WorkerHandler
	Schedule   *apiHandler.ScheduleHandler
	Task       *apiHandler.TaskHandler
	Escalation *apiHandler.EscalationHandler
	Health     *apiHandler.HealthHandler
}

// New builds the route table. Every /api/v1 route except login goes through
// auth; role checks here only short-circuit what the use cases enforce.
func New(handlers Handlers, auth middleware.Middleware, logger *zap.Logger) fasthttp.RequestHandler {
	r := router.New()

	protected := func(h fasthttp.RequestHandler, roles ...domain.Role) fasthttp.RequestHandler {
		if len(roles) > 0 {
			return middleware.Chain(h, auth, middleware.RequireRole(roles...))
		}
		return middleware.Chain(h, auth)
	}
	managers := []domain.Role{domain.RoleSupervisor, domain.RoleAdmin}

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", protected(handlers.Auth.Refresh))
	r.POST("/api/v1/auth/logout", protected(handlers.Auth.Logout))

	r.GET("/api/v1/me", protected(handlers.Worker.GetProfile))
	r.PUT("/api/v1/me", protected(handlers.Worker.UpdateProfile))

	// Workers and schedules
	r.GET("/api/v1/workers", protected(handlers.Worker.List))
	r.POST("/api/v1/workers", protected(handlers.Worker.Upsert, domain.RoleAdmin))
	r.GET("/api/v1/workers/{id}", protected(handlers.Worker.Get))
	r.PUT("/api/v1/workers/{id}", protected(handlers.Worker.Upsert, domain.RoleAdmin))
	r.PUT("/api/v1/workers/{id}/shift", protected(handlers.Worker.SetShift, managers...))
	r.GET("/api/v1/workers/{id}/availability", protected(handlers.Schedule.Availability))
	r.GET("/api/v1/workers/{id}/schedules", protected(handlers.Schedule.List))
	r.GET("/api/v1/workers/{id}/schedules/{date}", protected(handlers.Schedule.Get))
	r.PUT("/api/v1/workers/{id}/schedules/{date}", protected(handlers.Schedule.Upsert, managers...))
	r.DELETE("/api/v1/workers/{id}/schedules/{date}", protected(handlers.Schedule.Delete, managers...))

	// Tasks
	r.GET("/api/v1/tasks", protected(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", protected(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", protected(handlers.Task.GetTask))
	r.DELETE("/api/v1/tasks/{id}", protected(handlers.Task.DeleteTask, domain.RoleAdmin))
	r.PUT("/api/v1/tasks/{id}/assign", protected(handlers.Task.AssignTask))
	r.POST("/api/v1/tasks/{id}/actions/{action}", protected(handlers.Task.Action))
	r.GET("/api/v1/tasks/{id}/events", protected(handlers.Task.Events))

	r.GET("/api/v1/escalations", protected(handlers.Escalation.List))
	r.POST("/api/v1/escalations/{id}/acknowledge", protected(handlers.Escalation.Acknowledge))

	return middleware.Chain(r.Handler, middleware.Recover(logger), middleware.AccessLog(logger))
}
