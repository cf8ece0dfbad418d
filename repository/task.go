package repository

import (
	"context"
	"time"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

type TaskFilter struct {
	AssignedTo string
	CreatedBy  string
	Department string
	Statuses   []domain.TaskStatus
	Limit      int
	Offset     int
	// After, when set, replaces Offset: only tasks ordered after the cursor
	// are returned. Results are ordered by created_at, id descending.
	After *TaskCursor
}

// TaskCursor marks a position in the task listing order.
type TaskCursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorOf returns the cursor positioned on task.
func CursorOf(task domain.Task) *TaskCursor {
	return &TaskCursor{CreatedAt: task.CreatedAt, ID: task.ID}
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Update writes the task if its stored version still equals task.Version
	// and bumps the version. A stale version yields domain.ErrVersionConflict.
	// The stored escalation level is never lowered; task.EscalationLevel is
	// refreshed from the row.
	Update(ctx context.Context, task *domain.Task) error
	// RaiseEscalation stores level only when it is above the current one and
	// reports whether it did. It does not touch the version.
	RaiseEscalation(ctx context.Context, id string, level domain.EscalationLevel) (bool, error)
	Delete(ctx context.Context, id string) error
}
