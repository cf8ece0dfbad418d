package repository

import (
	"context"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

type TaskEventRepository interface {
	Append(ctx context.Context, event *domain.TaskEvent) error
	ListByTask(ctx context.Context, taskID string, limit int) ([]domain.TaskEvent, error)
}
