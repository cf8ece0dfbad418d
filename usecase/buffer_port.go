package usecase

import (
	"context"
	"errors"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the offline buffer so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferWorker(ctx context.Context, operation string, worker *domain.Worker) error
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
	BufferSchedule(ctx context.Context, operation string, schedule *domain.ShiftSchedule) error
	BufferEvent(ctx context.Context, event *domain.TaskEvent) error
}

// Bufferable reports whether a failed write may be parked in the offline
// buffer. Domain errors are answers, not outages, and are never buffered.
func Bufferable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var dErr *domain.Error
	return !errors.As(err, &dErr)
}
