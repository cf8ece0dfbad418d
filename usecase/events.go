package usecase

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
)

// EventRecorder appends task events to the audit trail and publishes them.
// A failed append is buffered; a failed publish is only logged.
type EventRecorder struct {
	events    repository.TaskEventRepository
	publisher EventPublisher
	buffer    OperationBuffer
	logger    *zap.Logger
}

func NewEventRecorder(events repository.TaskEventRepository, publisher EventPublisher, buffer OperationBuffer, logger *zap.Logger) *EventRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRecorder{
		events:    events,
		publisher: publisher,
		buffer:    buffer,
		logger:    logger,
	}
}

// Record stores and publishes event. It only fails if the event could be
// neither stored nor buffered.
func (r *EventRecorder) Record(ctx context.Context, event *domain.TaskEvent) error {
	if r == nil || event == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	if r.events != nil {
		if err := r.events.Append(ctx, event); err != nil {
			if !Bufferable(err) || r.buffer == nil {
				return err
			}
			if bufErr := r.buffer.BufferEvent(ctx, event); bufErr != nil {
				r.logger.Error("failed to buffer task event", zap.String("event", event.Name), zap.Error(bufErr))
				return err
			}
			r.logger.Warn("task event buffered", zap.String("event", event.Name), zap.Error(err))
		}
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, *event); err != nil {
			r.logger.Warn("failed to publish task event",
				zap.String("event", event.Name),
				zap.String("task_id", event.TaskID),
				zap.Error(err))
		}
	}
	return nil
}

// List returns the events of a task, oldest first.
func (r *EventRecorder) List(ctx context.Context, taskID string, limit int) ([]domain.TaskEvent, error) {
	if r == nil || r.events == nil {
		return nil, nil
	}
	return r.events.ListByTask(ctx, taskID, limit)
}
