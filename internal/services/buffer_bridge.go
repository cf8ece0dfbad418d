package services

import (
	"context"
	"encoding/json"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/internal/infrastructure/buffer"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
)

// bufferedWorker carries the password hash, which domain.Worker hides from JSON.
type bufferedWorker struct {
	*domain.Worker
	PasswordHash string `json:"password_hash,omitempty"`
}

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferWorker(ctx context.Context, operation string, worker *domain.Worker) error {
	if b.processor == nil || worker == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(bufferedWorker{Worker: worker, PasswordHash: worker.PasswordHash})
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		ActorID:   worker.ID,
		Entity:    buffer.EntityWorker,
		Operation: operation,
		Data:      payload,
		Priority:  buffer.PriorityWorker,
	})
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		ActorID:   task.AssignedTo,
		Entity:    buffer.EntityTask,
		Operation: operation,
		Data:      payload,
		Priority:  buffer.PriorityTask,
	})
}

func (b *BufferBridge) BufferSchedule(ctx context.Context, operation string, schedule *domain.ShiftSchedule) error {
	if b.processor == nil || schedule == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(schedule)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		ActorID:   schedule.WorkerID,
		Entity:    buffer.EntitySchedule,
		Operation: operation,
		Data:      payload,
		Priority:  buffer.PrioritySchedule,
	})
}

func (b *BufferBridge) BufferEvent(ctx context.Context, event *domain.TaskEvent) error {
	if b.processor == nil || event == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		ActorID:   event.ActorID,
		Entity:    buffer.EntityTaskEvent,
		Operation: buffer.OperationCreate,
		Data:      payload,
		Priority:  buffer.PriorityEvent,
	})
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
