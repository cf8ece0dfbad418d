package task

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
)

// CreateInput describes a new task.
type CreateInput struct {
	TaskType         string
	Department       string
	Title            string
	Description      string
	Priority         domain.TaskPriority
	RoomNumber       string
	AssignedTo       string
	ExpectedDuration int
	ClientTimestamp  string
}

type UseCase struct {
	tasks   repository.TaskRepository
	workers repository.WorkerRepository
	events  *usecase.EventRecorder
	buffer  usecase.OperationBuffer
	clock   usecase.Clock
	logger  *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	workers repository.WorkerRepository,
	events *usecase.EventRecorder,
	buffer usecase.OperationBuffer,
	clock usecase.Clock,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:   tasks,
		workers: workers,
		events:  events,
		buffer:  buffer,
		clock:   clock,
		logger:  logger,
	}
}

// ListTasks returns tasks matching filter. Workers only ever see their own.
func (uc *UseCase) ListTasks(ctx context.Context, actor usecase.Actor, filter repository.TaskFilter) ([]domain.Task, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	for _, status := range filter.Statuses {
		if !status.IsValid() {
			return nil, domain.Invalidf("unknown status %q", status)
		}
	}
	if !actor.IsStaff() {
		filter.AssignedTo = actor.ID
	}
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, actor usecase.Actor, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canRead(actor, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, actor usecase.Actor, input CreateInput) (*domain.Task, error) {
	if err := actor.Require(domain.RoleSupervisor, domain.RoleFrontOffice, domain.RoleAdmin); err != nil {
		return nil, err
	}
	at, err := uc.stamp(input.ClientTimestamp)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:               uuid.NewString(),
		TaskType:         strings.TrimSpace(input.TaskType),
		Department:       input.Department,
		Title:            strings.TrimSpace(input.Title),
		Description:      input.Description,
		Priority:         input.Priority,
		RoomNumber:       input.RoomNumber,
		Status:           domain.TaskPending,
		CreatedBy:        actor.ID,
		ExpectedDuration: input.ExpectedDuration,
		PauseHistory:     []domain.PauseRecord{},
		Version:          1,
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.ExpectedDuration == 0 {
		task.ExpectedDuration = domain.DefaultExpectedMinutes
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if input.AssignedTo != "" {
		if err := uc.ensureAssignable(ctx, input.AssignedTo); err != nil {
			return nil, err
		}
		if err := task.Assign(input.AssignedTo, actor.ID, at); err != nil {
			return nil, err
		}
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if !uc.tryBuffer(ctx, usecase.OperationCreate, task, err) {
			return nil, err
		}
		created = task
	}

	uc.record(ctx, created, domain.EventTaskCreated, actor, at, map[string]interface{}{
		"title":       created.Title,
		"priority":    created.Priority,
		"assigned_to": created.AssignedTo,
	})
	return created, nil
}

// AssignTask sets or changes the assignee of a pending task.
func (uc *UseCase) AssignTask(ctx context.Context, req ActionRequest, workerID string) (*domain.Task, error) {
	if err := req.Actor.Require(domain.RoleSupervisor, domain.RoleFrontOffice, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := uc.ensureAssignable(ctx, workerID); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, req, domain.EventTaskAssigned, nil, func(task *domain.Task, at domain.DualTimestamp) (interface{}, error) {
		previous := task.AssignedTo
		if err := task.Assign(workerID, req.Actor.ID, at); err != nil {
			return nil, err
		}
		return map[string]string{"assigned_to": workerID, "previous": previous}, nil
	})
}

func (uc *UseCase) StartTask(ctx context.Context, req ActionRequest) (*domain.Task, error) {
	return uc.mutate(ctx, req, domain.EventTaskStarted, assigneeOnly, func(task *domain.Task, at domain.DualTimestamp) (interface{}, error) {
		return nil, task.Start(at)
	})
}

func (uc *UseCase) PauseTask(ctx context.Context, req ActionRequest) (*domain.Task, error) {
	return uc.mutate(ctx, req, domain.EventTaskPaused, assigneeOnly, func(task *domain.Task, at domain.DualTimestamp) (interface{}, error) {
		if err := task.Pause(at, req.Reason); err != nil {
			return nil, err
		}
		return map[string]string{"reason": req.Reason}, nil
	})
}

func (uc *UseCase) ResumeTask(ctx context.Context, req ActionRequest) (*domain.Task, error) {
	return uc.mutate(ctx, req, domain.EventTaskResumed, assigneeOnly, func(task *domain.Task, at domain.DualTimestamp) (interface{}, error) {
		if err := task.Resume(at); err != nil {
			return nil, err
		}
		paused, err := domain.PausedMinutes(task.PauseHistory, at)
		if err != nil {
			return nil, err
		}
		return map[string]int{"paused_minutes": paused}, nil
	})
}

func (uc *UseCase) CompleteTask(ctx context.Context, req ActionRequest) (*domain.Task, error) {
	return uc.mutate(ctx, req, domain.EventTaskCompleted, assigneeOnly, func(task *domain.Task, at domain.DualTimestamp) (interface{}, error) {
		if err := task.Complete(at, req.PhotoURLs, req.Remark); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"actual_duration_minutes": task.ActualDuration,
			"expected_minutes":        task.ExpectedDuration,
			"photo_count":             len(task.PhotoURLs),
		}, nil
	})
}

func (uc *UseCase) VerifyTask(ctx context.Context, req ActionRequest) (*domain.Task, error) {
	return uc.mutate(ctx, req, domain.EventTaskVerified, supervisorOnly, func(task *domain.Task, at domain.DualTimestamp) (interface{}, error) {
		if err := task.Verify(req.Actor.ID, at, req.Remark); err != nil {
			return nil, err
		}
		return map[string]string{"remark": req.Remark}, nil
	})
}

func (uc *UseCase) RejectTask(ctx context.Context, req ActionRequest) (*domain.Task, error) {
	return uc.mutate(ctx, req, domain.EventTaskRejected, supervisorOnly, func(task *domain.Task, at domain.DualTimestamp) (interface{}, error) {
		if err := task.Reject(req.Actor.ID, at, req.Reason); err != nil {
			return nil, err
		}
		return map[string]string{"reason": req.Reason}, nil
	})
}

// RecreateTask opens a new pending task from a rejected one and returns it.
func (uc *UseCase) RecreateTask(ctx context.Context, req ActionRequest) (*domain.Task, error) {
	if err := req.Actor.Require(domain.RoleSupervisor, domain.RoleFrontOffice, domain.RoleAdmin); err != nil {
		return nil, err
	}
	at, err := uc.stamp(req.ClientTimestamp)
	if err != nil {
		return nil, err
	}
	rejected, err := uc.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	fresh, err := rejected.Recreate(req.Actor.ID)
	if err != nil {
		return nil, err
	}
	fresh.ID = uuid.NewString()
	fresh.Version = 1
	if fresh.AssignedTo != "" {
		fresh.AssignedAt = &at
	}

	created, err := uc.tasks.Create(ctx, fresh)
	if err != nil {
		if !uc.tryBuffer(ctx, usecase.OperationCreate, fresh, err) {
			return nil, err
		}
		created = fresh
	}

	uc.record(ctx, created, domain.EventTaskRecreated, req.Actor, at, map[string]string{
		"recreated_from":   rejected.ID,
		"rejection_reason": rejected.RejectionReason,
	})
	return created, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, actor usecase.Actor, id string) error {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		if !uc.tryBuffer(ctx, usecase.OperationDelete, &domain.Task{ID: id}, err) {
			return err
		}
	}
	uc.record(ctx, &domain.Task{ID: id}, domain.EventTaskDeleted, actor, domain.NewDualTimestamp("", uc.clock.Now()), nil)
	return nil
}

// ListEvents returns the audit trail of a task.
func (uc *UseCase) ListEvents(ctx context.Context, actor usecase.Actor, id string, limit int) ([]domain.TaskEvent, error) {
	if _, err := uc.GetTask(ctx, actor, id); err != nil {
		return nil, err
	}
	return uc.events.List(ctx, id, limit)
}

type applyFunc func(task *domain.Task, at domain.DualTimestamp) (interface{}, error)

// mutate loads the task, checks access and the caller's version, applies the
// transition and persists it with an audit event.
func (uc *UseCase) mutate(ctx context.Context, req ActionRequest, event string, authorize func(usecase.Actor, *domain.Task) error, apply applyFunc) (*domain.Task, error) {
	if req.TaskID == "" {
		return nil, domain.Invalidf("task id is required")
	}
	at, err := uc.stamp(req.ClientTimestamp)
	if err != nil {
		return nil, err
	}

	task, err := uc.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	if authorize != nil {
		if err := authorize(req.Actor, task); err != nil {
			return nil, err
		}
	}
	if req.ExpectedVersion > 0 && req.ExpectedVersion != task.Version {
		return nil, domain.ErrVersionConflict
	}

	payload, err := apply(task, at)
	if err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		if !uc.tryBuffer(ctx, usecase.OperationUpdate, task, err) {
			return nil, err
		}
	}

	uc.record(ctx, task, event, req.Actor, at, payload)
	return task, nil
}

func (uc *UseCase) stamp(client string) (domain.DualTimestamp, error) {
	if client != "" {
		if _, err := domain.ParseTimestamp(client); err != nil {
			return domain.DualTimestamp{}, err
		}
	}
	return domain.NewDualTimestamp(client, uc.clock.Now()), nil
}

func (uc *UseCase) ensureAssignable(ctx context.Context, workerID string) error {
	worker, err := uc.workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkerNotFound) {
			return domain.Invalidf("assignee %q does not exist", workerID)
		}
		return err
	}
	if !worker.IsActive() {
		return domain.Invalidf("assignee %q is inactive", workerID)
	}
	return nil
}

func (uc *UseCase) record(ctx context.Context, task *domain.Task, name string, actor usecase.Actor, at domain.DualTimestamp, payload interface{}) {
	event := &domain.TaskEvent{
		TaskID:    task.ID,
		Name:      name,
		ActorID:   actor.ID,
		Version:   task.Version,
		Timestamp: at,
		Metadata:  map[string]string{"role": string(actor.Role), "status": string(task.Status)},
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			event.Payload = raw
		}
	}
	if err := uc.events.Record(ctx, event); err != nil {
		uc.logger.Error("failed to record task event",
			zap.String("task_id", task.ID),
			zap.String("event", name),
			zap.Error(err))
	}
}

func (uc *UseCase) tryBuffer(ctx context.Context, operation string, task *domain.Task, cause error) bool {
	if uc.buffer == nil || !usecase.Bufferable(cause) {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered",
		zap.String("operation", operation),
		zap.String("task_id", task.ID),
		zap.Error(cause))
	return true
}

func canRead(actor usecase.Actor, task *domain.Task) error {
	if actor.ID == "" {
		return domain.ErrUnauthorized
	}
	if actor.IsStaff() || task.AssignedTo == actor.ID {
		return nil
	}
	return domain.ErrForbidden
}

func assigneeOnly(actor usecase.Actor, task *domain.Task) error {
	if actor.ID == "" {
		return domain.ErrUnauthorized
	}
	if task.AssignedTo == actor.ID || actor.Role == domain.RoleAdmin {
		return nil
	}
	return domain.NewError(domain.ErrCodeForbidden, "only the assigned worker can do this")
}

func supervisorOnly(actor usecase.Actor, _ *domain.Task) error {
	return actor.Require(domain.RoleSupervisor, domain.RoleAdmin)
}
