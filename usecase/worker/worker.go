package worker

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
	"github.com/Likheet/hermes-monitoring-sub002/usecase/auth"
)

// ProfileUpdate holds the fields a worker may change on their own record.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Phone    *string
	Metadata map[string]string
}

// Input is an admin write of a worker record. Password is optional on
// update and hashed before storage.
type Input struct {
	Worker   domain.Worker
	Password string
}

type UseCase struct {
	workers repository.WorkerRepository
	buffer  usecase.OperationBuffer
	logger  *zap.Logger
}

func New(workers repository.WorkerRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		workers: workers,
		buffer:  buffer,
		logger:  logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, actor usecase.Actor) (*domain.Worker, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.workers.GetByID(ctx, actor.ID)
}

func (uc *UseCase) UpdateProfile(ctx context.Context, actor usecase.Actor, update ProfileUpdate) (*domain.Worker, error) {
	worker, err := uc.GetProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.Invalidf("name cannot be empty")
		}
		worker.Name = name
	}
	if update.Phone != nil {
		worker.Phone = strings.TrimSpace(*update.Phone)
	}
	if len(update.Metadata) > 0 {
		if worker.Metadata == nil {
			worker.Metadata = make(map[string]string, len(update.Metadata))
		}
		for k, v := range update.Metadata {
			worker.Metadata[k] = v
		}
	}

	return uc.save(ctx, worker)
}

// Get returns any worker to staff, and only themselves to workers.
func (uc *UseCase) Get(ctx context.Context, actor usecase.Actor, id string) (*domain.Worker, error) {
	if !actor.IsStaff() && actor.ID != id {
		return nil, domain.ErrForbidden
	}
	return uc.workers.GetByID(ctx, id)
}

func (uc *UseCase) List(ctx context.Context, actor usecase.Actor, filter repository.WorkerFilter) ([]domain.Worker, error) {
	if err := actor.Require(domain.RoleSupervisor, domain.RoleFrontOffice, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return uc.workers.List(ctx, filter)
}

// Upsert creates or replaces a worker. Admin only.
func (uc *UseCase) Upsert(ctx context.Context, actor usecase.Actor, input Input) (*domain.Worker, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}

	worker := input.Worker
	if worker.ID == "" {
		if input.Password == "" {
			return nil, domain.Invalidf("password is required for a new worker")
		}
		worker.ID = uuid.NewString()
	}
	worker.Username = strings.ToLower(strings.TrimSpace(worker.Username))
	if worker.Status == "" {
		worker.Status = domain.WorkerStatusActive
	}
	if worker.Status != domain.WorkerStatusActive && worker.Status != domain.WorkerStatusInactive {
		return nil, domain.Invalidf("unknown status %q", worker.Status)
	}
	if err := worker.Validate(); err != nil {
		return nil, err
	}

	// An empty hash keeps the stored one.
	worker.PasswordHash = ""
	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		worker.PasswordHash = hash
	}

	return uc.save(ctx, &worker)
}

// SetDefaultShift replaces the worker's recurring shift. A nil shift clears it.
func (uc *UseCase) SetDefaultShift(ctx context.Context, actor usecase.Actor, workerID string, shift *domain.ShiftWindow) (*domain.Worker, error) {
	if err := actor.Require(domain.RoleSupervisor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !shift.IsEmpty() {
		if err := shift.Validate(); err != nil {
			return nil, err
		}
	} else {
		shift = nil
	}

	worker, err := uc.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	worker.DefaultShift = shift
	return uc.save(ctx, worker)
}

func (uc *UseCase) save(ctx context.Context, worker *domain.Worker) (*domain.Worker, error) {
	if err := uc.workers.Upsert(ctx, worker); err != nil {
		if uc.buffer == nil || !usecase.Bufferable(err) {
			return nil, err
		}
		if bufErr := uc.buffer.BufferWorker(ctx, usecase.OperationUpdate, worker); bufErr != nil {
			uc.logger.Error("failed to buffer worker update", zap.String("worker_id", worker.ID), zap.Error(bufErr))
			return nil, err
		}
		uc.logger.Warn("worker update buffered due to repository error", zap.String("worker_id", worker.ID), zap.Error(err))
	}
	return worker, nil
}
