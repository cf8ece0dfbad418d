package escalation

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
)

const scanPageSize = 100

// ScanResult summarises one escalation pass.
type ScanResult struct {
	Checked int `json:"checked"`
	Raised  int `json:"raised"`
}

type UseCase struct {
	tasks       repository.TaskRepository
	escalations repository.EscalationRepository
	events      *usecase.EventRecorder
	clock       usecase.Clock
	logger      *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	escalations repository.EscalationRepository,
	events *usecase.EventRecorder,
	clock usecase.Clock,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:       tasks,
		escalations: escalations,
		events:      events,
		clock:       clock,
		logger:      logger,
	}
}

// Scan classifies every in-progress task against the current time and
// raises those whose level went up. A failing task is logged and skipped.
// Pages follow a cursor so tasks leaving IN_PROGRESS mid-scan do not shift
// later ones out of view.
func (uc *UseCase) Scan(ctx context.Context) (ScanResult, error) {
	var result ScanResult
	now := domain.NewDualTimestamp("", uc.clock.Now())

	var cursor *repository.TaskCursor
	for {
		page, err := uc.tasks.List(ctx, repository.TaskFilter{
			Statuses: []domain.TaskStatus{domain.TaskInProgress},
			Limit:    scanPageSize,
			After:    cursor,
		})
		if err != nil {
			return result, err
		}

		for i := range page {
			result.Checked++
			raised, err := uc.check(ctx, &page[i], now)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				uc.logger.Warn("escalation check failed", zap.String("task_id", page[i].ID), zap.Error(err))
				continue
			}
			if raised {
				result.Raised++
			}
		}

		if len(page) < scanPageSize {
			return result, nil
		}
		cursor = repository.CursorOf(page[len(page)-1])
	}
}

func (uc *UseCase) check(ctx context.Context, task *domain.Task, now domain.DualTimestamp) (bool, error) {
	active, err := task.ActiveMinutesAt(now)
	if err != nil {
		return false, err
	}
	level := domain.ClassifyEscalation(active, task.ExpectedDuration)
	if level <= task.EscalationLevel {
		return false, nil
	}

	raised, err := uc.tasks.RaiseEscalation(ctx, task.ID, level)
	if err != nil || !raised {
		return false, err
	}

	escalation := &domain.Escalation{
		ID:              uuid.NewString(),
		TaskID:          task.ID,
		WorkerID:        task.AssignedTo,
		Level:           level,
		ActiveMinutes:   active,
		ExpectedMinutes: task.ExpectedDuration,
		Status:          domain.EscalationPending,
	}
	if err := uc.escalations.Create(ctx, escalation); err != nil && !domain.IsDomainError(err, domain.ErrCodeConflict) {
		return false, err
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"level":            int(level),
		"label":            level.String(),
		"previous_level":   int(task.EscalationLevel),
		"active_minutes":   active,
		"expected_minutes": task.ExpectedDuration,
	})
	event := &domain.TaskEvent{
		TaskID:    task.ID,
		Name:      domain.EventTaskEscalated,
		Version:   task.Version,
		Timestamp: now,
		Payload:   payload,
		Metadata:  map[string]string{"worker_id": task.AssignedTo, "level": level.String()},
	}
	if err := uc.events.Record(ctx, event); err != nil {
		uc.logger.Error("failed to record escalation event", zap.String("task_id", task.ID), zap.Error(err))
	}

	uc.logger.Info("task escalated",
		zap.String("task_id", task.ID),
		zap.String("worker_id", task.AssignedTo),
		zap.String("level", level.String()),
		zap.Int("active_minutes", active),
		zap.Int("expected_minutes", task.ExpectedDuration))
	return true, nil
}

// List returns escalations to supervisors and admins.
func (uc *UseCase) List(ctx context.Context, actor usecase.Actor, filter repository.EscalationFilter) ([]domain.Escalation, error) {
	if err := actor.Require(domain.RoleSupervisor, domain.RoleFrontOffice, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if filter.Status != "" && filter.Status != string(domain.EscalationPending) && filter.Status != string(domain.EscalationAcknowledged) {
		return nil, domain.Invalidf("unknown escalation status %q", filter.Status)
	}
	return uc.escalations.List(ctx, filter)
}

func (uc *UseCase) Acknowledge(ctx context.Context, actor usecase.Actor, id string) (*domain.Escalation, error) {
	if err := actor.Require(domain.RoleSupervisor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, domain.Invalidf("escalation id is required")
	}
	escalation, err := uc.escalations.Acknowledge(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("escalation acknowledged",
		zap.String("escalation_id", escalation.ID),
		zap.String("task_id", escalation.TaskID),
		zap.String("by", actor.ID))
	return escalation, nil
}
