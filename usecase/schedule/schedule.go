package schedule

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
)

// MaxRangeDays bounds ListRange queries.
const MaxRangeDays = 62

type UseCase struct {
	schedules repository.ScheduleRepository
	workers   repository.WorkerRepository
	buffer    usecase.OperationBuffer
	location  *time.Location
	clock     usecase.Clock
	logger    *zap.Logger
}

func New(
	schedules repository.ScheduleRepository,
	workers repository.WorkerRepository,
	buffer usecase.OperationBuffer,
	location *time.Location,
	clock usecase.Clock,
	logger *zap.Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		schedules: schedules,
		workers:   workers,
		buffer:    buffer,
		location:  location,
		clock:     clock,
		logger:    logger,
	}
}

// Get returns the stored schedule for a worker and date.
func (uc *UseCase) Get(ctx context.Context, actor usecase.Actor, workerID, date string) (*domain.ShiftSchedule, error) {
	if err := canView(actor, workerID); err != nil {
		return nil, err
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, domain.Invalidf("invalid date %q", date)
	}
	return uc.schedules.Get(ctx, workerID, date)
}

// ListRange returns the schedules between from and to inclusive. Empty
// bounds default to the current week.
func (uc *UseCase) ListRange(ctx context.Context, actor usecase.Actor, workerID, from, to string) ([]domain.ShiftSchedule, error) {
	if err := canView(actor, workerID); err != nil {
		return nil, err
	}

	today := uc.today()
	start, err := parseDateOr(from, today)
	if err != nil {
		return nil, err
	}
	end, err := parseDateOr(to, start.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, domain.Invalidf("range end %s is before start %s", end.Format(domain.DateLayout), start.Format(domain.DateLayout))
	}
	if end.Sub(start) > MaxRangeDays*24*time.Hour {
		return nil, domain.Invalidf("range cannot exceed %d days", MaxRangeDays)
	}

	return uc.schedules.ListRange(ctx, workerID, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
}

// Upsert validates and stores a schedule, replacing any existing one for the
// same worker and date.
func (uc *UseCase) Upsert(ctx context.Context, actor usecase.Actor, schedule *domain.ShiftSchedule) (*domain.ShiftSchedule, error) {
	if err := actor.Require(domain.RoleSupervisor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	schedule.Normalize()

	if _, err := uc.workers.GetByID(ctx, schedule.WorkerID); err != nil {
		return nil, err
	}
	if schedule.CreatedBy == "" {
		schedule.CreatedBy = actor.ID
	}

	if err := uc.schedules.Upsert(ctx, schedule); err != nil {
		if !uc.tryBuffer(ctx, usecase.OperationUpdate, schedule, err) {
			return nil, err
		}
	}
	return schedule, nil
}

func (uc *UseCase) Delete(ctx context.Context, actor usecase.Actor, workerID, date string) error {
	if err := actor.Require(domain.RoleSupervisor, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.Invalidf("invalid date %q", date)
	}
	if err := uc.schedules.Delete(ctx, workerID, date); err != nil {
		schedule := &domain.ShiftSchedule{WorkerID: workerID, Date: date}
		if !uc.tryBuffer(ctx, usecase.OperationDelete, schedule, err) {
			return err
		}
	}
	return nil
}

// Availability evaluates the worker's state at the current server time in
// the property's time zone.
func (uc *UseCase) Availability(ctx context.Context, actor usecase.Actor, workerID string) (*domain.Availability, error) {
	if err := canView(actor, workerID); err != nil {
		return nil, err
	}
	return uc.AvailabilityAt(ctx, workerID, uc.clock.Now())
}

// AvailabilityAt evaluates the worker's state at instant at.
func (uc *UseCase) AvailabilityAt(ctx context.Context, workerID string, at time.Time) (*domain.Availability, error) {
	worker, err := uc.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}

	now := at.In(uc.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.location)

	input := domain.AvailabilityInput{
		DefaultShift: worker.DefaultShift,
		Now:          now,
	}
	for _, slot := range []struct {
		offset int
		dest   **domain.ShiftSchedule
	}{
		{-1, &input.PreviousSchedule},
		{0, &input.Schedule},
		{1, &input.NextSchedule},
	} {
		date := today.AddDate(0, 0, slot.offset).Format(domain.DateLayout)
		schedule, err := uc.schedules.Get(ctx, workerID, date)
		if err != nil {
			if errors.Is(err, domain.ErrScheduleNotFound) {
				continue
			}
			return nil, err
		}
		*slot.dest = schedule
	}

	availability, err := domain.EvaluateAvailability(input)
	if err != nil {
		return nil, err
	}
	return &availability, nil
}

func (uc *UseCase) tryBuffer(ctx context.Context, operation string, schedule *domain.ShiftSchedule, cause error) bool {
	if uc.buffer == nil || !usecase.Bufferable(cause) {
		return false
	}
	if err := uc.buffer.BufferSchedule(ctx, operation, schedule); err != nil {
		uc.logger.Error("failed to buffer schedule operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("schedule operation buffered",
		zap.String("operation", operation),
		zap.String("worker_id", schedule.WorkerID),
		zap.String("date", schedule.Date),
		zap.Error(cause))
	return true
}

func (uc *UseCase) today() time.Time {
	now := uc.clock.Now().In(uc.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func canView(actor usecase.Actor, workerID string) error {
	if actor.ID == "" {
		return domain.ErrUnauthorized
	}
	if actor.IsStaff() || actor.ID == workerID {
		return nil
	}
	return domain.ErrForbidden
}

func parseDateOr(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, domain.Invalidf("invalid date %q", value)
	}
	return parsed, nil
}
