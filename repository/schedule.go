package repository

import (
	"context"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

type ScheduleRepository interface {
	Get(ctx context.Context, workerID, date string) (*domain.ShiftSchedule, error)
	ListRange(ctx context.Context, workerID, from, to string) ([]domain.ShiftSchedule, error)
	Upsert(ctx context.Context, schedule *domain.ShiftSchedule) error
	Delete(ctx context.Context, workerID, date string) error
}
