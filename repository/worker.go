package repository

import (
	"context"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

type WorkerFilter struct {
	Role       string
	Department string
	Status     string
	Limit      int
	Offset     int
}

type WorkerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Worker, error)
	GetByUsername(ctx context.Context, username string) (*domain.Worker, error)
	List(ctx context.Context, filter WorkerFilter) ([]domain.Worker, error)
	Upsert(ctx context.Context, worker *domain.Worker) error
}
