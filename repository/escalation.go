package repository

import (
	"context"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

type EscalationFilter struct {
	TaskID   string
	WorkerID string
	Status   string
	MinLevel int
	Limit    int
	Offset   int
}

type EscalationRepository interface {
	Create(ctx context.Context, escalation *domain.Escalation) error
	GetByID(ctx context.Context, id string) (*domain.Escalation, error)
	List(ctx context.Context, filter EscalationFilter) ([]domain.Escalation, error)
	Acknowledge(ctx context.Context, id, by string) (*domain.Escalation, error)
}
