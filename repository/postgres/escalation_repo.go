package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
)

const escalationColumns = `id, task_id, worker_id, level, active_minutes, expected_minutes,
	status, COALESCE(acknowledged_by, ''), acknowledged_at, created_at`

type escalationRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRepository returns a Postgres-backed EscalationRepository.
func NewEscalationRepository(pool *pgxpool.Pool) repository.EscalationRepository {
	return &escalationRepository{pool: pool}
}

// Create inserts the escalation. A task reaches each level at most once, so
// a duplicate (task, level) pair is ignored and reported as a conflict.
func (r *escalationRepository) Create(ctx context.Context, escalation *domain.Escalation) error {
	if escalation == nil || escalation.TaskID == "" {
		return domain.ErrInvalidPayload
	}
	if escalation.ID == "" {
		escalation.ID = uuid.NewString()
	}
	if escalation.Status == "" {
		escalation.Status = domain.EscalationPending
	}

	const query = `
	INSERT INTO escalations (id, task_id, worker_id, level, active_minutes, expected_minutes, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (task_id, level) DO NOTHING
	RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		escalation.ID,
		escalation.TaskID,
		escalation.WorkerID,
		int(escalation.Level),
		escalation.ActiveMinutes,
		escalation.ExpectedMinutes,
		string(escalation.Status),
	).Scan(&escalation.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewError(domain.ErrCodeConflict, "escalation already recorded")
	}
	return err
}

func (r *escalationRepository) GetByID(ctx context.Context, id string) (*domain.Escalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM escalations WHERE id = $1`
	return scanEscalation(r.pool.QueryRow(ctx, query, id))
}

func (r *escalationRepository) List(ctx context.Context, filter repository.EscalationFilter) ([]domain.Escalation, error) {
	query := `SELECT ` + escalationColumns + ` FROM escalations
	WHERE ($1 = '' OR task_id = $1)
	  AND ($2 = '' OR worker_id = $2)
	  AND ($3 = '' OR status = $3)
	  AND level >= $4
	ORDER BY created_at DESC
	LIMIT $5 OFFSET $6`

	rows, err := r.pool.Query(ctx, query,
		filter.TaskID,
		filter.WorkerID,
		filter.Status,
		filter.MinLevel,
		clampLimit(filter.Limit),
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var escalations []domain.Escalation
	for rows.Next() {
		escalation, err := scanEscalation(rows)
		if err != nil {
			return nil, err
		}
		escalations = append(escalations, *escalation)
	}
	return escalations, rows.Err()
}

func (r *escalationRepository) Acknowledge(ctx context.Context, id, by string) (*domain.Escalation, error) {
	query := `
	UPDATE escalations
	SET status = $2, acknowledged_by = $3, acknowledged_at = NOW()
	WHERE id = $1 AND status = $4
	RETURNING ` + escalationColumns

	escalation, err := scanEscalation(r.pool.QueryRow(ctx, query,
		id,
		string(domain.EscalationAcknowledged),
		by,
		string(domain.EscalationPending),
	))
	if errors.Is(err, domain.ErrEscalationNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.NewError(domain.ErrCodeConflict, "escalation already acknowledged")
	}
	return escalation, err
}

func scanEscalation(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Escalation, error) {
	var (
		escalation domain.Escalation
		level      int
		status     string
	)

	if err := row.Scan(
		&escalation.ID,
		&escalation.TaskID,
		&escalation.WorkerID,
		&level,
		&escalation.ActiveMinutes,
		&escalation.ExpectedMinutes,
		&status,
		&escalation.AcknowledgedBy,
		&escalation.AcknowledgedAt,
		&escalation.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEscalationNotFound
		}
		return nil, err
	}

	escalation.Level = domain.EscalationLevel(level)
	escalation.Status = domain.EscalationStatus(status)
	return &escalation, nil
}
