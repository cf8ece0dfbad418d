package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
)

const workerColumns = `id, name, username, password_hash, role, department, phone, status,
	shift_start, shift_end, break_start, break_end, metadata, created_at, updated_at`

type workerRepository struct {
	pool *pgxpool.Pool
}

// NewWorkerRepository instantiates a Postgres-backed worker repository.
func NewWorkerRepository(pool *pgxpool.Pool) repository.WorkerRepository {
	return &workerRepository{pool: pool}
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE id = $1`
	return scanWorker(r.pool.QueryRow(ctx, query, id))
}

func (r *workerRepository) GetByUsername(ctx context.Context, username string) (*domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers WHERE lower(username) = lower($1)`
	return scanWorker(r.pool.QueryRow(ctx, query, username))
}

func (r *workerRepository) List(ctx context.Context, filter repository.WorkerFilter) ([]domain.Worker, error) {
	query := `SELECT ` + workerColumns + ` FROM workers
	WHERE ($1 = '' OR role = $1)
	  AND ($2 = '' OR department = $2)
	  AND ($3 = '' OR status = $3)
	ORDER BY name ASC
	LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query, filter.Role, filter.Department, filter.Status, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []domain.Worker
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, *worker)
	}
	return workers, rows.Err()
}

func (r *workerRepository) Upsert(ctx context.Context, worker *domain.Worker) error {
	if worker == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO workers (id, name, username, password_hash, role, department, phone, status,
		shift_start, shift_end, break_start, break_end, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, COALESCE($14, NOW()), NOW())
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		username = EXCLUDED.username,
		password_hash = CASE WHEN EXCLUDED.password_hash = '' THEN workers.password_hash ELSE EXCLUDED.password_hash END,
		role = EXCLUDED.role,
		department = EXCLUDED.department,
		phone = EXCLUDED.phone,
		status = EXCLUDED.status,
		shift_start = EXCLUDED.shift_start,
		shift_end = EXCLUDED.shift_end,
		break_start = EXCLUDED.break_start,
		break_end = EXCLUDED.break_end,
		metadata = EXCLUDED.metadata,
		updated_at = NOW()
	RETURNING created_at, updated_at;
	`

	shift := worker.DefaultShift
	if shift.IsEmpty() {
		shift = &domain.ShiftWindow{}
	}

	return r.pool.QueryRow(ctx, query,
		worker.ID,
		worker.Name,
		worker.Username,
		worker.PasswordHash,
		string(worker.Role),
		worker.Department,
		worker.Phone,
		worker.Status,
		nullString(shift.Start),
		nullString(shift.End),
		nullString(shift.BreakStart),
		nullString(shift.BreakEnd),
		marshalMap(worker.Metadata),
		nullTime(worker.CreatedAt),
	).Scan(&worker.CreatedAt, &worker.UpdatedAt)
}

func scanWorker(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Worker, error) {
	var worker domain.Worker
	var (
		role       string
		shiftStart *string
		shiftEnd   *string
		breakStart *string
		breakEnd   *string
		metadata   []byte
	)

	if err := row.Scan(
		&worker.ID,
		&worker.Name,
		&worker.Username,
		&worker.PasswordHash,
		&role,
		&worker.Department,
		&worker.Phone,
		&worker.Status,
		&shiftStart,
		&shiftEnd,
		&breakStart,
		&breakEnd,
		&metadata,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkerNotFound
		}
		return nil, err
	}

	worker.Role = domain.Role(role)
	shift := &domain.ShiftWindow{
		Start:      derefString(shiftStart),
		End:        derefString(shiftEnd),
		BreakStart: derefString(breakStart),
		BreakEnd:   derefString(breakEnd),
	}
	if !shift.IsEmpty() {
		worker.DefaultShift = shift
	}
	_ = unmarshalJSON(metadata, &worker.Metadata)

	return &worker, nil
}
