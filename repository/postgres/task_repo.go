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

const taskColumns = `id, task_type, department, title, description, priority, room_number, status,
	COALESCE(assigned_to, ''), assigned_by, created_by, expected_duration_minutes,
	assigned_at, started_at, completed_at, verified_at, verified_by, pause_history,
	actual_duration_minutes, photo_urls, worker_remark, supervisor_remark, rejection_reason,
	COALESCE(recreated_from, ''), escalation_level, version, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

const listTasksQuery = `SELECT ` + taskColumns + ` FROM tasks
	WHERE ($1 = '' OR assigned_to = $1)
	  AND ($2 = '' OR created_by = $2)
	  AND ($3 = '' OR department = $3)
	  AND ($4::text[] IS NULL OR status = ANY($4))
	  AND ($7::timestamptz IS NULL OR (created_at, id) < ($7, $8::text))
	ORDER BY created_at DESC, id DESC
	LIMIT $5 OFFSET $6`

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var statuses []string
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	var (
		afterCreated interface{}
		afterID      string
	)
	if filter.After != nil {
		afterCreated, afterID, offset = filter.After.CreatedAt, filter.After.ID, 0
	}

	rows, err := r.pool.Query(ctx, listTasksQuery,
		filter.AssignedTo,
		filter.CreatedBy,
		filter.Department,
		statuses,
		clampLimit(filter.Limit),
		offset,
		afterCreated,
		afterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Version <= 0 {
		task.Version = 1
	}

	const query = `
	INSERT INTO tasks (id, task_type, department, title, description, priority, room_number, status,
		assigned_to, assigned_by, created_by, expected_duration_minutes,
		assigned_at, started_at, completed_at, verified_at, verified_by, pause_history,
		actual_duration_minutes, photo_urls, worker_remark, supervisor_remark, rejection_reason,
		recreated_from, escalation_level, version)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		$19, $20, $21, $22, $23, $24, $25, $26)
	RETURNING created_at, updated_at
	`

	cols, err := taskJSONColumns(task)
	if err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.TaskType,
		task.Department,
		task.Title,
		task.Description,
		string(task.Priority),
		task.RoomNumber,
		string(task.Status),
		nullString(task.AssignedTo),
		task.AssignedBy,
		task.CreatedBy,
		task.ExpectedDuration,
		cols.assignedAt,
		cols.startedAt,
		cols.completedAt,
		cols.verifiedAt,
		task.VerifiedBy,
		cols.pauseHistory,
		task.ActualDuration,
		cols.photoURLs,
		task.WorkerRemark,
		task.SupervisorRemark,
		task.RejectionReason,
		nullString(task.RecreatedFrom),
		int(task.EscalationLevel),
		task.Version,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

// updateTaskQuery never lowers escalation_level. RaiseEscalation changes it
// without a version bump, so the caller's copy may hold an older level.
const updateTaskQuery = `
	UPDATE tasks
	SET task_type = $3,
		department = $4,
		title = $5,
		description = $6,
		priority = $7,
		room_number = $8,
		status = $9,
		assigned_to = $10,
		assigned_by = $11,
		expected_duration_minutes = $12,
		assigned_at = $13,
		started_at = $14,
		completed_at = $15,
		verified_at = $16,
		verified_by = $17,
		pause_history = $18,
		actual_duration_minutes = $19,
		photo_urls = $20,
		worker_remark = $21,
		supervisor_remark = $22,
		rejection_reason = $23,
		escalation_level = GREATEST(escalation_level, $24),
		version = version + 1,
		updated_at = NOW()
	WHERE id = $1 AND version = $2
	RETURNING version, escalation_level, updated_at
	`

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	cols, err := taskJSONColumns(task)
	if err != nil {
		return err
	}

	var escalation int
	if err := r.pool.QueryRow(ctx, updateTaskQuery,
		task.ID,
		task.Version,
		task.TaskType,
		task.Department,
		task.Title,
		task.Description,
		string(task.Priority),
		task.RoomNumber,
		string(task.Status),
		nullString(task.AssignedTo),
		task.AssignedBy,
		task.ExpectedDuration,
		cols.assignedAt,
		cols.startedAt,
		cols.completedAt,
		cols.verifiedAt,
		task.VerifiedBy,
		cols.pauseHistory,
		task.ActualDuration,
		cols.photoURLs,
		task.WorkerRemark,
		task.SupervisorRemark,
		task.RejectionReason,
		int(task.EscalationLevel),
	).Scan(&task.Version, &escalation, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missingOrStale(ctx, task.ID)
		}
		return err
	}

	task.EscalationLevel = domain.EscalationLevel(escalation)
	return nil
}

func (r *taskRepository) RaiseEscalation(ctx context.Context, id string, level domain.EscalationLevel) (bool, error) {
	const query = `UPDATE tasks SET escalation_level = $2 WHERE id = $1 AND escalation_level < $2`
	tag, err := r.pool.Exec(ctx, query, id, int(level))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) missingOrStale(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return domain.ErrVersionConflict
}

type taskJSON struct {
	assignedAt   []byte
	startedAt    []byte
	completedAt  []byte
	verifiedAt   []byte
	pauseHistory []byte
	photoURLs    []byte
}

func taskJSONColumns(task *domain.Task) (taskJSON, error) {
	var (
		cols taskJSON
		err  error
	)
	if cols.assignedAt, err = marshalJSON(task.AssignedAt); err != nil {
		return cols, err
	}
	if cols.startedAt, err = marshalJSON(task.StartedAt); err != nil {
		return cols, err
	}
	if cols.completedAt, err = marshalJSON(task.CompletedAt); err != nil {
		return cols, err
	}
	if cols.verifiedAt, err = marshalJSON(task.VerifiedAt); err != nil {
		return cols, err
	}
	history := task.PauseHistory
	if history == nil {
		history = []domain.PauseRecord{}
	}
	if cols.pauseHistory, err = marshalJSON(history); err != nil {
		return cols, err
	}
	if len(task.PhotoURLs) > 0 {
		if cols.photoURLs, err = marshalJSON(task.PhotoURLs); err != nil {
			return cols, err
		}
	}
	return cols, nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		priority     string
		status       string
		assignedAt   []byte
		startedAt    []byte
		completedAt  []byte
		verifiedAt   []byte
		pauseHistory []byte
		photoURLs    []byte
		escalation   int
	)

	if err := row.Scan(
		&task.ID,
		&task.TaskType,
		&task.Department,
		&task.Title,
		&task.Description,
		&priority,
		&task.RoomNumber,
		&status,
		&task.AssignedTo,
		&task.AssignedBy,
		&task.CreatedBy,
		&task.ExpectedDuration,
		&assignedAt,
		&startedAt,
		&completedAt,
		&verifiedAt,
		&task.VerifiedBy,
		&pauseHistory,
		&task.ActualDuration,
		&photoURLs,
		&task.WorkerRemark,
		&task.SupervisorRemark,
		&task.RejectionReason,
		&task.RecreatedFrom,
		&escalation,
		&task.Version,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Priority = domain.TaskPriority(priority)
	task.Status = domain.TaskStatus(status)
	task.EscalationLevel = domain.EscalationLevel(escalation)

	for _, col := range []struct {
		data []byte
		dest **domain.DualTimestamp
	}{
		{assignedAt, &task.AssignedAt},
		{startedAt, &task.StartedAt},
		{completedAt, &task.CompletedAt},
		{verifiedAt, &task.VerifiedAt},
	} {
		if len(col.data) == 0 {
			continue
		}
		var stamp domain.DualTimestamp
		if err := unmarshalJSON(col.data, &stamp); err != nil {
			return nil, err
		}
		*col.dest = &stamp
	}
	if err := unmarshalJSON(pauseHistory, &task.PauseHistory); err != nil {
		return nil, err
	}
	if task.PauseHistory == nil {
		task.PauseHistory = []domain.PauseRecord{}
	}
	_ = unmarshalJSON(photoURLs, &task.PhotoURLs)

	return &task, nil
}
