package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
)

type taskEventRepository struct {
	pool *pgxpool.Pool
}

// NewTaskEventRepository creates a Postgres-backed TaskEventRepository implementation.
func NewTaskEventRepository(pool *pgxpool.Pool) repository.TaskEventRepository {
	return &taskEventRepository{pool: pool}
}

func (r *taskEventRepository) Append(ctx context.Context, event *domain.TaskEvent) error {
	if event == nil || event.TaskID == "" {
		return domain.ErrInvalidPayload
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO task_events (id, task_id, name, actor_id, version, client_ts, server_ts, payload, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
	RETURNING created_at
	`

	var payload []byte
	if len(event.Payload) > 0 {
		payload = []byte(event.Payload)
	}

	return r.pool.QueryRow(ctx, query,
		event.ID,
		event.TaskID,
		event.Name,
		event.ActorID,
		event.Version,
		event.Timestamp.Client,
		event.Timestamp.Server,
		payload,
		marshalMap(event.Metadata),
		nullTime(event.CreatedAt),
	).Scan(&event.CreatedAt)
}

func (r *taskEventRepository) ListByTask(ctx context.Context, taskID string, limit int) ([]domain.TaskEvent, error) {
	const query = `
	SELECT id, task_id, name, actor_id, version, client_ts, server_ts, payload, metadata, created_at
	FROM task_events
	WHERE task_id = $1
	ORDER BY created_at ASC
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, taskID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.TaskEvent
	for rows.Next() {
		var (
			event    domain.TaskEvent
			payload  []byte
			metadata []byte
		)
		if err := rows.Scan(
			&event.ID,
			&event.TaskID,
			&event.Name,
			&event.ActorID,
			&event.Version,
			&event.Timestamp.Client,
			&event.Timestamp.Server,
			&payload,
			&metadata,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			event.Payload = make([]byte, len(payload))
			copy(event.Payload, payload)
		}
		_ = unmarshalJSON(metadata, &event.Metadata)
		events = append(events, event)
	}
	return events, rows.Err()
}
