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

const scheduleColumns = `id, worker_id, to_char(schedule_date, 'YYYY-MM-DD'),
	shift_1_start, shift_1_end, shift_1_break_start, shift_1_break_end,
	shift_2_start, shift_2_end, shift_2_break_start, shift_2_break_end,
	has_shift_2, is_dual_shift, is_override, override_reason, notes, created_by,
	created_at, updated_at`

type scheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository returns a Postgres-backed ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) repository.ScheduleRepository {
	return &scheduleRepository{pool: pool}
}

func (r *scheduleRepository) Get(ctx context.Context, workerID, date string) (*domain.ShiftSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM shift_schedules WHERE worker_id = $1 AND schedule_date = $2::date`
	return scanSchedule(r.pool.QueryRow(ctx, query, workerID, date))
}

func (r *scheduleRepository) ListRange(ctx context.Context, workerID, from, to string) ([]domain.ShiftSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM shift_schedules
	WHERE worker_id = $1
	  AND schedule_date BETWEEN $2::date AND $3::date
	ORDER BY schedule_date ASC`

	rows, err := r.pool.Query(ctx, query, workerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []domain.ShiftSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, rows.Err()
}

func (r *scheduleRepository) Upsert(ctx context.Context, schedule *domain.ShiftSchedule) error {
	if schedule == nil {
		return domain.ErrInvalidPayload
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO shift_schedules (id, worker_id, schedule_date,
		shift_1_start, shift_1_end, shift_1_break_start, shift_1_break_end,
		shift_2_start, shift_2_end, shift_2_break_start, shift_2_break_end,
		has_shift_2, is_dual_shift, is_override, override_reason, notes, created_by)
	VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	ON CONFLICT (worker_id, schedule_date) DO UPDATE
	SET shift_1_start = EXCLUDED.shift_1_start,
		shift_1_end = EXCLUDED.shift_1_end,
		shift_1_break_start = EXCLUDED.shift_1_break_start,
		shift_1_break_end = EXCLUDED.shift_1_break_end,
		shift_2_start = EXCLUDED.shift_2_start,
		shift_2_end = EXCLUDED.shift_2_end,
		shift_2_break_start = EXCLUDED.shift_2_break_start,
		shift_2_break_end = EXCLUDED.shift_2_break_end,
		has_shift_2 = EXCLUDED.has_shift_2,
		is_dual_shift = EXCLUDED.is_dual_shift,
		is_override = EXCLUDED.is_override,
		override_reason = EXCLUDED.override_reason,
		notes = EXCLUDED.notes,
		updated_at = NOW()
	RETURNING id, created_at, updated_at
	`

	row := newScheduleRow(schedule)
	return r.pool.QueryRow(ctx, query,
		schedule.ID,
		schedule.WorkerID,
		schedule.Date,
		row.shift1[0], row.shift1[1], row.shift1[2], row.shift1[3],
		row.shift2[0], row.shift2[1], row.shift2[2], row.shift2[3],
		schedule.HasShift2,
		schedule.IsDualShift,
		schedule.IsOverride,
		schedule.OverrideReason,
		schedule.Notes,
		schedule.CreatedBy,
	).Scan(&schedule.ID, &schedule.CreatedAt, &schedule.UpdatedAt)
}

func (r *scheduleRepository) Delete(ctx context.Context, workerID, date string) error {
	const query = `DELETE FROM shift_schedules WHERE worker_id = $1 AND schedule_date = $2::date`
	tag, err := r.pool.Exec(ctx, query, workerID, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

// scheduleRow is the column form of a schedule's two windows:
// start, end, break start, break end. Empty values are stored as NULL.
type scheduleRow struct {
	shift1 [4]*string
	shift2 [4]*string
}

func newScheduleRow(schedule *domain.ShiftSchedule) scheduleRow {
	return scheduleRow{
		shift1: windowColumns(schedule.Shift1),
		shift2: windowColumns(schedule.Shift2),
	}
}

func (row scheduleRow) apply(schedule *domain.ShiftSchedule) {
	schedule.Shift1 = windowFromColumns(row.shift1)
	schedule.Shift2 = windowFromColumns(row.shift2)
}

func windowColumns(w *domain.ShiftWindow) [4]*string {
	var cols [4]*string
	if w.IsEmpty() {
		return cols
	}
	for i, v := range []string{w.Start, w.End, w.BreakStart, w.BreakEnd} {
		if v != "" {
			value := v
			cols[i] = &value
		}
	}
	return cols
}

func windowFromColumns(cols [4]*string) *domain.ShiftWindow {
	w := &domain.ShiftWindow{
		Start:      derefString(cols[0]),
		End:        derefString(cols[1]),
		BreakStart: derefString(cols[2]),
		BreakEnd:   derefString(cols[3]),
	}
	if w.IsEmpty() {
		return nil
	}
	return w
}

func scanSchedule(row interface {
	Scan(dest ...interface{}) error
}) (*domain.ShiftSchedule, error) {
	var schedule domain.ShiftSchedule
	var cols scheduleRow

	if err := row.Scan(
		&schedule.ID,
		&schedule.WorkerID,
		&schedule.Date,
		&cols.shift1[0], &cols.shift1[1], &cols.shift1[2], &cols.shift1[3],
		&cols.shift2[0], &cols.shift2[1], &cols.shift2[2], &cols.shift2[3],
		&schedule.HasShift2,
		&schedule.IsDualShift,
		&schedule.IsOverride,
		&schedule.OverrideReason,
		&schedule.Notes,
		&schedule.CreatedBy,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}

	cols.apply(&schedule)
	return &schedule, nil
}
