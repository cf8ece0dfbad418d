package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/internal/infrastructure/buffer"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained and pruned.
type ProcessorConfig struct {
	Interval        time.Duration
	BatchSize       int
	MaxRetries      int
	Retention       time.Duration
	CleanupSchedule string
}

// Repositories are the write targets buffered items are replayed against.
type Repositories struct {
	Workers   repository.WorkerRepository
	Tasks     repository.TaskRepository
	Schedules repository.ScheduleRepository
	Events    repository.TaskEventRepository
}

// BufferProcessor synchronizes buffered operations with primary datastores.
type BufferProcessor struct {
	store   *buffer.Store
	monitor ConnectionHealth
	repos   Repositories
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     ProcessorConfig
	now     func() time.Time
}

func NewBufferProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	repos Repositories,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *BufferProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bp := &BufferProcessor{
		store:   store,
		monitor: monitor,
		repos:   repos,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
		now:     time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := bp.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := bp.Drain(ctx); err != nil {
			bp.logger.Error("buffer drain failed", zap.Error(err))
		}
	}); err != nil {
		bp.logger.Error("invalid buffer drain schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	if cfg.Retention > 0 && cfg.CleanupSchedule != "" {
		if _, err := bp.cron.AddFunc(cfg.CleanupSchedule, func() {
			if _, err := bp.Cleanup(); err != nil {
				bp.logger.Error("buffer cleanup failed", zap.Error(err))
			}
		}); err != nil {
			bp.logger.Error("invalid buffer cleanup schedule", zap.String("schedule", cfg.CleanupSchedule), zap.Error(err))
		}
	}

	return bp
}

// Start launches the cron scheduler.
func (bp *BufferProcessor) Start() {
	if bp == nil || bp.cron == nil {
		return
	}
	bp.cron.Start()
	bp.logger.Info("buffer processor started",
		zap.Duration("interval", bp.cfg.Interval),
		zap.Int("pending", bp.Size()))
}

// Stop gracefully stops the scheduler.
func (bp *BufferProcessor) Stop(ctx context.Context) error {
	if bp == nil || bp.cron == nil {
		return nil
	}
	stopCtx := bp.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	bp.logger.Info("buffer processor stopped")
	return nil
}

// Drain replays one batch of buffered items. Items rejected by the domain
// are dropped; others are requeued until MaxRetries.
func (bp *BufferProcessor) Drain(ctx context.Context) error {
	if bp == nil || bp.store == nil {
		return nil
	}
	if bp.monitor != nil && !bp.monitor.IsOnline() {
		bp.logger.Debug("skipping buffer drain (offline)")
		return nil
	}

	items, err := bp.store.GetBatch(bp.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := bp.processItem(ctx, item)
		switch {
		case err == nil:
			if err := bp.store.Remove(item); err != nil {
				bp.logger.Warn("failed to purge processed buffer item", zap.Error(err))
			}

		case !retryable(err):
			bp.logger.Warn("dropping buffer item rejected by storage",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.String("operation", item.Operation),
				zap.Error(err))
			_ = bp.store.Remove(item)

		default:
			bp.logger.Error("failed to process buffer item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.Error(err))

			item.Retries++
			if item.Retries >= bp.cfg.MaxRetries {
				bp.logger.Warn("dropping buffer item (max retries reached)", zap.String("item_id", item.ID))
				_ = bp.store.Remove(item)
				continue
			}
			if err := bp.store.Requeue(item); err != nil {
				bp.logger.Error("failed to requeue buffer item", zap.Error(err))
			}
		}
	}
	return nil
}

// Cleanup drops items older than the configured retention.
func (bp *BufferProcessor) Cleanup() (int, error) {
	if bp == nil || bp.store == nil || bp.cfg.Retention <= 0 {
		return 0, nil
	}
	removed, err := bp.store.Cleanup(bp.now().Add(-bp.cfg.Retention))
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		bp.logger.Warn("expired buffer items removed",
			zap.Int("removed", removed),
			zap.Duration("retention", bp.cfg.Retention))
	}
	return removed, nil
}

// BufferOperation attempts to run the operation immediately and falls back to persisting it.
func (bp *BufferProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if bp == nil || bp.store == nil {
		return fmt.Errorf("buffer processor not configured")
	}

	if bp.monitor == nil || bp.monitor.IsOnline() {
		err := bp.processItem(ctx, item)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		bp.logger.Warn("immediate processing failed, buffering", zap.String("entity", item.Entity), zap.Error(err))
	}
	return bp.store.Enqueue(item)
}

// Size returns the number of buffered items.
func (bp *BufferProcessor) Size() int {
	if bp == nil || bp.store == nil {
		return 0
	}
	size, err := bp.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (bp *BufferProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityWorker:
		wrapped := bufferedWorker{Worker: &domain.Worker{}}
		if err := json.Unmarshal(item.Data, &wrapped); err != nil {
			return err
		}
		wrapped.Worker.PasswordHash = wrapped.PasswordHash
		return bp.repos.Workers.Upsert(ctx, wrapped.Worker)

	case buffer.EntityTask:
		var task domain.Task
		if err := json.Unmarshal(item.Data, &task); err != nil {
			return err
		}
		switch item.Operation {
		case buffer.OperationCreate:
			_, err := bp.repos.Tasks.Create(ctx, &task)
			return err
		case buffer.OperationUpdate:
			return bp.repos.Tasks.Update(ctx, &task)
		case buffer.OperationDelete:
			return bp.repos.Tasks.Delete(ctx, task.ID)
		default:
			return fmt.Errorf("unsupported operation %s", item.Operation)
		}

	case buffer.EntitySchedule:
		var schedule domain.ShiftSchedule
		if err := json.Unmarshal(item.Data, &schedule); err != nil {
			return err
		}
		if item.Operation == buffer.OperationDelete {
			return bp.repos.Schedules.Delete(ctx, schedule.WorkerID, schedule.Date)
		}
		return bp.repos.Schedules.Upsert(ctx, &schedule)

	case buffer.EntityTaskEvent:
		var event domain.TaskEvent
		if err := json.Unmarshal(item.Data, &event); err != nil {
			return err
		}
		return bp.repos.Events.Append(ctx, &event)

	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}

// retryable reports whether a replay failure may succeed later. Domain
// errors such as a lost update or a missing row never will.
func retryable(err error) bool {
	var dErr *domain.Error
	return !errors.As(err, &dErr)
}
