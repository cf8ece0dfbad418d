package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/usecase/escalation"
)

// Scanner runs one escalation pass.
type Scanner interface {
	Scan(ctx context.Context) (escalation.ScanResult, error)
}

// EscalationScanner runs the escalation pass on a fixed interval.
type EscalationScanner struct {
	scanner  Scanner
	monitor  ConnectionHealth
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewEscalationScanner(scanner Scanner, monitor ConnectionHealth, interval time.Duration, logger *zap.Logger) *EscalationScanner {
	if interval < time.Second {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	es := &EscalationScanner{
		scanner:  scanner,
		monitor:  monitor,
		interval: interval,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := es.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		_, _ = es.RunOnce(ctx)
	}); err != nil {
		logger.Error("invalid escalation schedule", zap.String("schedule", schedule), zap.Error(err))
	}
	return es
}

func (es *EscalationScanner) Start() {
	if es == nil {
		return
	}
	es.cron.Start()
	es.logger.Info("escalation scanner started", zap.Duration("interval", es.interval))
}

func (es *EscalationScanner) Stop(ctx context.Context) error {
	if es == nil {
		return nil
	}
	stopCtx := es.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	es.logger.Info("escalation scanner stopped")
	return nil
}

// RunOnce performs a pass unless the database is unreachable.
func (es *EscalationScanner) RunOnce(ctx context.Context) (escalation.ScanResult, error) {
	if es.monitor != nil && !es.monitor.IsOnline() {
		es.logger.Debug("skipping escalation scan (offline)")
		return escalation.ScanResult{}, nil
	}
	result, err := es.scanner.Scan(ctx)
	if err != nil {
		es.logger.Error("escalation scan failed", zap.Error(err))
		return result, err
	}
	if result.Raised > 0 {
		es.logger.Info("escalation scan finished",
			zap.Int("checked", result.Checked),
			zap.Int("raised", result.Raised))
	}
	return result, nil
}
