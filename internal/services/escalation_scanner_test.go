package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Likheet/hermes-monitoring-sub002/usecase/escalation"
)

type countingScanner struct {
	calls  int
	result escalation.ScanResult
	err    error
}

func (s *countingScanner) Scan(context.Context) (escalation.ScanResult, error) {
	s.calls++
	return s.result, s.err
}

func TestEscalationScanner_RunOnce(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		online    bool
		err       error
		wantCalls int
		wantErr   bool
	}{
		"online":      {online: true, wantCalls: 1},
		"offline":     {online: false, wantCalls: 0},
		"scan failed": {online: true, err: errors.New("boom"), wantCalls: 1, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			scanner := &countingScanner{result: escalation.ScanResult{Checked: 3, Raised: 1}, err: tc.err}
			es := NewEscalationScanner(scanner, &switchMonitor{online: tc.online}, time.Minute, nil)

			_, err := es.RunOnce(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("RunOnce error = %v, wantErr %v", err, tc.wantErr)
			}
			if scanner.calls != tc.wantCalls {
				t.Errorf("calls = %d, want %d", scanner.calls, tc.wantCalls)
			}
		})
	}
}

func TestEscalationScanner_StartStop(t *testing.T) {
	t.Parallel()

	es := NewEscalationScanner(&countingScanner{}, nil, time.Hour, nil)
	es.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := es.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
