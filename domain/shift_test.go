package domain_test

import (
	"testing"
	"time"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

func TestShiftSchedule_Validate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		schedule domain.ShiftSchedule
		wantErr  bool
	}{
		"single shift": {
			schedule: domain.ShiftSchedule{WorkerID: "w", Date: "2024-05-01", Shift1: &domain.ShiftWindow{Start: "09:00", End: "17:00"}},
		},
		"day off override": {
			schedule: domain.ShiftSchedule{WorkerID: "w", Date: "2024-05-01", IsOverride: true},
		},
		"dual shift": {
			schedule: *dualSchedule("2024-05-01"),
		},
		"dual shift across midnight": {
			schedule: domain.ShiftSchedule{
				WorkerID: "w", Date: "2024-05-01", HasShift2: true,
				Shift1: &domain.ShiftWindow{Start: "18:00", End: "23:00"},
				Shift2: &domain.ShiftWindow{Start: "01:00", End: "05:00"},
			},
		},
		"shift 2 starting exactly at shift 1 end": {
			schedule: domain.ShiftSchedule{
				WorkerID: "w", Date: "2024-05-01", HasShift2: true,
				Shift1: &domain.ShiftWindow{Start: "06:00", End: "12:00"},
				Shift2: &domain.ShiftWindow{Start: "12:00", End: "15:00"},
			},
		},
		"overlapping dual shift": {
			schedule: domain.ShiftSchedule{
				WorkerID: "w", Date: "2024-05-01", HasShift2: true,
				Shift1: &domain.ShiftWindow{Start: "09:00", End: "17:00"},
				Shift2: &domain.ShiftWindow{Start: "16:00", End: "20:00"},
			},
			wantErr: true,
		},
		"shift 2 running into next day's shift 1": {
			schedule: domain.ShiftSchedule{
				WorkerID: "w", Date: "2024-05-01", HasShift2: true,
				Shift1: &domain.ShiftWindow{Start: "09:00", End: "17:00"},
				Shift2: &domain.ShiftWindow{Start: "20:00", End: "10:00"},
			},
			wantErr: true,
		},
		"half a break": {
			schedule: domain.ShiftSchedule{WorkerID: "w", Date: "2024-05-01", Shift1: &domain.ShiftWindow{Start: "09:00", End: "17:00", BreakStart: "13:00"}},
			wantErr:  true,
		},
		"break outside shift": {
			schedule: domain.ShiftSchedule{WorkerID: "w", Date: "2024-05-01", Shift1: &domain.ShiftWindow{Start: "09:00", End: "17:00", BreakStart: "18:00", BreakEnd: "18:30"}},
			wantErr:  true,
		},
		"dual flag without shift 2": {
			schedule: domain.ShiftSchedule{WorkerID: "w", Date: "2024-05-01", IsDualShift: true, Shift1: &domain.ShiftWindow{Start: "09:00", End: "17:00"}},
			wantErr:  true,
		},
		"shift 2 without shift 1": {
			schedule: domain.ShiftSchedule{WorkerID: "w", Date: "2024-05-01", Shift2: &domain.ShiftWindow{Start: "09:00", End: "17:00"}},
			wantErr:  true,
		},
		"bad date": {
			schedule: domain.ShiftSchedule{WorkerID: "w", Date: "01/05/2024"},
			wantErr:  true,
		},
		"missing worker": {
			schedule: domain.ShiftSchedule{Date: "2024-05-01"},
			wantErr:  true,
		},
		"equal start and end": {
			schedule: domain.ShiftSchedule{WorkerID: "w", Date: "2024-05-01", Shift1: &domain.ShiftWindow{Start: "09:00", End: "09:00"}},
			wantErr:  true,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tt.schedule.Validate()
			if tt.wantErr && !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("expected INVALID error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestShiftSchedule_Normalize(t *testing.T) {
	t.Parallel()

	s := domain.ShiftSchedule{
		WorkerID:       "w",
		Date:           "2024-05-01",
		Shift1:         &domain.ShiftWindow{Start: "09:00", End: "17:00"},
		Shift2:         &domain.ShiftWindow{},
		HasShift2:      true,
		OverrideReason: "ignored without override",
	}
	s.Normalize()

	if s.Shift2 != nil || s.HasShift2 || s.IsDualShift {
		t.Errorf("expected empty shift 2 to clear dual flags, got %+v", s)
	}
	if s.OverrideReason != "" {
		t.Errorf("expected override reason to be cleared, got %q", s.OverrideReason)
	}

	dual := dualSchedule("2024-05-01")
	dual.HasShift2, dual.IsDualShift = false, false
	dual.Normalize()
	if !dual.HasShift2 || !dual.IsDualShift {
		t.Errorf("expected shift 2 to set dual flags, got %+v", dual)
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		"hours and minutes": {input: "09:30", want: 9*time.Hour + 30*time.Minute},
		"with seconds":      {input: "23:59:59", want: 23*time.Hour + 59*time.Minute + 59*time.Second},
		"midnight":          {input: "00:00", want: 0},
		"trims spaces":      {input: " 07:05 ", want: 7*time.Hour + 5*time.Minute},
		"out of range":      {input: "24:00", wantErr: true},
		"not a time":        {input: "noon", wantErr: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := domain.ParseClock(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
