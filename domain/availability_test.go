package domain_test

import (
	"testing"
	"time"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 1, hour, minute, 0, 0, time.UTC)
}

func dayShift() *domain.ShiftWindow {
	return &domain.ShiftWindow{Start: "09:00", End: "17:00", BreakStart: "13:00", BreakEnd: "14:00"}
}

// lateDualSchedule is an evening shift followed by a second shift after midnight.
func lateDualSchedule() *domain.ShiftSchedule {
	return &domain.ShiftSchedule{
		WorkerID:    "w-1",
		Date:        "2024-05-01",
		Shift1:      &domain.ShiftWindow{Start: "18:00", End: "23:00"},
		Shift2:      &domain.ShiftWindow{Start: "01:00", End: "05:00", BreakStart: "03:00", BreakEnd: "03:15"},
		HasShift2:   true,
		IsDualShift: true,
	}
}

func dualSchedule(date string) *domain.ShiftSchedule {
	return &domain.ShiftSchedule{
		WorkerID:    "w-1",
		Date:        date,
		Shift1:      &domain.ShiftWindow{Start: "06:00", End: "10:00"},
		Shift2:      &domain.ShiftWindow{Start: "16:00", End: "22:00", BreakStart: "19:00", BreakEnd: "19:30"},
		HasShift2:   true,
		IsDualShift: true,
		IsOverride:  true,
	}
}

func TestEvaluateAvailability(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input      domain.AvailabilityInput
		status     domain.AvailabilityStatus
		breakType  domain.BreakType
		minutes    int
		endingSoon bool
	}{
		"inside default shift before break": {
			input:   domain.AvailabilityInput{DefaultShift: dayShift(), Now: at(10, 0)},
			status:  domain.AvailabilityAvailable,
			minutes: 180,
		},
		"intra shift break": {
			input:     domain.AvailabilityInput{DefaultShift: dayShift(), Now: at(13, 30)},
			status:    domain.AvailabilityShiftBreak,
			breakType: domain.BreakIntraShift,
			minutes:   30,
		},
		"break end resumes availability": {
			input:   domain.AvailabilityInput{DefaultShift: dayShift(), Now: at(14, 0)},
			status:  domain.AvailabilityAvailable,
			minutes: 180,
		},
		"ending soon": {
			input:      domain.AvailabilityInput{DefaultShift: dayShift(), Now: at(16, 50)},
			status:     domain.AvailabilityAvailable,
			minutes:    10,
			endingSoon: true,
		},
		"shift end is exclusive": {
			input:   domain.AvailabilityInput{DefaultShift: dayShift(), Now: at(17, 0)},
			status:  domain.AvailabilityOffDuty,
			minutes: 16 * 60,
		},
		"before shift counts down to start": {
			input:   domain.AvailabilityInput{DefaultShift: dayShift(), Now: at(8, 15)},
			status:  domain.AvailabilityOffDuty,
			minutes: 45,
		},
		"no configuration is off duty": {
			input:  domain.AvailabilityInput{Now: at(10, 0)},
			status: domain.AvailabilityOffDuty,
		},
		"day off override beats default": {
			input: domain.AvailabilityInput{
				DefaultShift: dayShift(),
				Schedule:     &domain.ShiftSchedule{WorkerID: "w-1", Date: "2024-05-01", IsOverride: true, OverrideReason: "leave"},
				Now:          at(10, 0),
			},
			status:  domain.AvailabilityOffDuty,
			minutes: 23 * 60,
		},
		"override replaces default window": {
			input: domain.AvailabilityInput{
				DefaultShift: dayShift(),
				Schedule: &domain.ShiftSchedule{
					WorkerID: "w-1", Date: "2024-05-01", IsOverride: true,
					Shift1: &domain.ShiftWindow{Start: "12:00", End: "20:00"},
				},
				Now: at(10, 0),
			},
			status:  domain.AvailabilityOffDuty,
			minutes: 120,
		},
		"schedule for another date is ignored": {
			input: domain.AvailabilityInput{
				DefaultShift: dayShift(),
				Schedule:     &domain.ShiftSchedule{WorkerID: "w-1", Date: "2024-04-30", IsOverride: true},
				Now:          at(10, 0),
			},
			status:  domain.AvailabilityAvailable,
			minutes: 180,
		},
		"dual shift first window": {
			input:   domain.AvailabilityInput{Schedule: dualSchedule("2024-05-01"), Now: at(9, 0)},
			status:  domain.AvailabilityAvailable,
			minutes: 60,
		},
		"dual shift gap is inter shift break": {
			input:     domain.AvailabilityInput{Schedule: dualSchedule("2024-05-01"), Now: at(12, 0)},
			status:    domain.AvailabilityShiftBreak,
			breakType: domain.BreakInterShift,
			minutes:   240,
		},
		"dual shift second window break": {
			input:     domain.AvailabilityInput{Schedule: dualSchedule("2024-05-01"), Now: at(19, 10)},
			status:    domain.AvailabilityShiftBreak,
			breakType: domain.BreakIntraShift,
			minutes:   20,
		},
		"dual shift after midnight is off duty before first shift": {
			input:   domain.AvailabilityInput{Schedule: lateDualSchedule(), Now: at(2, 0)},
			status:  domain.AvailabilityOffDuty,
			minutes: 16 * 60,
		},
		"dual shift gap across midnight is inter shift break": {
			input:     domain.AvailabilityInput{Schedule: lateDualSchedule(), Now: at(23, 30)},
			status:    domain.AvailabilityShiftBreak,
			breakType: domain.BreakInterShift,
			minutes:   90,
		},
		"dual shift after midnight runs on the next day": {
			input: domain.AvailabilityInput{
				PreviousSchedule: lateDualSchedule(),
				Now:              time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC),
			},
			status:  domain.AvailabilityAvailable,
			minutes: 60,
		},
		"overnight shift after midnight from previous day": {
			input: domain.AvailabilityInput{
				DefaultShift: &domain.ShiftWindow{Start: "22:00", End: "06:00"},
				Now:          at(2, 0),
			},
			status:  domain.AvailabilityAvailable,
			minutes: 240,
		},
		"overnight shift before midnight": {
			input: domain.AvailabilityInput{
				DefaultShift: &domain.ShiftWindow{Start: "22:00", End: "06:00", BreakStart: "02:00", BreakEnd: "02:30"},
				Now:          at(23, 0),
			},
			status:  domain.AvailabilityAvailable,
			minutes: 180,
		},
		"previous day off blocks overnight carry over": {
			input: domain.AvailabilityInput{
				DefaultShift:     &domain.ShiftWindow{Start: "22:00", End: "06:00"},
				PreviousSchedule: &domain.ShiftSchedule{WorkerID: "w-1", Date: "2024-04-30", IsOverride: true},
				Now:              at(2, 0),
			},
			status:  domain.AvailabilityOffDuty,
			minutes: 20 * 60,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := domain.EvaluateAvailability(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != tt.status {
				t.Errorf("status = %s, want %s", got.Status, tt.status)
			}
			if got.BreakType != tt.breakType {
				t.Errorf("break type = %q, want %q", got.BreakType, tt.breakType)
			}
			if got.MinutesUntilStateChange != tt.minutes {
				t.Errorf("minutes until change = %d, want %d", got.MinutesUntilStateChange, tt.minutes)
			}
			if got.IsEndingSoon != tt.endingSoon {
				t.Errorf("ending soon = %v, want %v", got.IsEndingSoon, tt.endingSoon)
			}
		})
	}
}

func TestEvaluateAvailability_ShiftBounds(t *testing.T) {
	t.Parallel()

	got, err := domain.EvaluateAvailability(domain.AvailabilityInput{DefaultShift: dayShift(), Now: at(13, 30)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ShiftStart == nil || !got.ShiftStart.Equal(at(9, 0)) {
		t.Errorf("shift start = %v, want 09:00", got.ShiftStart)
	}
	if got.ShiftEnd == nil || !got.ShiftEnd.Equal(at(17, 0)) {
		t.Errorf("shift end = %v, want 17:00", got.ShiftEnd)
	}
	if got.NextChangeAt == nil || !got.NextChangeAt.Equal(at(14, 0)) {
		t.Errorf("next change = %v, want 14:00", got.NextChangeAt)
	}
}

func TestEvaluateAvailability_Errors(t *testing.T) {
	t.Parallel()

	tests := map[string]domain.AvailabilityInput{
		"malformed default shift": {
			DefaultShift: &domain.ShiftWindow{Start: "9am", End: "17:00"},
			Now:          at(10, 0),
		},
		"overlapping dual shift": {
			Schedule: &domain.ShiftSchedule{
				WorkerID: "w-1", Date: "2024-05-01", HasShift2: true, IsDualShift: true,
				Shift1: &domain.ShiftWindow{Start: "09:00", End: "17:00"},
				Shift2: &domain.ShiftWindow{Start: "16:00", End: "20:00"},
			},
			Now: at(10, 0),
		},
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := domain.EvaluateAvailability(input); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("expected INVALID error, got %v", err)
			}
		})
	}
}
