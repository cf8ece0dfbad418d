package domain_test

import (
	"testing"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

func TestClassifyEscalation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		active   int
		expected int
		want     domain.EscalationLevel
	}{
		"well within estimate":           {active: 5, expected: 60, want: domain.EscalationNone},
		"just under warning":             {active: 14, expected: 60, want: domain.EscalationNone},
		"warning at fifteen":             {active: 15, expected: 60, want: domain.EscalationWarning},
		"between fifteen and twenty":     {active: 18, expected: 60, want: domain.EscalationWarning},
		"critical at twenty":             {active: 20, expected: 60, want: domain.EscalationCritical},
		"overdue at one and a half":      {active: 45, expected: 30, want: domain.EscalationOverdue},
		"overdue wins over warning":      {active: 15, expected: 10, want: domain.EscalationOverdue},
		"just under overdue":             {active: 89, expected: 60, want: domain.EscalationCritical},
		"zero estimate always overdue":   {active: 0, expected: 0, want: domain.EscalationOverdue},
		"short estimate overdue early":   {active: 3, expected: 2, want: domain.EscalationOverdue},
		"fractional threshold rounds up": {active: 7, expected: 5, want: domain.EscalationNone},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := domain.ClassifyEscalation(tt.active, tt.expected); got != tt.want {
				t.Errorf("ClassifyEscalation(%d, %d) = %d, want %d", tt.active, tt.expected, got, tt.want)
			}
		})
	}
}

func TestClassifyEscalation_Monotonic(t *testing.T) {
	t.Parallel()

	for _, expected := range []int{0, 1, 5, 10, 13, 30, 60, 240} {
		prev := domain.EscalationNone
		for active := 0; active <= 400; active++ {
			got := domain.ClassifyEscalation(active, expected)
			if got < prev {
				t.Fatalf("expected=%d: level dropped from %d to %d at active=%d", expected, prev, got, active)
			}
			prev = got
		}
	}
}

func TestEscalationLevel_String(t *testing.T) {
	t.Parallel()

	want := map[domain.EscalationLevel]string{
		domain.EscalationNone:     "none",
		domain.EscalationWarning:  "warning",
		domain.EscalationCritical: "critical",
		domain.EscalationOverdue:  "overdue",
	}
	for level, name := range want {
		if level.String() != name {
			t.Errorf("level %d String() = %q, want %q", level, level.String(), name)
		}
	}
}
