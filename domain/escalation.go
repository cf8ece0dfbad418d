package domain

import "time"

// EscalationLevel is the severity tier of an overrunning task.
type EscalationLevel int

const (
	EscalationNone     EscalationLevel = 0
	EscalationWarning  EscalationLevel = 1
	EscalationCritical EscalationLevel = 2
	EscalationOverdue  EscalationLevel = 3
)

const (
	escalationWarningMinutes  = 15
	escalationCriticalMinutes = 20
	escalationOverdueFactor   = 1.5
)

func (l EscalationLevel) String() string {
	switch l {
	case EscalationWarning:
		return "warning"
	case EscalationCritical:
		return "critical"
	case EscalationOverdue:
		return "overdue"
	default:
		return "none"
	}
}

// ClassifyEscalation maps active minutes to a level. Thresholds are checked
// from highest to lowest; only the overdue tier depends on expected.
func ClassifyEscalation(activeMinutes, expectedMinutes int) EscalationLevel {
	switch {
	case float64(activeMinutes) >= float64(expectedMinutes)*escalationOverdueFactor:
		return EscalationOverdue
	case activeMinutes >= escalationCriticalMinutes:
		return EscalationCritical
	case activeMinutes >= escalationWarningMinutes:
		return EscalationWarning
	default:
		return EscalationNone
	}
}

type EscalationStatus string

const (
	EscalationPending      EscalationStatus = "pending"
	EscalationAcknowledged EscalationStatus = "acknowledged"
)

// Escalation records a task crossing into a higher escalation level.
type Escalation struct {
	ID              string           `json:"id"`
	TaskID          string           `json:"task_id"`
	WorkerID        string           `json:"worker_id,omitempty"`
	Level           EscalationLevel  `json:"level"`
	ActiveMinutes   int              `json:"active_minutes"`
	ExpectedMinutes int              `json:"expected_minutes"`
	Status          EscalationStatus `json:"status"`
	AcknowledgedBy  string           `json:"acknowledged_by,omitempty"`
	AcknowledgedAt  *time.Time       `json:"acknowledged_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func (e *Escalation) IsPending() bool {
	return e != nil && e.Status == EscalationPending
}
