package domain

import "time"

type Role string

const (
	RoleWorker      Role = "worker"
	RoleSupervisor  Role = "supervisor"
	RoleFrontOffice Role = "front_office"
	RoleAdmin       Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleWorker, RoleSupervisor, RoleFrontOffice, RoleAdmin:
		return true
	default:
		return false
	}
}

// Is reports whether r is one of roles.
func (r Role) Is(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

const (
	WorkerStatusActive   = "active"
	WorkerStatusInactive = "inactive"
)

// Worker represents any staff identity: workers, supervisors, front office and admins.
type Worker struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Username     string            `json:"username"`
	PasswordHash string            `json:"-"`
	Role         Role              `json:"role"`
	Department   string            `json:"department,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Status       string            `json:"status"`
	DefaultShift *ShiftWindow      `json:"default_shift,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (w *Worker) IsActive() bool {
	return w != nil && w.Status == WorkerStatusActive
}

// Validate checks the fields required to store a worker.
func (w *Worker) Validate() error {
	if w == nil {
		return ErrInvalidPayload
	}
	if w.ID == "" || w.Username == "" {
		return Invalidf("worker id and username are required")
	}
	if !w.Role.IsValid() {
		return Invalidf("unknown role %q", w.Role)
	}
	if !w.DefaultShift.IsEmpty() {
		return w.DefaultShift.Validate()
	}
	return nil
}
