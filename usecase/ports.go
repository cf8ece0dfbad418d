package usecase

import (
	"context"
	"time"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

// EventPublisher broadcasts task events to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.TaskEvent) error
}

// Clock returns the server time used to stamp transitions.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   string
	Role domain.Role
}

// Require fails with FORBIDDEN unless the actor holds one of roles.
func (a Actor) Require(roles ...domain.Role) error {
	if a.ID == "" {
		return domain.ErrUnauthorized
	}
	if !a.Role.Is(roles...) {
		return domain.ErrForbidden
	}
	return nil
}

// IsStaff reports whether the actor manages other workers.
func (a Actor) IsStaff() bool {
	return a.Role.Is(domain.RoleSupervisor, domain.RoleFrontOffice, domain.RoleAdmin)
}
