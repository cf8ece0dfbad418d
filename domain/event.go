package domain

import (
	"encoding/json"
	"time"
)

const (
	EventTaskCreated   = "task.created"
	EventTaskAssigned  = "task.assigned"
	EventTaskStarted   = "task.started"
	EventTaskPaused    = "task.paused"
	EventTaskResumed   = "task.resumed"
	EventTaskCompleted = "task.completed"
	EventTaskVerified  = "task.verified"
	EventTaskRejected  = "task.rejected"
	EventTaskRecreated = "task.recreated"
	EventTaskDeleted   = "task.deleted"
	EventTaskEscalated = "task.escalated"
)

// TaskEvent represents a change applied to a task, kept as an audit trail.
type TaskEvent struct {
	ID        string            `json:"id"`
	TaskID    string            `json:"task_id"`
	Name      string            `json:"name"`
	ActorID   string            `json:"actor_id,omitempty"`
	Version   int               `json:"version"`
	Timestamp DualTimestamp     `json:"timestamp"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
