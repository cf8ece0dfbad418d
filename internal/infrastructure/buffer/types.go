package buffer

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	EntityWorker    = "worker"
	EntityTask      = "task"
	EntitySchedule  = "schedule"
	EntityTaskEvent = "task_event"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Priorities; lower drains first.
const (
	PriorityTask     = 1
	PriorityEvent    = 2
	PrioritySchedule = 3
	PriorityWorker   = 4
	PriorityDefault  = 3
)

// ErrFull is returned by Enqueue once the store holds MaxSize items.
var ErrFull = errors.New("buffer: store is full")

// Item is a write that could not reach Postgres and waits to be replayed.
type Item struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actor_id,omitempty"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = PriorityDefault
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
