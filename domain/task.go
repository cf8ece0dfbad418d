package domain

import (
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskPaused     TaskStatus = "PAUSED"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskVerified   TaskStatus = "VERIFIED"
	TaskRejected   TaskStatus = "REJECTED"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskPaused, TaskCompleted, TaskVerified, TaskRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskVerified || s == TaskRejected
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// DefaultExpectedMinutes applies when a task is created without an estimate.
const DefaultExpectedMinutes = 30

// Task is an operational job assigned to a worker.
type Task struct {
	ID               string          `json:"id"`
	TaskType         string          `json:"task_type"`
	Department       string          `json:"department,omitempty"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	Priority         TaskPriority    `json:"priority"`
	RoomNumber       string          `json:"room_number,omitempty"`
	Status           TaskStatus      `json:"status"`
	AssignedTo       string          `json:"assigned_to,omitempty"`
	AssignedBy       string          `json:"assigned_by,omitempty"`
	CreatedBy        string          `json:"created_by"`
	ExpectedDuration int             `json:"expected_duration_minutes"`
	AssignedAt       *DualTimestamp  `json:"assigned_at,omitempty"`
	StartedAt        *DualTimestamp  `json:"started_at,omitempty"`
	CompletedAt      *DualTimestamp  `json:"completed_at,omitempty"`
	VerifiedAt       *DualTimestamp  `json:"verified_at,omitempty"`
	VerifiedBy       string          `json:"verified_by,omitempty"`
	PauseHistory     []PauseRecord   `json:"pause_history"`
	ActualDuration   *int            `json:"actual_duration_minutes,omitempty"`
	PhotoURLs        []string        `json:"photo_urls,omitempty"`
	WorkerRemark     string          `json:"worker_remark,omitempty"`
	SupervisorRemark string          `json:"supervisor_remark,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	RecreatedFrom    string          `json:"recreated_from,omitempty"`
	EscalationLevel  EscalationLevel `json:"escalation_level"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Validate checks the fields required to create a task.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Title == "" || t.TaskType == "" {
		return Invalidf("task title and type are required")
	}
	if !t.Priority.IsValid() {
		return Invalidf("unknown priority %q", t.Priority)
	}
	if t.ExpectedDuration <= 0 {
		return Invalidf("expected duration must be positive")
	}
	return nil
}

// CanTransition reports whether from -> to is part of the task lifecycle.
func CanTransition(from, to TaskStatus) bool {
	switch from {
	case TaskPending:
		return to == TaskInProgress
	case TaskInProgress:
		return to == TaskPaused || to == TaskCompleted
	case TaskPaused:
		return to == TaskInProgress || to == TaskCompleted
	case TaskCompleted:
		return to == TaskVerified || to == TaskRejected
	default:
		return false
	}
}

func (t *Task) transition(to TaskStatus) error {
	if !CanTransition(t.Status, to) {
		return NewError(ErrCodeConflict, fmt.Sprintf("cannot move task from %s to %s", t.Status, to))
	}
	t.Status = to
	return nil
}

// Assign sets the assignee. Only tasks that have not started can be reassigned.
func (t *Task) Assign(workerID, by string, at DualTimestamp) error {
	if workerID == "" {
		return Invalidf("assignee is required")
	}
	if t.Status != TaskPending {
		return NewError(ErrCodeConflict, "only pending tasks can be assigned")
	}
	t.AssignedTo = workerID
	t.AssignedBy = by
	t.AssignedAt = &at
	return nil
}

func (t *Task) Start(at DualTimestamp) error {
	if t.AssignedTo == "" {
		return NewError(ErrCodeConflict, "task is not assigned")
	}
	if err := t.transition(TaskInProgress); err != nil {
		return err
	}
	t.StartedAt = &at
	return nil
}

// Pause opens a pause record. A task holds at most one open pause.
func (t *Task) Pause(at DualTimestamp, reason string) error {
	if t.openPause() >= 0 {
		return ErrOpenPause
	}
	if err := t.transition(TaskPaused); err != nil {
		return err
	}
	t.PauseHistory = append(t.PauseHistory, PauseRecord{PausedAt: at, Reason: reason})
	return nil
}

func (t *Task) Resume(at DualTimestamp) error {
	idx := t.openPause()
	if idx < 0 {
		return ErrNoOpenPause
	}
	if err := t.transition(TaskInProgress); err != nil {
		return err
	}
	t.PauseHistory[idx].ResumedAt = &at
	return nil
}

// Complete closes any open pause at the completion time and stores the
// active duration.
func (t *Task) Complete(at DualTimestamp, photoURLs []string, remark string) error {
	if t.StartedAt == nil {
		return NewError(ErrCodeConflict, "task was never started")
	}
	minutes, err := ActiveMinutes(*t.StartedAt, t.PauseHistory, at)
	if err != nil {
		return err
	}
	if err := t.transition(TaskCompleted); err != nil {
		return err
	}
	if idx := t.openPause(); idx >= 0 {
		t.PauseHistory[idx].ResumedAt = &at
	}
	t.CompletedAt = &at
	t.ActualDuration = &minutes
	t.PhotoURLs = append(t.PhotoURLs, photoURLs...)
	if remark != "" {
		t.WorkerRemark = remark
	}
	return nil
}

func (t *Task) Verify(by string, at DualTimestamp, remark string) error {
	if err := t.transition(TaskVerified); err != nil {
		return err
	}
	t.VerifiedBy = by
	t.VerifiedAt = &at
	t.SupervisorRemark = remark
	return nil
}

func (t *Task) Reject(by string, at DualTimestamp, reason string) error {
	if reason == "" {
		return Invalidf("rejection reason is required")
	}
	if err := t.transition(TaskRejected); err != nil {
		return err
	}
	t.VerifiedBy = by
	t.VerifiedAt = &at
	t.RejectionReason = reason
	return nil
}

// Recreate builds a fresh pending task from a rejected one. The rejected
// task itself is left untouched.
func (t *Task) Recreate(by string) (*Task, error) {
	if t.Status != TaskRejected {
		return nil, NewError(ErrCodeConflict, "only rejected tasks can be recreated")
	}
	return &Task{
		TaskType:         t.TaskType,
		Department:       t.Department,
		Title:            t.Title,
		Description:      t.Description,
		Priority:         t.Priority,
		RoomNumber:       t.RoomNumber,
		Status:           TaskPending,
		AssignedTo:       t.AssignedTo,
		AssignedBy:       by,
		CreatedBy:        by,
		ExpectedDuration: t.ExpectedDuration,
		PauseHistory:     []PauseRecord{},
		RecreatedFrom:    t.ID,
	}, nil
}

// ActiveMinutesAt returns the active minutes so far, measured up to at for
// tasks that are still running.
func (t *Task) ActiveMinutesAt(at DualTimestamp) (int, error) {
	if t.StartedAt == nil {
		return 0, nil
	}
	if t.CompletedAt != nil {
		at = *t.CompletedAt
	}
	return ActiveMinutes(*t.StartedAt, t.PauseHistory, at)
}

func (t *Task) openPause() int {
	for i := len(t.PauseHistory) - 1; i >= 0; i-- {
		if t.PauseHistory[i].IsOpen() {
			return i
		}
	}
	return -1
}
