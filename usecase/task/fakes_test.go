package task_test

import (
	"context"
	"sync"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
)

// memTasks mimics the versioned Postgres repository.
type memTasks struct {
	mu       sync.Mutex
	tasks    map[string]domain.Task
	writeErr error
	// afterGet runs once a read has returned, outside the lock.
	afterGet func(id string)
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: map[string]domain.Task{}}
}

func (m *memTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	hook := m.afterGet
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if hook != nil {
		hook(id)
	}
	return &t, nil
}

func (m *memTasks) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Task
	for _, t := range m.tasks {
		if filter.AssignedTo != "" && t.AssignedTo != filter.AssignedTo {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memTasks) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	m.tasks[t.ID] = *t
	return t, nil
}

func (m *memTasks) Update(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	stored, ok := m.tasks[t.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if stored.Version != t.Version {
		return domain.ErrVersionConflict
	}
	if stored.EscalationLevel > t.EscalationLevel {
		t.EscalationLevel = stored.EscalationLevel
	}
	t.Version++
	m.tasks[t.ID] = *t
	return nil
}

func (m *memTasks) RaiseEscalation(_ context.Context, id string, level domain.EscalationLevel) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.EscalationLevel >= level {
		return false, nil
	}
	t.EscalationLevel = level
	m.tasks[id] = t
	return true, nil
}

func (m *memTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

type memWorkers map[string]domain.Worker

func (m memWorkers) GetByID(_ context.Context, id string) (*domain.Worker, error) {
	w, ok := m[id]
	if !ok {
		return nil, domain.ErrWorkerNotFound
	}
	return &w, nil
}

func (m memWorkers) GetByUsername(context.Context, string) (*domain.Worker, error) {
	return nil, domain.ErrWorkerNotFound
}

func (m memWorkers) List(context.Context, repository.WorkerFilter) ([]domain.Worker, error) {
	return nil, nil
}

func (m memWorkers) Upsert(context.Context, *domain.Worker) error { return nil }

type memEvents struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (m *memEvents) Append(_ context.Context, e *domain.TaskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func (m *memEvents) ListByTask(_ context.Context, taskID string, _ int) ([]domain.TaskEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TaskEvent
	for _, e := range m.events {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEvents) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.events))
	for _, e := range m.events {
		names = append(names, e.Name)
	}
	return names
}

type memPublisher struct {
	mu        sync.Mutex
	published []domain.TaskEvent
}

func (m *memPublisher) Publish(_ context.Context, e domain.TaskEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, e)
	return nil
}

type memBuffer struct {
	mu    sync.Mutex
	tasks []string
}

func (m *memBuffer) BufferWorker(context.Context, string, *domain.Worker) error { return nil }
func (m *memBuffer) BufferSchedule(context.Context, string, *domain.ShiftSchedule) error {
	return nil
}
func (m *memBuffer) BufferEvent(context.Context, *domain.TaskEvent) error { return nil }

func (m *memBuffer) BufferTask(_ context.Context, op string, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, op+":"+t.ID)
	return nil
}
