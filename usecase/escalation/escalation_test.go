package escalation_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
	"github.com/Likheet/hermes-monitoring-sub002/usecase/escalation"
)

type fakeTasks struct {
	tasks []domain.Task
	// afterList runs after each List call with the page it returned.
	afterList func(page []domain.Task)
}

func (f *fakeTasks) find(id string) *domain.Task {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return &f.tasks[i]
		}
	}
	return nil
}

func (f *fakeTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	if t := f.find(id); t != nil {
		c := *t
		return &c, nil
	}
	return nil, domain.ErrTaskNotFound
}

// List orders by created_at, id descending like the Postgres repository.
func (f *fakeTasks) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var matched []domain.Task
	for _, t := range f.tasks {
		for _, s := range filter.Statuses {
			if t.Status == s {
				matched = append(matched, t)
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return after(matched[j], matched[i].CreatedAt, matched[i].ID)
	})
	if c := filter.After; c != nil {
		var rest []domain.Task
		for _, t := range matched {
			if after(t, c.CreatedAt, c.ID) {
				rest = append(rest, t)
			}
		}
		matched = rest
	} else if filter.Offset < len(matched) {
		matched = matched[filter.Offset:]
	} else {
		matched = nil
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	if f.afterList != nil {
		f.afterList(matched)
	}
	return matched, nil
}

// after reports whether t sorts after (createdAt, id) in descending order.
func after(t domain.Task, createdAt time.Time, id string) bool {
	if !t.CreatedAt.Equal(createdAt) {
		return t.CreatedAt.Before(createdAt)
	}
	return t.ID < id
}

func (f *fakeTasks) Create(context.Context, *domain.Task) (*domain.Task, error) { return nil, nil }
func (f *fakeTasks) Update(context.Context, *domain.Task) error                 { return nil }
func (f *fakeTasks) Delete(context.Context, string) error                       { return nil }

func (f *fakeTasks) RaiseEscalation(_ context.Context, id string, level domain.EscalationLevel) (bool, error) {
	t := f.find(id)
	if t == nil || t.EscalationLevel >= level {
		return false, nil
	}
	t.EscalationLevel = level
	return true, nil
}

type fakeEscalations struct {
	items map[string]domain.Escalation
}

func (f *fakeEscalations) Create(_ context.Context, e *domain.Escalation) error {
	for _, existing := range f.items {
		if existing.TaskID == e.TaskID && existing.Level == e.Level {
			return domain.NewError(domain.ErrCodeConflict, "escalation already recorded")
		}
	}
	e.CreatedAt = time.Now()
	f.items[e.ID] = *e
	return nil
}

func (f *fakeEscalations) GetByID(_ context.Context, id string) (*domain.Escalation, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, domain.ErrEscalationNotFound
	}
	return &e, nil
}

func (f *fakeEscalations) List(_ context.Context, filter repository.EscalationFilter) ([]domain.Escalation, error) {
	var out []domain.Escalation
	for _, e := range f.items {
		if filter.TaskID != "" && e.TaskID != filter.TaskID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out, nil
}

func (f *fakeEscalations) Acknowledge(_ context.Context, id, by string) (*domain.Escalation, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, domain.ErrEscalationNotFound
	}
	if !e.IsPending() {
		return nil, domain.NewError(domain.ErrCodeConflict, "escalation already acknowledged")
	}
	now := time.Now()
	e.Status = domain.EscalationAcknowledged
	e.AcknowledgedBy = by
	e.AcknowledgedAt = &now
	f.items[id] = e
	return &e, nil
}

type fakeEvents struct {
	events []domain.TaskEvent
}

func (f *fakeEvents) Append(_ context.Context, e *domain.TaskEvent) error {
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeEvents) ListByTask(context.Context, string, int) ([]domain.TaskEvent, error) {
	return f.events, nil
}

var scanTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func startedTask(id string, startedMinutesAgo, expected int, level domain.EscalationLevel) domain.Task {
	started := domain.NewDualTimestamp("", scanTime.Add(-time.Duration(startedMinutesAgo)*time.Minute))
	return domain.Task{
		ID:               id,
		Status:           domain.TaskInProgress,
		AssignedTo:       "w-1",
		ExpectedDuration: expected,
		StartedAt:        &started,
		PauseHistory:     []domain.PauseRecord{},
		EscalationLevel:  level,
		Version:          3,
		CreatedAt:        scanTime.Add(-time.Duration(startedMinutesAgo+1) * time.Minute),
	}
}

func newUseCase(tasks *fakeTasks) (*escalation.UseCase, *fakeEscalations, *fakeEvents) {
	escalations := &fakeEscalations{items: map[string]domain.Escalation{}}
	events := &fakeEvents{}
	recorder := usecase.NewEventRecorder(events, nil, nil, nil)
	uc := escalation.New(tasks, escalations, recorder, func() time.Time { return scanTime }, nil)
	return uc, escalations, events
}

func TestScan(t *testing.T) {
	t.Parallel()

	tasks := &fakeTasks{tasks: []domain.Task{
		startedTask("fresh", 5, 30, domain.EscalationNone),
		startedTask("warning", 16, 60, domain.EscalationNone),
		startedTask("overdue", 45, 30, domain.EscalationNone),
		startedTask("already-critical", 25, 60, domain.EscalationCritical),
	}}
	paused := startedTask("paused", 90, 30, domain.EscalationNone)
	paused.Status = domain.TaskPaused
	tasks.tasks = append(tasks.tasks, paused)

	uc, escalations, events := newUseCase(tasks)

	result, err := uc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Checked != 4 || result.Raised != 2 {
		t.Fatalf("result = %+v, want 4 checked and 2 raised", result)
	}

	want := map[string]domain.EscalationLevel{
		"fresh":            domain.EscalationNone,
		"warning":          domain.EscalationWarning,
		"overdue":          domain.EscalationOverdue,
		"already-critical": domain.EscalationCritical,
		"paused":           domain.EscalationNone,
	}
	for id, level := range want {
		if got := tasks.find(id).EscalationLevel; got != level {
			t.Errorf("%s: level = %s, want %s", id, got, level)
		}
	}

	list, _ := escalations.List(context.Background(), repository.EscalationFilter{})
	if len(list) != 2 || list[0].TaskID != "overdue" || list[0].ActiveMinutes != 45 || list[0].Level != domain.EscalationOverdue {
		t.Errorf("unexpected escalations: %+v", list)
	}
	if len(events.events) != 2 || events.events[0].Name != domain.EventTaskEscalated {
		t.Errorf("expected two escalation events, got %+v", events.events)
	}

	again, err := uc.Scan(context.Background())
	if err != nil || again.Raised != 0 {
		t.Errorf("second scan must not raise again, got %+v %v", again, err)
	}
}

func TestScan_Pages(t *testing.T) {
	t.Parallel()

	tasks := &fakeTasks{}
	for i := 0; i < 250; i++ {
		tasks.tasks = append(tasks.tasks, startedTask(fmt.Sprintf("t-%03d", i), 16, 60, domain.EscalationNone))
	}
	uc, _, _ := newUseCase(tasks)

	result, err := uc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Checked != 250 || result.Raised != 250 {
		t.Errorf("result = %+v, want every task checked and raised", result)
	}
}

func TestScan_TasksLeavingMidScanDoNotHideOthers(t *testing.T) {
	t.Parallel()

	tasks := &fakeTasks{}
	for i := 0; i < 150; i++ {
		tasks.tasks = append(tasks.tasks, startedTask(fmt.Sprintf("t-%03d", i), 16, 60, domain.EscalationNone))
	}
	tasks.afterList = func(page []domain.Task) {
		for _, seen := range page {
			tasks.find(seen.ID).Status = domain.TaskCompleted
		}
	}
	uc, _, _ := newUseCase(tasks)

	result, err := uc.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Checked != 150 {
		t.Errorf("checked %d tasks, want 150", result.Checked)
	}
}

func TestAcknowledge(t *testing.T) {
	t.Parallel()

	tasks := &fakeTasks{tasks: []domain.Task{startedTask("overdue", 45, 30, domain.EscalationNone)}}
	uc, escalations, _ := newUseCase(tasks)
	ctx := context.Background()
	if _, err := uc.Scan(ctx); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	list, _ := escalations.List(ctx, repository.EscalationFilter{})
	id := list[0].ID

	tests := map[string]struct {
		actor usecase.Actor
		id    string
		code  domain.ErrorCode
	}{
		"worker":       {actor: usecase.Actor{ID: "w-1", Role: domain.RoleWorker}, id: id, code: domain.ErrCodeForbidden},
		"front office": {actor: usecase.Actor{ID: "fo-1", Role: domain.RoleFrontOffice}, id: id, code: domain.ErrCodeForbidden},
		"unknown id":   {actor: usecase.Actor{ID: "sup-1", Role: domain.RoleSupervisor}, id: "nope", code: domain.ErrCodeNotFound},
	}
	for name, tc := range tests {
		if _, err := uc.Acknowledge(ctx, tc.actor, tc.id); !domain.IsDomainError(err, tc.code) {
			t.Errorf("%s: expected %s, got %v", name, tc.code, err)
		}
	}

	sup := usecase.Actor{ID: "sup-1", Role: domain.RoleSupervisor}
	acked, err := uc.Acknowledge(ctx, sup, id)
	if err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}
	if acked.Status != domain.EscalationAcknowledged || acked.AcknowledgedBy != "sup-1" || acked.AcknowledgedAt == nil {
		t.Errorf("unexpected acknowledged escalation: %+v", acked)
	}
	if _, err := uc.Acknowledge(ctx, sup, id); !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Errorf("expected CONFLICT on second acknowledge, got %v", err)
	}

	if _, err := uc.List(ctx, usecase.Actor{ID: "w-1", Role: domain.RoleWorker}, repository.EscalationFilter{}); !domain.IsDomainError(err, domain.ErrCodeForbidden) {
		t.Errorf("workers cannot list escalations, got %v", err)
	}
	if _, err := uc.List(ctx, sup, repository.EscalationFilter{Status: "open"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Errorf("expected INVALID status filter, got %v", err)
	}
}
