package task

import (
	"context"
	"fmt"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
)

// Action names accepted by POST /tasks/{id}/actions/{action}.
const (
	ActionStart    = "start"
	ActionPause    = "pause"
	ActionResume   = "resume"
	ActionComplete = "complete"
	ActionVerify   = "verify"
	ActionReject   = "reject"
	ActionRecreate = "recreate"
)

// ActionRequest is the payload of every task action command.
type ActionRequest struct {
	Actor           usecase.Actor
	TaskID          string
	ClientTimestamp string
	ExpectedVersion int
	Reason          string
	Remark          string
	PhotoURLs       []string
}

// QueryGet and QueryEvents are the dispatcher queries served by RegisterActions.
const (
	QueryGet    = "task.get"
	QueryEvents = "task.events"
)

// Lookup is the parameter of the task queries.
type Lookup struct {
	Actor  usecase.Actor
	TaskID string
	Limit  int
}

// CommandName returns the dispatcher command for an action.
func CommandName(action string) string {
	return "task." + action
}

// RegisterActions binds every task action and query to d.
func (uc *UseCase) RegisterActions(d *usecase.Dispatcher) {
	actions := map[string]func(context.Context, ActionRequest) (*domain.Task, error){
		ActionStart:    uc.StartTask,
		ActionPause:    uc.PauseTask,
		ActionResume:   uc.ResumeTask,
		ActionComplete: uc.CompleteTask,
		ActionVerify:   uc.VerifyTask,
		ActionReject:   uc.RejectTask,
		ActionRecreate: uc.RecreateTask,
	}
	for name, fn := range actions {
		fn := fn
		d.RegisterCommand(CommandName(name), func(ctx context.Context, payload interface{}) (interface{}, error) {
			req, ok := payload.(ActionRequest)
			if !ok {
				return nil, fmt.Errorf("task action: unexpected payload %T", payload)
			}
			return fn(ctx, req)
		})
	}

	d.RegisterQuery(QueryGet, func(ctx context.Context, params interface{}) (interface{}, error) {
		lookup, ok := params.(Lookup)
		if !ok {
			return nil, fmt.Errorf("task query: unexpected params %T", params)
		}
		return uc.GetTask(ctx, lookup.Actor, lookup.TaskID)
	})
	d.RegisterQuery(QueryEvents, func(ctx context.Context, params interface{}) (interface{}, error) {
		lookup, ok := params.(Lookup)
		if !ok {
			return nil, fmt.Errorf("task query: unexpected params %T", params)
		}
		return uc.ListEvents(ctx, lookup.Actor, lookup.TaskID, lookup.Limit)
	})
}
