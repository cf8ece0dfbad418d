package handler

import (
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/api/transport"
	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
	taskUC "github.com/Likheet/hermes-monitoring-sub002/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc         *taskUC.UseCase
	dispatcher *usecase.Dispatcher
}

func NewTaskHandler(uc *taskUC.UseCase, dispatcher *usecase.Dispatcher, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		dispatcher:  dispatcher,
	}
}

// @Summary List tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	limit, offset, ok := h.page(ctx, 50)
	if !ok {
		return
	}

	filter := repository.TaskFilter{
		AssignedTo: queryString(ctx, "assigned_to"),
		CreatedBy:  queryString(ctx, "created_by"),
		Department: queryString(ctx, "department"),
		Limit:      limit,
		Offset:     offset,
	}
	if status := queryString(ctx, "status"); status != "" {
		for _, s := range strings.Split(status, ",") {
			filter.Statuses = append(filter.Statuses, domain.TaskStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, actor, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	h.respondPage(ctx, tasks, filter.Limit, filter.Offset, len(tasks))
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.dispatcher.ExecuteQuery(stdCtx, taskUC.QueryGet, taskUC.Lookup{Actor: actor, TaskID: pathParam(ctx, "id")})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.TaskCreateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, actor, taskUC.CreateInput{
		TaskType:         req.TaskType,
		Department:       req.Department,
		Title:            req.Title,
		Description:      req.Description,
		Priority:         domain.TaskPriority(strings.ToLower(req.Priority)),
		RoomNumber:       req.RoomNumber,
		AssignedTo:       req.AssignedTo,
		ExpectedDuration: req.ExpectedDuration,
		ClientTimestamp:  clientTimestamp(ctx, req.ClientTimestamp),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Assign or reassign a pending task
// @Tags tasks
// @Router /api/v1/tasks/{id}/assign [put]
func (h *TaskHandler) AssignTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.TaskAssignRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.WorkerID == "" {
		h.respondInvalid(ctx, "worker_id is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.AssignTask(stdCtx, taskUC.ActionRequest{
		Actor:           actor,
		TaskID:          pathParam(ctx, "id"),
		ClientTimestamp: clientTimestamp(ctx, req.ClientTimestamp),
		ExpectedVersion: req.Version,
	}, req.WorkerID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Run a lifecycle action on a task
// @Description action is one of start, pause, resume, complete, verify, reject, recreate
// @Tags tasks
// @Router /api/v1/tasks/{id}/actions/{action} [post]
func (h *TaskHandler) Action(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.TaskActionRequest
	if !h.decode(ctx, &req) {
		return
	}

	action := strings.ToLower(pathParam(ctx, "action"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.dispatcher.ExecuteCommand(stdCtx, taskUC.CommandName(action), taskUC.ActionRequest{
		Actor:           actor,
		TaskID:          pathParam(ctx, "id"),
		ClientTimestamp: clientTimestamp(ctx, req.ClientTimestamp),
		ExpectedVersion: req.Version,
		Reason:          req.Reason,
		Remark:          req.Remark,
		PhotoURLs:       req.PhotoURLs,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	status := http.StatusOK
	if action == taskUC.ActionRecreate {
		status = http.StatusCreated
	}
	h.respondSuccess(ctx, status, result)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	id := pathParam(ctx, "id")
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, actor, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"deleted": id})
}

// @Summary List a task's audit events
// @Tags tasks
// @Router /api/v1/tasks/{id}/events [get]
func (h *TaskHandler) Events(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.dispatcher.ExecuteQuery(stdCtx, taskUC.QueryEvents, taskUC.Lookup{
		Actor:  actor,
		TaskID: pathParam(ctx, "id"),
		Limit:  queryInt(ctx, "limit", 100),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	events, _ := result.([]domain.TaskEvent)
	if events == nil {
		events = []domain.TaskEvent{}
	}
	h.respondSuccess(ctx, http.StatusOK, events)
}
