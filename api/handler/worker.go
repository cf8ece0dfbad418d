package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/api/transport"
	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	workerUC "github.com/Likheet/hermes-monitoring-sub002/usecase/worker"
)

type WorkerHandler struct {
	baseHandler
	uc *workerUC.UseCase
}

func NewWorkerHandler(uc *workerUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *WorkerHandler {
	return &WorkerHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get own profile
// @Tags workers
// @Success 200 {object} transport.Envelope
// @Router /api/v1/me [get]
func (h *WorkerHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	worker, err := h.uc.GetProfile(stdCtx, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, worker)
}

// @Summary Update own profile
// @Tags workers
// @Accept json
// @Produce json
// @Router /api/v1/me [put]
func (h *WorkerHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.ProfileUpdateRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateProfile(stdCtx, actor, workerUC.ProfileUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary List workers
// @Tags workers
// @Router /api/v1/workers [get]
func (h *WorkerHandler) List(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	limit, offset, ok := h.page(ctx, 50)
	if !ok {
		return
	}

	filter := repository.WorkerFilter{
		Role:       queryString(ctx, "role"),
		Department: queryString(ctx, "department"),
		Status:     queryString(ctx, "status"),
		Limit:      limit,
		Offset:     offset,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	workers, err := h.uc.List(stdCtx, actor, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if workers == nil {
		workers = []domain.Worker{}
	}
	h.respondPage(ctx, workers, filter.Limit, filter.Offset, len(workers))
}

// @Summary Get a worker
// @Tags workers
// @Router /api/v1/workers/{id} [get]
func (h *WorkerHandler) Get(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	worker, err := h.uc.Get(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, worker)
}

// @Summary Create or replace a worker
// @Tags workers
// @Router /api/v1/workers [post]
// @Router /api/v1/workers/{id} [put]
func (h *WorkerHandler) Upsert(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.WorkerUpsertRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	worker, err := h.uc.Upsert(stdCtx, actor, workerUC.Input{
		Worker: domain.Worker{
			ID:           pathParam(ctx, "id"),
			Name:         req.Name,
			Username:     req.Username,
			Role:         domain.Role(req.Role),
			Department:   req.Department,
			Phone:        req.Phone,
			Status:       req.Status,
			DefaultShift: req.DefaultShift,
			Metadata:     req.Metadata,
		},
		Password: req.Password,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, worker)
}

// @Summary Set a worker's default shift
// @Tags workers
// @Router /api/v1/workers/{id}/shift [put]
func (h *WorkerHandler) SetShift(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.ShiftRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	worker, err := h.uc.SetDefaultShift(stdCtx, actor, pathParam(ctx, "id"), req.Window())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, worker)
}
