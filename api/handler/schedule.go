package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/api/transport"
	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
	scheduleUC "github.com/Likheet/hermes-monitoring-sub002/usecase/schedule"
)

type ScheduleHandler struct {
	baseHandler
	uc *scheduleUC.UseCase
}

func NewScheduleHandler(uc *scheduleUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List a worker's schedules
// @Tags schedules
// @Router /api/v1/workers/{id}/schedules [get]
func (h *ScheduleHandler) List(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	schedules, err := h.uc.ListRange(stdCtx, actor, pathParam(ctx, "id"), queryString(ctx, "from"), queryString(ctx, "to"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if schedules == nil {
		schedules = []domain.ShiftSchedule{}
	}
	h.respondSuccess(ctx, http.StatusOK, schedules)
}

// @Summary Get a worker's schedule for a date
// @Tags schedules
// @Router /api/v1/workers/{id}/schedules/{date} [get]
func (h *ScheduleHandler) Get(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	schedule, err := h.uc.Get(stdCtx, actor, pathParam(ctx, "id"), pathParam(ctx, "date"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, schedule)
}

// @Summary Create or replace a worker's schedule for a date
// @Tags schedules
// @Router /api/v1/workers/{id}/schedules/{date} [put]
func (h *ScheduleHandler) Upsert(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	var req transport.ScheduleRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	saved, err := h.uc.Upsert(stdCtx, actor, &domain.ShiftSchedule{
		WorkerID:       pathParam(ctx, "id"),
		Date:           pathParam(ctx, "date"),
		Shift1:         req.Shift1,
		Shift2:         req.Shift2,
		IsOverride:     req.IsOverride,
		OverrideReason: req.OverrideReason,
		Notes:          req.Notes,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, saved)
}

// @Summary Delete a worker's schedule for a date
// @Tags schedules
// @Router /api/v1/workers/{id}/schedules/{date} [delete]
func (h *ScheduleHandler) Delete(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, actor, pathParam(ctx, "id"), pathParam(ctx, "date")); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"deleted": true})
}

// @Summary Current availability of a worker
// @Tags schedules
// @Router /api/v1/workers/{id}/availability [get]
func (h *ScheduleHandler) Availability(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	availability, err := h.uc.Availability(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, availability)
}
