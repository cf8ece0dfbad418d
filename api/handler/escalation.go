package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
	"github.com/Likheet/hermes-monitoring-sub002/repository"
	escalationUC "github.com/Likheet/hermes-monitoring-sub002/usecase/escalation"
)

type EscalationHandler struct {
	baseHandler
	uc *escalationUC.UseCase
}

func NewEscalationHandler(uc *escalationUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *EscalationHandler {
	return &EscalationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List escalations
// @Tags escalations
// @Router /api/v1/escalations [get]
func (h *EscalationHandler) List(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	limit, offset, ok := h.page(ctx, 50)
	if !ok {
		return
	}

	filter := repository.EscalationFilter{
		TaskID:   queryString(ctx, "task_id"),
		WorkerID: queryString(ctx, "worker_id"),
		Status:   queryString(ctx, "status"),
		MinLevel: queryInt(ctx, "min_level", 0),
		Limit:    limit,
		Offset:   offset,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	escalations, err := h.uc.List(stdCtx, actor, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if escalations == nil {
		escalations = []domain.Escalation{}
	}
	h.respondSuccess(ctx, http.StatusOK, escalations)
}

// @Summary Acknowledge an escalation
// @Tags escalations
// @Router /api/v1/escalations/{id}/acknowledge [post]
func (h *EscalationHandler) Acknowledge(ctx *fasthttp.RequestCtx) {
	actor, ok := h.actor(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	escalation, err := h.uc.Acknowledge(stdCtx, actor, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, escalation)
}
