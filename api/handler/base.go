package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/api/transport"
	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
	"github.com/Likheet/hermes-monitoring-sub002/usecase"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("response encoding failed",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.String("code", payload.Code),
			zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(transport.NewError(string(domain.ErrCodeInternal), "internal error", nil))
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondPage(ctx *fasthttp.RequestCtx, data interface{}, limit, offset, count int) {
	h.respondJSON(ctx, http.StatusOK, transport.NewPage(data, limit, offset, count))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.String("path", string(ctx.Path())),
			zap.Error(err))
		message = "internal error"
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

func (h baseHandler) respondInvalid(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), message, nil))
}

// actor returns the caller set by the auth middleware, answering 401 when absent.
func (h baseHandler) actor(ctx *fasthttp.RequestCtx) (usecase.Actor, bool) {
	actor := usecase.Actor{
		ID:   string(ctx.Request.Header.Peek(httpcontext.HeaderUserID)),
		Role: domain.Role(ctx.Request.Header.Peek(httpcontext.HeaderUserRole)),
	}
	if actor.ID == "" || !actor.Role.IsValid() {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing user id", nil))
		return usecase.Actor{}, false
	}
	return actor, true
}

// decode unmarshals the body into v. An empty body leaves v untouched.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, v interface{}) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return false
	}
	return true
}

// clientTimestamp prefers the body field over the X-Client-Timestamp header.
func clientTimestamp(ctx *fasthttp.RequestCtx, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return httpcontext.ClientTimestamp(ctx)
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	value, _ := ctx.UserValue(name).(string)
	return value
}

func queryString(ctx *fasthttp.RequestCtx, name string) string {
	return string(ctx.QueryArgs().Peek(name))
}

func queryInt(ctx *fasthttp.RequestCtx, name string, fallback int) int {
	if v, err := strconv.Atoi(queryString(ctx, name)); err == nil {
		return v
	}
	return fallback
}

// page reads limit and offset, answering 400 when either is negative.
func (h baseHandler) page(ctx *fasthttp.RequestCtx, defaultLimit int) (limit, offset int, ok bool) {
	limit = queryInt(ctx, "limit", defaultLimit)
	offset = queryInt(ctx, "offset", 0)
	if limit < 0 || offset < 0 {
		h.respondInvalid(ctx, "limit and offset must not be negative")
		return 0, 0, false
	}
	return limit, offset, true
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeForbidden):
		return http.StatusForbidden, string(domain.ErrCodeForbidden)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeInvalidTimestamp):
		return http.StatusBadRequest, string(domain.ErrCodeInvalidTimestamp)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
