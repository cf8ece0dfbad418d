package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
)

// AccessLog logs one line per request. Server errors are logged at error level.
func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			requestID := httpcontext.RequestID(ctx)

			next(ctx)

			status := ctx.Response.StatusCode()
			fields := []zap.Field{
				zap.String("request_id", requestID),
				zap.String("method", string(ctx.Method())),
				zap.String("path", string(ctx.Path())),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
			}
			if userID := ctx.Request.Header.Peek(httpcontext.HeaderUserID); len(userID) > 0 {
				fields = append(fields, zap.ByteString("user_id", userID))
			}

			switch {
			case status >= fasthttp.StatusInternalServerError:
				logger.Error("request failed", fields...)
			case status >= fasthttp.StatusBadRequest:
				logger.Info("request rejected", fields...)
			default:
				logger.Debug("request served", fields...)
			}
		}
	}
}

// Recover turns a handler panic into a 500 response.
func Recover(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						zap.String("request_id", httpcontext.RequestID(ctx)),
						zap.String("path", string(ctx.Path())),
						zap.Any("panic", rec),
						zap.Stack("stack"))
					reject(ctx, fasthttp.StatusInternalServerError, domain.ErrCodeInternal, "internal error")
				}
			}()
			next(ctx)
		}
	}
}
