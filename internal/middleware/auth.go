package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/api/transport"
	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
	authUC "github.com/Likheet/hermes-monitoring-sub002/usecase/auth"
)

const sessionLookupTimeout = 2 * time.Second

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// SessionLookup resolves a live session; revoked or expired ones fail.
type SessionLookup interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// AuthConfig configures JWTAuth.
type AuthConfig struct {
	Secret     string
	Issuer     string
	CookieName string
}

// JWTAuth verifies the bearer token (or the session cookie), checks that its
// session is still live and exposes the caller through the X-User-* headers.
func JWTAuth(cfg AuthConfig, sessions SessionLookup, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(httpcontext.HeaderUserID)
			ctx.Request.Header.Del(httpcontext.HeaderUserRole)
			ctx.Request.Header.Del(httpcontext.HeaderSessionID)

			tokenString := extractToken(ctx, cfg.CookieName)
			if tokenString == "" {
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "missing token")
				return
			}

			claims, err := authUC.ParseToken(cfg.Secret, cfg.Issuer, tokenString)
			if err != nil {
				logger.Warn("invalid jwt token",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.Error(err))
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid token")
				return
			}

			if claims.SessionID == "" {
				logger.Warn("token without session",
					zap.String("request_id", httpcontext.RequestID(ctx)),
					zap.String("user_id", claims.UserID))
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid token")
				return
			}

			if sessions != nil {
				lookupCtx, cancel := context.WithTimeout(context.Background(), sessionLookupTimeout)
				session, err := sessions.GetSession(lookupCtx, claims.SessionID)
				cancel()
				if err != nil || session.UserID != claims.UserID {
					logger.Info("session rejected",
						zap.String("session_id", claims.SessionID),
						zap.String("user_id", claims.UserID),
						zap.Error(err))
					reject(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized, "session expired")
					return
				}
			}

			ctx.Request.Header.Set(httpcontext.HeaderUserID, claims.UserID)
			ctx.Request.Header.Set(httpcontext.HeaderUserRole, string(claims.Role))
			ctx.Request.Header.Set(httpcontext.HeaderSessionID, claims.SessionID)

			next(ctx)
		}
	}
}

// RequireRole rejects callers whose role is not listed. It must run after JWTAuth.
func RequireRole(roles ...domain.Role) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			role := domain.Role(ctx.Request.Header.Peek(httpcontext.HeaderUserRole))
			if !role.Is(roles...) {
				reject(ctx, fasthttp.StatusForbidden, domain.ErrCodeForbidden, "forbidden")
				return
			}
			next(ctx)
		}
	}
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func extractToken(ctx *fasthttp.RequestCtx, cookieName string) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	if cookieName != "" {
		return string(ctx.Request.Header.Cookie(cookieName))
	}
	return ""
}

func reject(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	body, _ := json.Marshal(transport.NewError(string(code), message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
