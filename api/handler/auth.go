package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Likheet/hermes-monitoring-sub002/api/transport"
	"github.com/Likheet/hermes-monitoring-sub002/domain"
	"github.com/Likheet/hermes-monitoring-sub002/pkg/httpcontext"
	authUC "github.com/Likheet/hermes-monitoring-sub002/usecase/auth"
)

// CookieConfig describes the session cookie set on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	cookie CookieConfig
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "hermes_session"
	}
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		cookie:      cookie,
	}
}

// @Summary Log in with username and password
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.AuthLoginRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		h.respondInvalid(ctx, "username and password are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Login(stdCtx, req.Username, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.setCookie(ctx, result.Token, result.ExpiresAt)
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Extend the current session
// @Tags auth
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	sessionID := string(ctx.Request.Header.Peek(httpcontext.HeaderSessionID))
	if sessionID == "" {
		h.respondError(ctx, domain.ErrUnauthorized)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Refresh(stdCtx, sessionID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.setCookie(ctx, result.Token, result.ExpiresAt)
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Revoke the current session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	sessionID := string(ctx.Request.Header.Peek(httpcontext.HeaderSessionID))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Logout(stdCtx, sessionID); err != nil && !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		h.respondError(ctx, err)
		return
	}
	h.setCookie(ctx, "", time.Unix(0, 0))
	h.respondSuccess(ctx, http.StatusOK, map[string]bool{"logged_out": true})
}

func (h *AuthHandler) setCookie(ctx *fasthttp.RequestCtx, value string, expires time.Time) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)

	cookie.SetKey(h.cookie.Name)
	cookie.SetValue(value)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(h.cookie.Secure)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(expires)
	ctx.Response.Header.SetCookie(cookie)
}
