package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/Likheet/hermes-monitoring-sub002/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
)

// Request headers. The identity headers are written by the auth middleware
// after the token is verified and are never trusted from clients.
const (
	HeaderRequestID       = "X-Request-ID"
	HeaderClientTimestamp = "X-Client-Timestamp"
	HeaderUserID          = "X-User-ID"
	HeaderUserRole        = "X-User-Role"
	HeaderSessionID       = "X-Session-ID"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches it with request metadata.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// RequestID returns the request id of ctx, generating and echoing one on
// first use so every log line of a request shares it.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id := string(ctx.Response.Header.Peek(HeaderRequestID)); id != "" {
		return id
	}
	id := strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderRequestID)))
	if id == "" {
		id = uuid.NewString()
	}
	ctx.Response.Header.Set(HeaderRequestID, id)
	return id
}

// ClientTimestamp returns the device time sent in the X-Client-Timestamp header.
func ClientTimestamp(ctx *fasthttp.RequestCtx) string {
	return strings.TrimSpace(string(ctx.Request.Header.Peek(HeaderClientTimestamp)))
}
