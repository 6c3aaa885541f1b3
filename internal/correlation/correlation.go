package correlation

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header is the fixed name used for both the inbound and outbound
// correlation id.
const Header = "X-Correlation-ID"

type ctxKey int

const (
	idKey ctxKey = iota
	userKey
	requestKey
)

// RequestInfo captures where a request came from and what it targeted,
// for log enrichment.
type RequestInfo struct {
	RemoteAddr string
	RequestURI string
}

// Bind picks the request's correlation id: a non-blank inbound header value
// is trimmed and used verbatim, otherwise a fresh id is minted.
func Bind(headerValue string) string {
	if id := strings.TrimSpace(headerValue); id != "" {
		return id
	}
	return uuid.NewString()
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey, id)
}

// FromContext returns the bound correlation id. Safe to call outside any
// request; it reports false instead of failing.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(idKey).(string)
	return id, ok
}

// WithUserID records the authenticated subject. Called by the session
// layer once authentication has run; absent for anonymous requests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(userKey).(string)
	return id, ok
}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestKey, info)
}

func RequestInfoFromContext(ctx context.Context) (RequestInfo, bool) {
	if ctx == nil {
		return RequestInfo{}, false
	}
	info, ok := ctx.Value(requestKey).(RequestInfo)
	return info, ok
}
