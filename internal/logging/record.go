// Package logging emits structured application log records, enriches them
// with ambient request context, and fans them out to registered observers
// after the primary write.
package logging

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/admin-platform/internal/common"
	"github.com/example/admin-platform/internal/correlation"
)

// Record is one log emission. Context holds fields supplied by the caller;
// Extra holds ambient fields stamped by enrichment.
type Record struct {
	Level   string
	Message string
	Context map[string]any
	Extra   map[string]any
}

// Enrich copies rec and stamps correlation id, user id, client address and
// request target into Extra. Ambient values missing from ctx are omitted;
// enrichment itself never fails.
func Enrich(ctx context.Context, rec Record) Record {
	out := rec
	out.Extra = make(map[string]any, len(rec.Extra)+4)
	for k, v := range rec.Extra {
		out.Extra[k] = v
	}
	if id, ok := correlation.FromContext(ctx); ok {
		out.Extra["correlation_id"] = id
	}
	if userID, ok := correlation.UserIDFromContext(ctx); ok {
		out.Extra["user_id"] = userID
	}
	if info, ok := correlation.RequestInfoFromContext(ctx); ok {
		out.Extra["ip_address"] = info.RemoteAddr
		out.Extra["request_uri"] = info.RequestURI
	}
	return out
}

// Observer receives each enriched record after the primary log write.
type Observer interface {
	Notify(ctx context.Context, rec Record)
}

// Emitter is the log entry point. The zerolog write happens first; then every
// observer runs in registration order. A misbehaving observer cannot break
// logging: panics are recovered and dropped.
type Emitter struct {
	Logger    zerolog.Logger
	Observers []Observer
}

func (e *Emitter) Log(ctx context.Context, rec Record) {
	enriched := Enrich(ctx, rec)

	logger := common.WithContext(ctx, e.Logger)
	evt := logger.WithLevel(parseLevel(enriched.Level))
	if len(enriched.Context) > 0 {
		evt = evt.Fields(enriched.Context)
	}
	if len(enriched.Extra) > 0 {
		evt = evt.Fields(enriched.Extra)
	}
	evt.Msg(enriched.Message)

	for _, obs := range e.Observers {
		notify(ctx, obs, enriched)
	}
}

func (e *Emitter) Info(ctx context.Context, msg string, fields map[string]any) {
	e.Log(ctx, Record{Level: "info", Message: msg, Context: fields})
}

func (e *Emitter) Warn(ctx context.Context, msg string, fields map[string]any) {
	e.Log(ctx, Record{Level: "warn", Message: msg, Context: fields})
}

func (e *Emitter) Error(ctx context.Context, msg string, fields map[string]any) {
	e.Log(ctx, Record{Level: "error", Message: msg, Context: fields})
}

func notify(ctx context.Context, obs Observer, rec Record) {
	defer func() {
		_ = recover()
	}()
	obs.Notify(ctx, rec)
}

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
