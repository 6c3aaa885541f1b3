package logging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/admin-platform/internal/correlation"
	"github.com/example/admin-platform/internal/redact"
)

// MessageWriter is the slice of kafka.Writer the broadcaster needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Broadcaster publishes redacted log records to the real-time log topic for
// live viewers. Delivery is best-effort and at-most-once: the gate is read
// on every call, and any failure while composing or writing the event is
// discarded so logging itself can never fail or block on the transport.
type Broadcaster struct {
	Enabled func() bool
	Writer  MessageWriter
}

type logEvent struct {
	Level         string         `json:"level"`
	Message       string         `json:"message"`
	Context       map[string]any `json:"context"`
	CorrelationID *string        `json:"correlation_id"`
	UserID        *string        `json:"user_id"`
	Timestamp     string         `json:"timestamp"`
}

func (b *Broadcaster) Notify(ctx context.Context, rec Record) {
	defer func() {
		_ = recover()
	}()

	if b.Writer == nil || b.Enabled == nil || !b.Enabled() {
		return
	}

	merged := make(map[string]any, len(rec.Context)+len(rec.Extra))
	for k, v := range rec.Context {
		merged[k] = v
	}
	for k, v := range rec.Extra {
		merged[k] = v
	}

	event := logEvent{
		Level:     rec.Level,
		Message:   rec.Message,
		Context:   redact.Redact(merged, redact.BroadcastDenylist),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	var key []byte
	if id, ok := correlation.FromContext(ctx); ok {
		event.CorrelationID = &id
		key = []byte(id)
	}
	if userID, ok := correlation.UserIDFromContext(ctx); ok {
		event.UserID = &userID
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = b.Writer.WriteMessages(ctx, kafka.Message{Key: key, Value: payload})
}
