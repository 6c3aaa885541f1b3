package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	dispatchCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notify_dispatch_total",
		Help: "Channel dispatch attempts by outcome",
	}, []string{"channel", "status"})
	dispatchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notify_dispatch_duration_seconds",
		Help:    "Latency of individual channel sends",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
)

// Orchestrator fans one notification out to a set of delivery channels,
// isolating each channel's failure from the rest of the batch.
type Orchestrator struct {
	registry *Registry
	settings Settings
	repo     Repository
	logger   zerolog.Logger
	tracer   trace.Tracer
}

func NewOrchestrator(registry *Registry, settings Settings, repo Repository, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		settings: settings,
		repo:     repo,
		logger:   logger,
		tracer:   otel.Tracer("notify"),
	}
}

// Send dispatches to each requested channel in order and aggregates one
// outcome per attempted channel. Unknown and disabled channel ids are
// skipped without an entry in the result; a failing channel is recorded as
// a failed outcome and never prevents the remaining channels from being
// attempted. A nil or empty channel list means the configured defaults.
func (o *Orchestrator) Send(ctx context.Context, userID, typ, title, message string, payload map[string]any, channels []string) map[string]Outcome {
	ctx, span := o.tracer.Start(ctx, "send")
	defer span.End()

	if len(channels) == 0 {
		channels = o.settings.DefaultChannels()
	}
	span.SetAttributes(attribute.StringSlice("notify.channels", channels))

	results := make(map[string]Outcome, len(channels))
	for _, id := range channels {
		handler, ok := o.registry.Resolve(id)
		if !ok {
			o.logger.Debug().Str("channel", id).Msg("skipping unknown channel")
			continue
		}
		if !o.settings.ChannelEnabled(id) {
			o.logger.Debug().Str("channel", id).Msg("skipping disabled channel")
			continue
		}

		start := time.Now()
		result, err := o.dispatch(ctx, handler, userID, typ, title, message, payload)
		dispatchLatency.WithLabelValues(id).Observe(time.Since(start).Seconds())

		if err != nil {
			dispatchCounter.WithLabelValues(id, "error").Inc()
			o.logger.Error().Err(err).Str("channel", id).Str("user_id", userID).Msg("channel delivery failed")
			results[id] = Outcome{Success: false, Error: err.Error()}
			continue
		}
		dispatchCounter.WithLabelValues(id, "ok").Inc()
		results[id] = Outcome{Success: true, Result: result}
	}
	return results
}

// dispatch converts a panicking handler into an ordinary error so one
// channel cannot take down the batch.
func (o *Orchestrator) dispatch(ctx context.Context, handler Handler, userID, typ, title, message string, payload map[string]any) (result map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
	}()
	return handler.Send(ctx, userID, typ, title, message, payload)
}

// SendTest delivers a synthetic notification through a single channel and,
// unlike Send, surfaces unknown and disabled channels as hard errors so an
// operator configuring a channel gets actionable feedback.
func (o *Orchestrator) SendTest(ctx context.Context, userID, channelID string) (map[string]any, error) {
	ctx, span := o.tracer.Start(ctx, "send_test")
	defer span.End()
	span.SetAttributes(attribute.String("notify.channel", channelID))

	handler, ok := o.registry.Resolve(channelID)
	if !ok {
		return nil, fmt.Errorf("Unknown channel: %s", channelID)
	}
	if !o.settings.ChannelEnabled(channelID) {
		return nil, fmt.Errorf("Channel is not enabled: %s", channelID)
	}

	payload := map[string]any{
		"test":      true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	return handler.Send(ctx, userID, "test", "Test Notification", "This is a test notification.", payload)
}

// CreateInAppNotification persists an unread in-app record regardless of
// any channel enablement. The database channel handler uses this same
// primitive; callers that always want an in-app record use it directly.
func (o *Orchestrator) CreateInAppNotification(ctx context.Context, userID, typ, title, message string, payload map[string]any) (Notification, error) {
	saved, err := createInApp(ctx, o.repo, userID, typ, title, message, payload)
	if err != nil {
		return Notification{}, fmt.Errorf("create in-app notification: %w", err)
	}
	return saved, nil
}

func createInApp(ctx context.Context, repo Repository, userID, typ, title, message string, payload map[string]any) (Notification, error) {
	return repo.CreateNotification(ctx, Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
}
