package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/admin-platform/internal/correlation"
	"github.com/example/admin-platform/internal/logging"
	"github.com/example/admin-platform/internal/notify"
)

var (
	reqCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total API requests by route and status",
	}, []string{"route", "status"})
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Latency of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Dispatcher is the slice of the orchestrator the HTTP layer needs.
type Dispatcher interface {
	Send(ctx context.Context, userID, typ, title, message string, payload map[string]any, channels []string) map[string]notify.Outcome
	SendTest(ctx context.Context, userID, channelID string) (map[string]any, error)
	CreateInAppNotification(ctx context.Context, userID, typ, title, message string, payload map[string]any) (notify.Notification, error)
}

type Handler struct {
	dispatcher Dispatcher
	repo       notify.Repository
	registry   *notify.Registry
	settings   notify.Settings
	emitter    *logging.Emitter
	tracer     trace.Tracer
}

func NewHandler(dispatcher Dispatcher, repo notify.Repository, registry *notify.Registry, settings notify.Settings, emitter *logging.Emitter) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		repo:       repo,
		registry:   registry,
		settings:   settings,
		emitter:    emitter,
		tracer:     otel.Tracer("api"),
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(correlation.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		h.respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/notifications", h.send)
		r.Post("/notifications/test", h.sendTest)
		r.Post("/notifications/in-app", h.createInApp)
		r.Get("/channels", h.channels)
		r.Get("/users/{userID}/notifications", h.list)
		r.Post("/users/{userID}/notifications/{id}/read", h.markRead)
		r.Post("/users/{userID}/notifications/read-all", h.markAllRead)
	})
	return r
}

type SendRequest struct {
	UserID   string         `json:"user_id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Payload  map[string]any `json:"payload"`
	Channels []string       `json:"channels"`
}

type TestRequest struct {
	UserID  string `json:"user_id"`
	Channel string `json:"channel"`
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "send")
	defer span.End()
	start := time.Now()

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErr(ctx, w, "send", http.StatusBadRequest, err)
		return
	}
	if err := validateSendRequest(req); err != nil {
		h.respondErr(ctx, w, "send", http.StatusBadRequest, err)
		return
	}
	span.SetAttributes(attribute.String("notify.user_id", req.UserID))

	results := h.dispatcher.Send(ctx, req.UserID, req.Type, req.Title, req.Message, req.Payload, req.Channels)

	h.emitter.Info(ctx, "notification dispatched", map[string]any{
		"type":     req.Type,
		"channels": len(results),
	})
	reqCounter.WithLabelValues("send", "ok").Inc()
	requestLatency.WithLabelValues("send").Observe(time.Since(start).Seconds())
	h.respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) sendTest(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "send_test")
	defer span.End()

	var req TestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErr(ctx, w, "send_test", http.StatusBadRequest, err)
		return
	}
	if req.UserID == "" || req.Channel == "" {
		h.respondErr(ctx, w, "send_test", http.StatusBadRequest, errors.New("user_id and channel are required"))
		return
	}

	result, err := h.dispatcher.SendTest(ctx, req.UserID, req.Channel)
	if err != nil {
		h.respondErr(ctx, w, "send_test", http.StatusUnprocessableEntity, err)
		return
	}
	reqCounter.WithLabelValues("send_test", "ok").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{"result": result})
}

func (h *Handler) createInApp(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "create_in_app")
	defer span.End()

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErr(ctx, w, "create_in_app", http.StatusBadRequest, err)
		return
	}
	if err := validateSendRequest(req); err != nil {
		h.respondErr(ctx, w, "create_in_app", http.StatusBadRequest, err)
		return
	}

	saved, err := h.dispatcher.CreateInAppNotification(ctx, req.UserID, req.Type, req.Title, req.Message, req.Payload)
	if err != nil {
		h.respondErr(ctx, w, "create_in_app", http.StatusInternalServerError, err)
		return
	}
	reqCounter.WithLabelValues("create_in_app", "ok").Inc()
	h.respondJSON(w, http.StatusCreated, map[string]any{"notification_id": saved.ID})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "list")
	defer span.End()

	userID := chi.URLParam(r, "userID")
	unreadOnly := r.URL.Query().Get("unread") == "1"

	notifications, err := h.repo.ListForUser(ctx, userID, unreadOnly)
	if err != nil {
		h.respondErr(ctx, w, "list", http.StatusInternalServerError, err)
		return
	}
	reqCounter.WithLabelValues("list", "ok").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{"notifications": toViews(notifications)})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "mark_read")
	defer span.End()

	userID := chi.URLParam(r, "userID")
	id := chi.URLParam(r, "id")

	if err := h.repo.MarkRead(ctx, id, userID, time.Now().UTC()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, notify.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.respondErr(ctx, w, "mark_read", status, err)
		return
	}
	reqCounter.WithLabelValues("mark_read", "ok").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{"status": "read"})
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "mark_all_read")
	defer span.End()

	userID := chi.URLParam(r, "userID")
	if err := h.repo.MarkAllRead(ctx, userID, time.Now().UTC()); err != nil {
		h.respondErr(ctx, w, "mark_all_read", http.StatusInternalServerError, err)
		return
	}
	reqCounter.WithLabelValues("mark_all_read", "ok").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{"status": "read"})
}

type channelView struct {
	notify.Descriptor
	Enabled bool `json:"enabled"`
}

func (h *Handler) channels(w http.ResponseWriter, r *http.Request) {
	views := []channelView{}
	for _, desc := range h.registry.Descriptors() {
		views = append(views, channelView{Descriptor: desc, Enabled: h.settings.ChannelEnabled(desc.ID)})
	}
	reqCounter.WithLabelValues("channels", "ok").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{"channels": views})
}

type notificationView struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
}

func toViews(notifications []notify.Notification) []notificationView {
	views := make([]notificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, notificationView{
			ID:        n.ID,
			UserID:    n.UserID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			Payload:   n.Payload,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return views
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Handler) respondErr(ctx context.Context, w http.ResponseWriter, route string, status int, err error) {
	h.emitter.Error(ctx, "request failed", map[string]any{
		"route":  route,
		"status": status,
		"error":  err.Error(),
	})
	reqCounter.WithLabelValues(route, "error").Inc()
	http.Error(w, err.Error(), status)
}

func validateSendRequest(req SendRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(req.Type) == "" {
		return errors.New("type is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return errors.New("message is required")
	}
	return nil
}
